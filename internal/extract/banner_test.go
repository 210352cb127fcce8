package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBannerDate(t *testing.T) {
	got, err := ParseBannerDate("最終更新日：2020年3月05日（木）")
	require.NoError(t, err)
	assert.Equal(t, "2020-03-05T00:00:00+09:00", got.Format(time.RFC3339))
}

func TestParseBannerDate_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no digits", "最終更新日：未定"},
		{"too few numbers", "更新 2020年3月"},
		{"leading digits shift the fields", "2020年3月5日"},
		{"invalid day", "更新：2020年2月30日"},
		{"invalid month", "更新：2020年13月1日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBannerDate(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestParseBannerDate_ExtraNumbersIgnored(t *testing.T) {
	got, err := ParseBannerDate("更新：2021年1月9日 18時00分")
	require.NoError(t, err)
	assert.Equal(t, "2021-01-09T00:00:00+09:00", got.Format(time.RFC3339))
}

func TestFindBanner(t *testing.T) {
	doc, err := Parse(strings.NewReader(casePage))
	require.NoError(t, err)

	text, ok := FindBanner(doc, "最終更新日")
	require.True(t, ok)
	assert.Equal(t, "最終更新日：2020年3月05日（木）", text)

	got, err := ParseBannerDate(text)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Day())

	_, ok = FindBanner(doc, "存在しない")
	assert.False(t, ok)
}
