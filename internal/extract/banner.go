package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"golang.org/x/net/html"
)

var nonDigits = regexp.MustCompile(`[^0-9]+`)

// ParseBannerDate extracts the date from a "last updated" banner such as
// "最終更新日：2020年3月05日（木）".
//
// The text is split on runs of non-digits; the first piece (whatever precedes
// the first number) is discarded and the next three are year, month and day.
func ParseBannerDate(text string) (time.Time, error) {
	parts := nonDigits.Split(text, -1)
	if len(parts) < 4 {
		return time.Time{}, fmt.Errorf("banner %q: want year, month and day", text)
	}

	var ymd [3]int
	for i, part := range parts[1:4] {
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, fmt.Errorf("banner %q: %w", text, err)
		}
		ymd[i] = n
	}

	year, month, day := ymd[0], ymd[1], ymd[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, model.JST)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("banner %q: invalid date %d-%d-%d", text, year, month, day)
	}
	return t, nil
}

// FindBanner returns the trimmed text of the first text node containing marker
func FindBanner(doc *html.Node, marker string) (string, bool) {
	node := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.Contains(n.Data, marker)
	})
	if node == nil {
		return "", false
	}

	// The date is sometimes split across inline elements of the same parent
	text := node.Data
	if node.Parent != nil {
		text = Text(node.Parent)
	}
	return strings.TrimSpace(text), true
}
