package normalize

import "strings"

// FieldKind identifies which record field a column feeds
type FieldKind int

const (
	FieldOther FieldKind = iota // Catch-all for unrecognized labels
	FieldNo
	FieldReleaseDate
	FieldAge
	FieldSex
	FieldResidence
	FieldNearbyCases
	FieldCloseContacts
)

func (k FieldKind) String() string {
	switch k {
	case FieldNo:
		return "no"
	case FieldReleaseDate:
		return "date"
	case FieldAge:
		return "age"
	case FieldSex:
		return "sex"
	case FieldResidence:
		return "place"
	case FieldNearbyCases:
		return "other_patient"
	case FieldCloseContacts:
		return "contact_person"
	default:
		return "others"
	}
}

// Header labels as published in the source table
const (
	LabelNo            = "No."
	LabelReleaseDate   = "リリース日"
	LabelPublishedDate = "公表日" // synonym of LabelReleaseDate
	LabelAge           = "年代"
	LabelSex           = "性別"
	LabelResidence     = "居住地"
	LabelNearbyCases   = "周囲の患者の発生"
	LabelCloseContacts = "濃厚接触者の状況"
)

var labelSynonyms = map[string]string{
	LabelPublishedDate: LabelReleaseDate,
}

var labelKinds = map[string]FieldKind{
	LabelNo:            FieldNo,
	LabelReleaseDate:   FieldReleaseDate,
	LabelAge:           FieldAge,
	LabelSex:           FieldSex,
	LabelResidence:     FieldResidence,
	LabelNearbyCases:   FieldNearbyCases,
	LabelCloseContacts: FieldCloseContacts,
}

// CanonicalLabel maps a synonymous header spelling to its canonical form
func CanonicalLabel(label string) string {
	if canonical, ok := labelSynonyms[label]; ok {
		return canonical
	}
	return label
}

// KindOf resolves a header label to its field kind.
// Labels match exactly; anything unknown is FieldOther.
func KindOf(label string) FieldKind {
	if kind, ok := labelKinds[CanonicalLabel(label)]; ok {
		return kind
	}
	return FieldOther
}

// ResolveHeader resolves every column of a header row
func ResolveHeader(header []string) []FieldKind {
	kinds := make([]FieldKind, len(header))
	for i, label := range header {
		kinds[i] = KindOf(label)
	}
	return kinds
}

var (
	dropLineBreaks  = strings.NewReplacer("\n", "", "\r", "")
	spaceLineBreaks = strings.NewReplacer("\n", " ", "\r", "")
)
