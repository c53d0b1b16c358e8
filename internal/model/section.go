package model

import "strings"

// Section is the closed set of newspaper sections
type Section string

const (
	SectionNationalPolitics Section = "National Politics"
	SectionWashingtonBriefs Section = "Washington Briefs"
	SectionTheStates        Section = "The States"
	SectionCulture          Section = "Culture"
	SectionOpinion          Section = "Opinion"
)

// DefaultSection is used when a label matches nothing
const DefaultSection = SectionNationalPolitics

// Sections lists every section in page order
var Sections = []Section{
	SectionNationalPolitics,
	SectionWashingtonBriefs,
	SectionTheStates,
	SectionCulture,
	SectionOpinion,
}

// sectionAliases maps normalized labels, including legacy names, to sections
var sectionAliases = map[string]Section{
	"national politics": SectionNationalPolitics,
	"national":          SectionNationalPolitics,
	"politics":          SectionNationalPolitics,
	"washington briefs": SectionWashingtonBriefs,
	"washington":        SectionWashingtonBriefs,
	"briefs":            SectionWashingtonBriefs,
	"the states":        SectionTheStates,
	"states":            SectionTheStates,
	"state & local":     SectionTheStates,
	"state and local":   SectionTheStates,
	"state/local":       SectionTheStates,
	"local":             SectionTheStates,
	"culture":           SectionCulture,
	"opinion":           SectionOpinion,
	"editorial":         SectionOpinion,
}

// sectionKeywords is checked in order when no alias matches
var sectionKeywords = []struct {
	keyword string
	section Section
}{
	{"opinion", SectionOpinion},
	{"editorial", SectionOpinion},
	{"commentary", SectionOpinion},
	{"state", SectionTheStates},
	{"local", SectionTheStates},
	{"governor", SectionTheStates},
	{"culture", SectionCulture},
	{"entertainment", SectionCulture},
	{"sports", SectionCulture},
	{"media", SectionCulture},
	{"washington", SectionWashingtonBriefs},
	{"brief", SectionWashingtonBriefs},
	{"congress", SectionWashingtonBriefs},
	{"white house", SectionWashingtonBriefs},
}

// ClassifySection maps a free-text label onto a section. It never fails.
func ClassifySection(label string) Section {
	normalized := strings.ToLower(strings.Join(strings.Fields(label), " "))
	if normalized == "" {
		return DefaultSection
	}
	if section, ok := sectionAliases[normalized]; ok {
		return section
	}
	for _, kw := range sectionKeywords {
		if strings.Contains(normalized, kw.keyword) {
			return kw.section
		}
	}
	return DefaultSection
}

// Valid reports whether s is one of the closed set
func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}
