package models

import "strings"

var stateAbbrevToName = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
}

var stateNameToAbbrev = func() map[string]string {
	m := make(map[string]string, len(stateAbbrevToName))
	for abbrev, name := range stateAbbrevToName {
		m[strings.ToLower(name)] = abbrev
	}
	return m
}()

// StateName returns the full name for a two-letter US state or DC code
func StateName(abbrev string) (string, bool) {
	name, ok := stateAbbrevToName[abbrev]
	return name, ok
}

// StateAbbrev returns the two-letter code for a full state name, ignoring case
func StateAbbrev(name string) (string, bool) {
	abbrev, ok := stateNameToAbbrev[strings.ToLower(strings.TrimSpace(name))]
	return abbrev, ok
}
