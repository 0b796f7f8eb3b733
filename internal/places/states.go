package places

import (
	"sort"
	"strings"

	"road-trip-planner/internal/models"
)

// State is a US state (or DC) seen along the route
type State struct {
	Abbrev string
	Name   string
}

// ParseState extracts the state from a "City, ST" name. The token after the
// last comma must be two uppercase letters naming a known state.
func ParseState(cityName string) (State, bool) {
	idx := strings.LastIndex(cityName, ",")
	if idx < 0 {
		return State{}, false
	}
	token := strings.TrimSpace(cityName[idx+1:])
	if len(token) != 2 || !isUpper(token[0]) || !isUpper(token[1]) {
		return State{}, false
	}
	name, ok := models.StateName(token)
	if !ok {
		return State{}, false
	}
	return State{Abbrev: token, Name: name}, true
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// StatesVisited returns the distinct states named in cityNames, sorted by abbreviation
func StatesVisited(cityNames []string) []State {
	seen := make(map[string]State)
	for _, name := range cityNames {
		if st, ok := ParseState(name); ok {
			seen[st.Abbrev] = st
		}
	}

	states := make([]State, 0, len(seen))
	for _, st := range seen {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Abbrev < states[j].Abbrev })
	return states
}
