package cli

import (
	"sort"
	"strings"
)

// SortOrder represents the available sorting options for the summary
type SortOrder string

const (
	SortByPage      SortOrder = "page"
	SortByName      SortOrder = "name"
	SortByConfirmed SortOrder = "confirmed"
	SortByDeaths    SortOrder = "deaths"
)

// sortStates orders state summaries. Page order is the order states appeared in and
// leaves the slice untouched.
func sortStates(states []StateSummary, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(states, func(i, j int) bool {
			return strings.ToLower(states[i].Name) < strings.ToLower(states[j].Name)
		})
	case SortByConfirmed:
		sort.SliceStable(states, func(i, j int) bool {
			if states[i].Confirmed != states[j].Confirmed {
				return states[i].Confirmed > states[j].Confirmed
			}
			// If counts are equal, sort by name
			return strings.ToLower(states[i].Name) < strings.ToLower(states[j].Name)
		})
	case SortByDeaths:
		sort.SliceStable(states, func(i, j int) bool {
			if states[i].Deaths != states[j].Deaths {
				return states[i].Deaths > states[j].Deaths
			}
			return strings.ToLower(states[i].Name) < strings.ToLower(states[j].Name)
		})
	}
}

func validSortOrder(order SortOrder) bool {
	switch order {
	case SortByPage, SortByName, SortByConfirmed, SortByDeaths:
		return true
	}
	return false
}
