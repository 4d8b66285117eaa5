// Package view holds the explicit input state of the five views and the
// generation-tagged slots their results land in.
package view

import (
	"fmt"
	"strings"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/report"
)

// FirstYear is the oldest selectable year.
const FirstYear = 2020

type Tab string

const (
	TabDashboard    Tab = "dashboard"
	TabTransactions Tab = "transactions"
	TabCards        Tab = "cards"
	TabComparison   Tab = "comparison"
	TabReport       Tab = "report"
)

// Tabs lists the views in navigation order.
var Tabs = []Tab{TabDashboard, TabTransactions, TabCards, TabComparison, TabReport}

func ParseTab(s string) (Tab, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// State is everything that decides what the current view shows. It is a
// value: every change produces a new State.
type State struct {
	Tab    Tab
	Year   int
	Month  int
	Filter ledger.Filter
	Page   int
}

// NewState opens the dashboard on the month of now.
func NewState(now time.Time) State {
	return State{Tab: TabDashboard, Year: now.Year(), Month: int(now.Month())}
}

// Years returns the selectable years, FirstYear through the year of now.
func Years(now time.Time) []int {
	var out []int
	for y := FirstYear; y <= now.Year(); y++ {
		out = append(out, y)
	}
	return out
}

func (s State) WithTab(t Tab) State {
	s.Tab = t
	return s
}

// WithYear switches year and goes back to the first ledger page.
func (s State) WithYear(y int) State {
	s.Year = y
	s.Page = 0
	return s
}

func (s State) WithMonth(m int) State {
	s.Month = report.ClampMonth(m)
	return s
}

// WithFilter replaces the ledger filter. Any filter change resets paging.
func (s State) WithFilter(f ledger.Filter) State {
	if f != s.Filter {
		s.Page = 0
	}
	s.Filter = f
	return s
}

// SetFilter changes one filter field by name: person, direction or month.
// "all" or an empty value clears it.
func (s State) SetFilter(field, value string) (State, error) {
	f := s.Filter
	value = strings.ToLower(strings.TrimSpace(value))
	all := value == "" || value == "all" || value == "todos"
	switch strings.ToLower(field) {
	case "person":
		if all {
			f.Person = ""
		} else if p := core.Person(value); p.Valid() {
			f.Person = p
		} else {
			return s, core.ErrInvalidPerson
		}
	case "direction":
		if all {
			f.Direction = ""
		} else if d := core.Direction(value); d.Valid() {
			f.Direction = d
		} else {
			return s, core.ErrInvalidDirection
		}
	case "month":
		if all {
			f.Month = 0
		} else {
			var m int
			if _, err := fmt.Sscanf(value, "%d", &m); err != nil || m < 1 || m > 12 {
				return s, fmt.Errorf("invalid month %q", value)
			}
			f.Month = m
		}
	default:
		return s, fmt.Errorf("unknown filter %q", field)
	}
	return s.WithFilter(f), nil
}

// Next moves to the following ledger page when the current one was full.
func (s State) Next(hasNext bool) State {
	if hasNext {
		s.Page++
	}
	return s
}

func (s State) Prev() State {
	if s.Page > 0 {
		s.Page--
	}
	return s
}
