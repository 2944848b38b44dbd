package core

import (
	"fmt"
	"strings"
	"time"

	"license-admin-go/internal/models"
)

// Filter selects a subset of the snapshot by classification.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterKiwify Filter = "kiwify"
	FilterManual Filter = "manual"
	FilterTrial  Filter = "trial"
	FilterFree   Filter = "free"
)

// ParseFilter validates a filter name. An empty name means FilterAll.
func ParseFilter(name string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterKiwify, FilterManual, FilterTrial, FilterFree:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, name)
	}
}

// Matches reports whether a user of class c belongs to the filter. The trial
// filter also covers expired trials.
func (f Filter) Matches(c Classification) bool {
	switch f {
	case FilterAll:
		return true
	case FilterTrial:
		return c == ClassTrial || c == ClassTrialExpired
	default:
		return Classification(f) == c
	}
}

// ApplyFilter returns the users matching f, preserving snapshot order.
func ApplyFilter(users []*models.UserRecord, f Filter, now time.Time) []*models.UserRecord {
	if f == FilterAll {
		return append([]*models.UserRecord(nil), users...)
	}
	out := make([]*models.UserRecord, 0, len(users))
	for _, u := range users {
		if f.Matches(Classify(u, now)) {
			out = append(out, u)
		}
	}
	return out
}

// FilterUsers restricts users to f and then keeps those whose email, display
// name, notes or contact info contain term, case-insensitively. An empty term
// keeps the whole filtered subset.
func FilterUsers(users []*models.UserRecord, f Filter, term string, now time.Time) []*models.UserRecord {
	filtered := ApplyFilter(users, f, now)
	term = strings.ToLower(term)
	if term == "" {
		return filtered
	}
	out := make([]*models.UserRecord, 0, len(filtered))
	for _, u := range filtered {
		if matchesSearch(u, term) {
			out = append(out, u)
		}
	}
	return out
}

func matchesSearch(u *models.UserRecord, term string) bool {
	for _, field := range []string{u.Email, u.DisplayName, u.Notes, u.ContactInfo} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
