package core

import (
	"fmt"
	"time"

	"license-admin-go/internal/models"
)

// FinancialSummary aggregates the manual billing of users classified manual.
type FinancialSummary struct {
	MonthlyTotal   float64 `json:"monthlyTotal"`
	UsersWithValue int     `json:"usersWithValue"`
	ManualUsers    int     `json:"manualUsers"`
	Label          string  `json:"label"`
}

// SummarizeFinancials sums positive monthly values over manual users.
func SummarizeFinancials(users []*models.UserRecord, now time.Time) FinancialSummary {
	var s FinancialSummary
	for _, u := range users {
		if Classify(u, now) != ClassManual {
			continue
		}
		s.ManualUsers++
		if u.MonthlyValue != nil && *u.MonthlyValue > 0 {
			s.MonthlyTotal += *u.MonthlyValue
			s.UsersWithValue++
		}
	}
	s.Label = fmt.Sprintf("%d de %d", s.UsersWithValue, s.ManualUsers)
	return s
}

// Stats holds the dashboard counters.
type Stats struct {
	Total int `json:"total"`
	// Pro counts every PRO user not on a trial, paid or manual.
	Pro   int `json:"pro"`
	Trial int `json:"trial"`
	Free  int `json:"free"`

	ByClassification map[Classification]int `json:"byClassification"`
}

// ComputeStats counts users per category.
func ComputeStats(users []*models.UserRecord, now time.Time) Stats {
	s := Stats{
		Total: len(users),
		ByClassification: map[Classification]int{
			ClassFree: 0, ClassKiwify: 0, ClassTrial: 0, ClassTrialExpired: 0, ClassManual: 0,
		},
	}
	for _, u := range users {
		s.ByClassification[Classify(u, now)]++
		switch {
		case u.IsPro && u.ProActivatedBy == models.SourceTrial:
			s.Trial++
		case u.IsPro:
			s.Pro++
		}
	}
	s.Free = s.Total - s.Pro - s.Trial
	return s
}
