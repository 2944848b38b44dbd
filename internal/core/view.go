package core

import (
	"fmt"
	"math"
	"sort"
	"time"

	"license-admin-go/internal/models"
)

const day = 24 * time.Hour

// Badge is the status label rendered next to a user.
type Badge struct {
	Class string `json:"class"`
	Text  string `json:"text"`
}

// UserView is the presentation-free view-model of one row of the user list.
type UserView struct {
	ID                string         `json:"id"`
	Email             string         `json:"email"`
	DisplayName       string         `json:"displayName"`
	Classification    Classification `json:"classification"`
	Badge             Badge          `json:"badge"`
	IsPro             bool           `json:"isPro"`
	ProActivatedBy    string         `json:"proActivatedBy,omitempty"`
	Plan              string         `json:"plan,omitempty"`
	CreatedAt         string         `json:"createdAt"`
	TrialExpiresAt    string         `json:"trialExpiresAt,omitempty"`
	TrialDaysLeft     int            `json:"trialDaysLeft,omitempty"`
	TranslationsToday int64          `json:"translationsToday"`
	MonthlyValue      *float64       `json:"monthlyValue,omitempty"`
	ContactInfo       string         `json:"contactInfo,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	PaymentsCount     int            `json:"paymentsCount"`
	// ToggleAction is the PRO button offered for the row.
	ToggleAction ToggleAction `json:"toggleAction"`
}

// ToggleAction describes the PRO toggle button of a row.
type ToggleAction struct {
	Activate bool   `json:"activate"`
	Label    string `json:"label"`
}

// BuildUserView derives the view-model of u at instant now.
func BuildUserView(u *models.UserRecord, now time.Time) UserView {
	class := Classify(u, now)
	v := UserView{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		Classification:    class,
		Badge:             badgeFor(class, u, now),
		IsPro:             u.IsPro,
		ProActivatedBy:    u.ProActivatedBy,
		Plan:              u.Plan,
		CreatedAt:         u.CreatedAt.FormatDate(),
		TranslationsToday: u.TranslationsToday,
		MonthlyValue:      u.MonthlyValue,
		ContactInfo:       u.ContactInfo,
		Notes:             u.Notes,
		PaymentsCount:     len(u.Payments),
	}
	if v.DisplayName == "" {
		v.DisplayName = "Sem nome"
	}
	if class == ClassTrial {
		if _, ok := u.TrialExpiresAt.Time(); ok {
			v.TrialExpiresAt = u.TrialExpiresAt.FormatDate()
			v.TrialDaysLeft = TrialDaysLeft(u, now)
		}
	}
	if u.IsPro {
		v.ToggleAction = ToggleAction{Activate: false, Label: "Desativar"}
	} else {
		v.ToggleAction = ToggleAction{Activate: true, Label: "Ativar PRO"}
	}
	return v
}

// BuildUserViews maps BuildUserView over users.
func BuildUserViews(users []*models.UserRecord, now time.Time) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, BuildUserView(u, now))
	}
	return views
}

// TrialDaysLeft rounds the remaining trial time up to whole days.
func TrialDaysLeft(u *models.UserRecord, now time.Time) int {
	expires, ok := u.TrialExpiresAt.Time()
	if !ok {
		return 0
	}
	return int(math.Ceil(float64(expires.Sub(now)) / float64(day)))
}

func badgeFor(class Classification, u *models.UserRecord, now time.Time) Badge {
	switch class {
	case ClassKiwify:
		return Badge{Class: "badge-kiwify", Text: "KIWIFY"}
	case ClassTrial:
		if _, ok := u.TrialExpiresAt.Time(); ok {
			return Badge{Class: "badge-trial", Text: fmt.Sprintf("TESTE (%dd)", TrialDaysLeft(u, now))}
		}
		return Badge{Class: "badge-trial", Text: "TESTE"}
	case ClassTrialExpired:
		return Badge{Class: "badge-free", Text: "TESTE EXPIRADO"}
	case ClassManual:
		return Badge{Class: "badge-manual", Text: "MANUAL"}
	default:
		return Badge{Class: "badge-free", Text: "GRÁTIS"}
	}
}

// LedgerEntry is a payment as displayed. Index is its position in the stored
// list, which is what removal addresses.
type LedgerEntry struct {
	Index         int     `json:"index"`
	Date          string  `json:"date"`
	FormattedDate string  `json:"formattedDate"`
	Value         float64 `json:"value"`
	Note          string  `json:"note,omitempty"`
	AddedAt       string  `json:"addedAt,omitempty"`
}

// SortedLedger orders payments by payment date, newest first, independent of
// storage order.
func SortedLedger(payments []models.Payment) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(payments))
	for i, p := range payments {
		entries = append(entries, LedgerEntry{
			Index:         i,
			Date:          p.Date,
			FormattedDate: models.RawTimestamp(p.Date).FormatDate(),
			Value:         p.Value,
			Note:          p.Note,
			AddedAt:       p.AddedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return models.RawTimestamp(entries[i].Date).UnixMillis() > models.RawTimestamp(entries[j].Date).UnixMillis()
	})
	return entries
}

// DetailView is the content of the manual-billing detail editor.
type DetailView struct {
	User           UserView      `json:"user"`
	ContactInfo    string        `json:"contactInfo"`
	MonthlyValue   *float64      `json:"monthlyValue"`
	Notes          string        `json:"notes"`
	ProActivatedBy string        `json:"proActivatedBy"`
	SourceOptions  []string      `json:"sourceOptions"`
	ProActivatedAt string        `json:"proActivatedAt"`
	Ledger         []LedgerEntry `json:"ledger"`
	TotalPaid      float64       `json:"totalPaid"`
}

// BuildDetailView derives the detail editor content for u.
func BuildDetailView(u *models.UserRecord, now time.Time) DetailView {
	d := DetailView{
		User:           BuildUserView(u, now),
		ContactInfo:    u.ContactInfo,
		MonthlyValue:   u.MonthlyValue,
		Notes:          u.Notes,
		ProActivatedBy: u.ProActivatedBy,
		SourceOptions:  append([]string(nil), models.ManualSources...),
		ProActivatedAt: u.ProActivatedAt.FormatDateInput(),
		Ledger:         SortedLedger(u.Payments),
	}
	for _, p := range u.Payments {
		d.TotalPaid += p.Value
	}
	return d
}
