package core

import (
	"context"
	"time"

	"license-admin-go/internal/models"
)

// LicenseService defines the operator actions of the license dashboard. Every
// method acts on the session of the given operator.
type LicenseService interface {
	// Dashboard returns the current view, loading the collection on first use.
	Dashboard(ctx context.Context, operator string) (*DashboardView, error)
	// Load re-fetches the whole users collection. On failure the previous
	// snapshot is kept.
	Load(ctx context.Context, operator string) (*ActionResult, error)
	// Search sets the search term composed on top of the active filter.
	Search(ctx context.Context, operator, term string) (*DashboardView, error)
	SetFilter(ctx context.Context, operator, filter string) (*DashboardView, error)
	TogglePro(ctx context.Context, operator, userID string, req models.TogglePRORequest) (*ActionResult, error)
	ActivateTrials(ctx context.Context, operator string, req models.ActivateTrialsRequest) (*TrialActivationResult, error)
	OpenUserDetail(ctx context.Context, operator, userID string) (*DetailView, error)
	CloseUserDetail(ctx context.Context, operator string) error
	SaveUserDetails(ctx context.Context, operator, userID string, req models.UpdateUserDetailsRequest) (*ActionResult, error)
	AddPayment(ctx context.Context, operator, userID string, req models.AddPaymentRequest) (*ActionResult, error)
	RemovePayment(ctx context.Context, operator, userID string, index int, confirmed bool) (*ActionResult, error)
	Summary(ctx context.Context, operator string) (*SummaryView, error)
	// EndSession drops the operator's session state on sign-out.
	EndSession(ctx context.Context, operator string) error
}

// EventPublisher announces license changes to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// DashboardView is the visible state of an operator's dashboard.
type DashboardView struct {
	Operator     string           `json:"operator"`
	Filter       Filter           `json:"filter"`
	SearchTerm   string           `json:"searchTerm"`
	Total        int              `json:"total"`
	Users        []UserView       `json:"users"`
	EmptyMessage string           `json:"emptyMessage,omitempty"`
	Stats        Stats            `json:"stats"`
	Financial    FinancialSummary `json:"financial"`
	SelectedID   string           `json:"selectedId,omitempty"`
	LoadedAt     time.Time        `json:"loadedAt"`
}

// ActionResult is the outcome of a mutating operator action.
type ActionResult struct {
	Notice    Notice         `json:"notice"`
	Dashboard *DashboardView `json:"dashboard,omitempty"`
	// Detail is set when the action leaves the detail editor open.
	Detail *DetailView `json:"detail,omitempty"`
	// ClearInput asks the presentation layer to empty the input it submitted.
	ClearInput bool `json:"clearInput,omitempty"`
}

// TrialActivationResult reports a bulk trial run.
type TrialActivationResult struct {
	ActionResult
	// Progress is the notice shown while the batch was being written.
	Progress  Notice `json:"progress"`
	Activated int    `json:"activated"`
	Pending   int    `json:"pending"`
	Skipped   int    `json:"skipped"`
	Summary   string `json:"summary"`
}

// SummaryView holds the dashboard counters and the manual billing totals.
type SummaryView struct {
	Stats     Stats            `json:"stats"`
	Financial FinancialSummary `json:"financial"`
}
