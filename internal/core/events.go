package core

import (
	"context"
	"time"
)

// Routing keys of published license events.
const (
	EventProActivated   = "license.pro.activated"
	EventProDeactivated = "license.pro.deactivated"
	EventTrialActivated = "license.trial.activated"
	EventPendingCreated = "license.pending.created"
	EventDetailsUpdated = "license.details.updated"
	EventPaymentAdded   = "license.payment.added"
	EventPaymentRemoved = "license.payment.removed"
)

// LicenseEvent is the payload of every published license event.
type LicenseEvent struct {
	Type           string    `json:"type"`
	UserID         string    `json:"userId,omitempty"`
	Email          string    `json:"email"`
	Operator       string    `json:"operator"`
	Source         string    `json:"source,omitempty"`
	Plan           string    `json:"plan,omitempty"`
	TrialExpiresAt string    `json:"trialExpiresAt,omitempty"`
	OrderID        string    `json:"orderId,omitempty"`
	Value          float64   `json:"value,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(_ context.Context, _ string, _ interface{}) error { return nil }
