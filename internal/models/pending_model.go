package models

// PendingStatus is the only status the dashboard ever writes.
const PendingStatus = "pending"

// PendingActivation is a placeholder trial grant for an email that has no
// account yet. A registration-time process outside this service consumes it.
type PendingActivation struct {
	ID             string `json:"id" firestore:"-"`
	Email          string `json:"email" firestore:"email"`
	OrderID        string `json:"orderId" firestore:"orderId"`
	TrialExpiresAt string `json:"trialExpiresAt" firestore:"trialExpiresAt"`
	CreatedAt      string `json:"createdAt" firestore:"createdAt"`
	Status         string `json:"status" firestore:"status"`
	Source         string `json:"source" firestore:"source"`
}
