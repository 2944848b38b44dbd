package core

import (
	"time"

	"license-admin-go/internal/models"
)

// Classification is the derived, non-persisted subscription category of a user.
type Classification string

const (
	ClassFree         Classification = "free"
	ClassKiwify       Classification = "kiwify"
	ClassTrial        Classification = "trial"
	ClassTrialExpired Classification = "trial_expired"
	ClassManual       Classification = "manual"
)

// Classify derives the category of u at instant now. Order matters: paid and
// trial sources are checked before the manual fallback.
func Classify(u *models.UserRecord, now time.Time) Classification {
	if u == nil || !u.IsPro {
		return ClassFree
	}
	switch u.ProActivatedBy {
	case models.SourceKiwify, models.SourceKiwifyImport:
		return ClassKiwify
	case models.SourceTrial:
		if trialExpired(u, now) {
			return ClassTrialExpired
		}
		return ClassTrial
	default:
		// admin_manual, admin_bulk, gift and unrecognized sources alike.
		return ClassManual
	}
}

// trialExpired is true only for a parseable expiry strictly before now.
func trialExpired(u *models.UserRecord, now time.Time) bool {
	expires, ok := u.TrialExpiresAt.Time()
	if !ok {
		return false
	}
	return expires.UnixMilli() < now.UnixMilli()
}
