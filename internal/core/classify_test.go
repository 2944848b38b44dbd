package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"license-admin-go/internal/models"
)

func TestClassifyCoversEveryCategory(t *testing.T) {
	future := models.ISOTimestamp(testNow.Add(time.Hour))
	past := models.ISOTimestamp(testNow.Add(-time.Hour))

	tests := []struct {
		name string
		user *models.UserRecord
		want Classification
	}{
		{"nil user", nil, ClassFree},
		{"not pro", &models.UserRecord{}, ClassFree},
		{"kiwify", &models.UserRecord{IsPro: true, ProActivatedBy: "kiwify"}, ClassKiwify},
		{"kiwify import", &models.UserRecord{IsPro: true, ProActivatedBy: "kiwify_import"}, ClassKiwify},
		{"active trial", &models.UserRecord{IsPro: true, ProActivatedBy: "trial", TrialExpiresAt: future}, ClassTrial},
		{"expired trial", &models.UserRecord{IsPro: true, ProActivatedBy: "trial", TrialExpiresAt: past}, ClassTrialExpired},
		{"trial without expiry", &models.UserRecord{IsPro: true, ProActivatedBy: "trial"}, ClassTrial},
		{"trial with garbage expiry", &models.UserRecord{IsPro: true, ProActivatedBy: "trial", TrialExpiresAt: models.RawTimestamp("soon")}, ClassTrial},
		{"admin manual", &models.UserRecord{IsPro: true, ProActivatedBy: "admin_manual"}, ClassManual},
		{"admin bulk", &models.UserRecord{IsPro: true, ProActivatedBy: "admin_bulk"}, ClassManual},
		{"gift", &models.UserRecord{IsPro: true, ProActivatedBy: "gift"}, ClassManual},
		{"missing source", &models.UserRecord{IsPro: true}, ClassManual},
		{"unknown source", &models.UserRecord{IsPro: true, ProActivatedBy: "partner"}, ClassManual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.user, testNow))
		})
	}
}

func TestClassifyNonProIsAlwaysFree(t *testing.T) {
	for _, source := range []string{"", "kiwify", "trial", "admin_manual", "gift", "partner"} {
		u := &models.UserRecord{
			ProActivatedBy: source,
			TrialExpiresAt: models.ISOTimestamp(testNow.Add(-time.Hour)),
			MonthlyValue:   floatPtr(10),
		}
		assert.Equal(t, ClassFree, Classify(u, testNow), source)
	}
}

func TestClassifyTrialExpiryIsStrict(t *testing.T) {
	u := &models.UserRecord{IsPro: true, ProActivatedBy: "trial", TrialExpiresAt: models.NativeTimestamp(testNow)}
	assert.Equal(t, ClassTrial, Classify(u, testNow))
	assert.Equal(t, ClassTrialExpired, Classify(u, testNow.Add(time.Millisecond)))
}
