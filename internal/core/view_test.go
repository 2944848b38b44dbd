package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-admin-go/internal/models"
)

func TestBuildUserViewBadges(t *testing.T) {
	tests := []struct {
		name  string
		user  *models.UserRecord
		class string
		text  string
	}{
		{"free", &models.UserRecord{}, "badge-free", "GRÁTIS"},
		{"kiwify", record(true, "kiwify"), "badge-kiwify", "KIWIFY"},
		{"manual", record(true, "gift"), "badge-manual", "MANUAL"},
		{"trial", &models.UserRecord{IsPro: true, ProActivatedBy: "trial", TrialExpiresAt: models.ISOTimestamp(testNow.Add(36 * time.Hour))}, "badge-trial", "TESTE (2d)"},
		{"trial without expiry", record(true, "trial"), "badge-trial", "TESTE"},
		{"expired", &models.UserRecord{IsPro: true, ProActivatedBy: "trial", TrialExpiresAt: models.ISOTimestamp(testNow.Add(-time.Hour))}, "badge-free", "TESTE EXPIRADO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := BuildUserView(tt.user, testNow)
			assert.Equal(t, tt.class, v.Badge.Class)
			assert.Equal(t, tt.text, v.Badge.Text)
		})
	}
}

func TestBuildUserViewFields(t *testing.T) {
	u := &models.UserRecord{
		ID:             "t",
		Email:          "trial@example.com",
		IsPro:          true,
		ProActivatedBy: "trial",
		TrialExpiresAt: models.ISOTimestamp(testNow.Add(72 * time.Hour)),
	}

	v := BuildUserView(u, testNow)
	assert.Equal(t, "Sem nome", v.DisplayName)
	assert.Equal(t, models.UnknownDate, v.CreatedAt)
	assert.Equal(t, 3, v.TrialDaysLeft)
	assert.NotEmpty(t, v.TrialExpiresAt)
	assert.Equal(t, ToggleAction{Activate: false, Label: "Desativar"}, v.ToggleAction)

	free := BuildUserView(&models.UserRecord{DisplayName: "Ana"}, testNow)
	assert.Equal(t, "Ana", free.DisplayName)
	assert.Equal(t, ToggleAction{Activate: true, Label: "Ativar PRO"}, free.ToggleAction)
	assert.Zero(t, free.TrialDaysLeft)
}

func TestSortedLedgerKeepsStorageIndex(t *testing.T) {
	ledger := SortedLedger([]models.Payment{
		{Date: "2025-01-10", Value: 10},
		{Date: "", Value: 5},
		{Date: "2025-02-10", Value: 20},
	})

	require.Len(t, ledger, 3)
	assert.Equal(t, 2, ledger[0].Index)
	assert.Equal(t, 0, ledger[1].Index)
	assert.Equal(t, 1, ledger[2].Index)
	assert.Equal(t, models.UnknownDate, ledger[2].FormattedDate)
}

func TestBuildDetailView(t *testing.T) {
	u := &models.UserRecord{
		ID:             "m",
		IsPro:          true,
		ProActivatedBy: "admin_manual",
		ProActivatedAt: models.RawTimestamp("2025-02-01T10:00:00.000Z"),
		MonthlyValue:   floatPtr(80),
		Payments:       []models.Payment{{Date: "2025-02-05", Value: 80}, {Date: "2025-03-05", Value: 80}},
	}

	d := BuildDetailView(u, testNow)
	assert.Equal(t, "2025-02-01", d.ProActivatedAt)
	assert.Equal(t, models.ManualSources, d.SourceOptions)
	assert.Equal(t, 160.0, d.TotalPaid)
	assert.Equal(t, "2025-03-05", d.Ledger[0].Date)
}
