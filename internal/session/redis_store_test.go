package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-admin-go/internal/core"
	"license-admin-go/internal/models"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "license-admin:session:ops@example.com", sessionKey("ops@example.com"))
}

// The stored snapshot must keep each timestamp's shape, or classification
// would change between requests.
func TestEncodedSessionKeepsTimestampShapes(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	monthly := 75.5
	state := &core.SessionState{
		Operator:   "ops@example.com",
		Loaded:     true,
		Filter:     core.FilterTrial,
		SearchTerm: "ana",
		SelectedID: "u1",
		Users: []*models.UserRecord{{
			ID:             "u1",
			Email:          "ana@example.com",
			CreatedAt:      models.NativeTimestamp(created),
			IsPro:          true,
			ProActivatedBy: models.SourceTrial,
			ProActivatedAt: models.StoreTimestamp(1735787045),
			TrialExpiresAt: models.RawTimestamp("2025-01-05T03:04:05.000Z"),
			MonthlyValue:   &monthly,
			Payments:       []models.Payment{{Date: "2025-01-03", Value: 10}},
		}},
	}

	raw, err := encodeState(state)
	require.NoError(t, err)
	got, err := decodeState(raw)
	require.NoError(t, err)

	require.Len(t, got.Users, 1)
	u := got.Users[0]
	assert.Equal(t, models.TimestampNative, u.CreatedAt.Kind)
	assert.Equal(t, created.UnixMilli(), u.CreatedAt.UnixMillis())
	assert.Equal(t, models.TimestampStore, u.ProActivatedAt.Kind)
	assert.Equal(t, models.TimestampRaw, u.TrialExpiresAt.Kind)
	assert.Equal(t, 75.5, *u.MonthlyValue)
	assert.Equal(t, core.FilterTrial, got.Filter)
	assert.Equal(t, "u1", got.SelectedID)
	assert.Equal(t, core.ClassTrial, core.Classify(u, created))
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	_, err := decodeState([]byte("{not json"))
	assert.Error(t, err)
}
