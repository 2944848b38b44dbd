package db

import (
	"github.com/spf13/cast"

	"license-admin-go/internal/models"
)

// UserFromData builds a UserRecord from a raw document field map. Documents
// are written by several clients, so every field is read leniently: missing
// or mistyped values fall back to their zero value.
func UserFromData(id string, data map[string]interface{}) *models.UserRecord {
	u := &models.UserRecord{
		ID:                id,
		Email:             cast.ToString(data[models.FieldEmail]),
		DisplayName:       cast.ToString(data[models.FieldDisplayName]),
		CreatedAt:         models.TimestampFromValue(data[models.FieldCreatedAt]),
		IsPro:             cast.ToBool(data[models.FieldIsPro]),
		ProActivatedBy:    cast.ToString(data[models.FieldProActivatedBy]),
		ProActivatedAt:    models.TimestampFromValue(data[models.FieldProActivatedAt]),
		TrialExpiresAt:    models.TimestampFromValue(data[models.FieldTrialExpiresAt]),
		Plan:              cast.ToString(data[models.FieldPlan]),
		ContactInfo:       cast.ToString(data[models.FieldContactInfo]),
		Notes:             cast.ToString(data[models.FieldNotes]),
		TranslationsToday: cast.ToInt64(data["translationsToday"]),
	}

	if raw, ok := data[models.FieldFeatures]; ok && raw != nil {
		u.Features = cast.ToStringSlice(raw)
	}

	if raw, ok := data[models.FieldMonthlyValue]; ok && raw != nil {
		if v, err := cast.ToFloat64E(raw); err == nil {
			u.MonthlyValue = &v
		}
	}

	if raw, ok := data[models.FieldPayments].([]interface{}); ok {
		u.Payments = make([]models.Payment, 0, len(raw))
		for _, item := range raw {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			u.Payments = append(u.Payments, models.Payment{
				Date:    cast.ToString(entry["date"]),
				Value:   cast.ToFloat64(entry["value"]),
				Note:    cast.ToString(entry["note"]),
				AddedAt: cast.ToString(entry["addedAt"]),
			})
		}
	}

	return u
}
