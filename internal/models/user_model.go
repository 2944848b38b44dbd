package models

// Activation sources recognized in UserRecord.ProActivatedBy.
const (
	SourceKiwify       = "kiwify"
	SourceKiwifyImport = "kiwify_import"
	SourceTrial        = "trial"
	SourceAdminManual  = "admin_manual"
	SourceAdminBulk    = "admin_bulk"
	SourceGift         = "gift"
)

// Plans written next to isPro. The client tools unlock features from them.
const (
	PlanFree  = "free"
	PlanBasic = "basic"
	PlanVIP   = "vip"
)

// NormalizePlan maps an operator's plan choice to a paid plan. Anything but
// vip is basic.
func NormalizePlan(plan string) string {
	if plan == PlanVIP {
		return PlanVIP
	}
	return PlanBasic
}

// PlanFeatures returns the feature list granted by plan.
func PlanFeatures(plan string) []string {
	switch plan {
	case PlanVIP:
		return []string{"all-features"}
	case PlanBasic:
		return []string{"veo3-automator", "wisk-automator", "tradutor-ai-unlimited"}
	default:
		return []string{}
	}
}

// ManualSources are the activation sources an operator may pick in the detail editor.
var ManualSources = []string{SourceAdminManual, SourceAdminBulk, SourceGift}

// IsManualSource reports whether source is one of ManualSources.
func IsManualSource(source string) bool {
	for _, s := range ManualSources {
		if s == source {
			return true
		}
	}
	return false
}

// UserRecord is a document of the users collection. The store owns it; the
// service only keeps a per-session copy that is replaced on every full load.
type UserRecord struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName,omitempty"`
	CreatedAt      Timestamp `json:"createdAt"`
	IsPro          bool      `json:"isPro"`
	ProActivatedBy string    `json:"proActivatedBy,omitempty"`
	ProActivatedAt Timestamp `json:"proActivatedAt"`
	TrialExpiresAt Timestamp `json:"trialExpiresAt"`
	Plan           string    `json:"plan,omitempty"`
	Features       []string  `json:"features,omitempty"`
	ContactInfo    string    `json:"contactInfo,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	MonthlyValue   *float64  `json:"monthlyValue,omitempty"`
	Payments       []Payment `json:"payments,omitempty"`
	// TranslationsToday is a usage counter maintained by the client tools.
	TranslationsToday int64 `json:"translationsToday,omitempty"`
}

// Clone returns a deep copy so snapshot edits never leak into a caller's record.
func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}
	c := *u
	if u.MonthlyValue != nil {
		v := *u.MonthlyValue
		c.MonthlyValue = &v
	}
	if u.Features != nil {
		c.Features = append([]string(nil), u.Features...)
	}
	if u.Payments != nil {
		c.Payments = append([]Payment(nil), u.Payments...)
	}
	return &c
}

// Payment is one entry of a manually billed user's payment ledger.
type Payment struct {
	Date    string  `json:"date" firestore:"date"` // yyyy-mm-dd as typed by the operator
	Value   float64 `json:"value" firestore:"value"`
	Note    string  `json:"note" firestore:"note"`
	AddedAt string  `json:"addedAt" firestore:"addedAt"`
}

// Document field names of the users collection.
const (
	FieldEmail          = "email"
	FieldDisplayName    = "displayName"
	FieldCreatedAt      = "createdAt"
	FieldIsPro          = "isPro"
	FieldProActivatedBy = "proActivatedBy"
	FieldProActivatedAt = "proActivatedAt"
	FieldTrialExpiresAt = "trialExpiresAt"
	FieldPlan           = "plan"
	FieldFeatures       = "features"
	FieldContactInfo    = "contactInfo"
	FieldNotes          = "notes"
	FieldMonthlyValue   = "monthlyValue"
	FieldPayments       = "payments"
)
