package model

import (
	"encoding/json"
	"time"
)

type ApplicationType string   // applicant category
type ApplicationStatus string // review state
type GuardianType string      // guardian relationship

const (
	ApplicationTypeAdult  ApplicationType = "adult"
	ApplicationTypeJunior ApplicationType = "junior"

	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"

	GuardianTypeFather GuardianType = "father"
	GuardianTypeMother GuardianType = "mother"
	GuardianTypeTutor  GuardianType = "tutor"
)

// Application is a submitted, not-yet-decided request for association
// membership. Payload holds the full submitted form verbatim; it is written
// once at submission time and never rewritten, so the applicant's original
// declarations stay available for audit purposes. The name/email columns are
// derived copies kept for listing and search.
type Application struct {
	ID     uint              `gorm:"primarykey" json:"id"`
	Code   string            `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Type   ApplicationType   `gorm:"type:varchar(10);not null;index" json:"type"`
	Status ApplicationStatus `gorm:"type:varchar(10);default:'pending';index" json:"status"`

	Payload string `gorm:"type:text;not null" json:"-"`

	FirstName   string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(100);not null;index" json:"last_name"`
	Email       string    `gorm:"type:varchar(255);not null;index" json:"email"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`

	// Storage key of the generated summary PDF; empty until the first
	// successful generation, replaced on regeneration.
	PDFFile string `gorm:"type:text" json:"pdf_file,omitempty"`

	ReviewedBy      *uint      `gorm:"index" json:"reviewed_by,omitempty"`
	Reviewer        *User      `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

// DecodePayload deserializes the stored form into its typed shape.
func (a *Application) DecodePayload() (*ApplicationPayload, error) {
	var payload ApplicationPayload
	if err := json.Unmarshal([]byte(a.Payload), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ApplicationPayload is the typed form of a submitted application. It is
// serialized to JSON into Application.Payload at submission time.
type ApplicationPayload struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	TaxCode    string `json:"tax_code"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD
	BirthPlace string `json:"birth_place"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`

	Licenses  []LicenseEntry  `json:"licenses,omitempty"`
	Courses   []CourseEntry   `json:"courses,omitempty"`
	Guardians []GuardianEntry `json:"guardians,omitempty"`

	Consents ConsentSet `json:"consents"`
}

// LicenseEntry is a driving or operating license declared by the applicant.
type LicenseEntry struct {
	Type      string `json:"type"`
	Number    string `json:"number"`
	IssuedAt  string `json:"issued_at,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CourseEntry is a completed training course declared by the applicant.
type CourseEntry struct {
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	Year     int    `json:"year,omitempty"`
}

// GuardianEntry is a parent or tutor record embedded in a junior application.
type GuardianEntry struct {
	Type      GuardianType `json:"type"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	TaxCode   string       `json:"tax_code"`
	Phone     string       `json:"phone"`
	Email     string       `json:"email,omitempty"`
	Address   string       `json:"address,omitempty"`
}

// ConsentSet holds every legal/organizational acknowledgment the submission
// form can carry. Which flags are required depends on the applicant category;
// the required sets live in the consent validator.
type ConsentSet struct {
	OperationalAvailability bool `json:"operational_availability"`
	NoCriminalRecord        bool `json:"no_criminal_record"`
	UnpaidRole              bool `json:"unpaid_role"`
	SafetyEquipment         bool `json:"safety_equipment"`
	BylawsAccepted          bool `json:"bylaws_accepted"`
	ActivityRisks           bool `json:"activity_risks"`
	ThirdPartyRisks         bool `json:"third_party_risks"`
	CivilLiability          bool `json:"civil_liability"`
	DeclarationsTruthful    bool `json:"declarations_truthful"`
	PrivacyPolicy           bool `json:"privacy_policy"`
	PhotoVideo              bool `json:"photo_video"`
	InternalRules           bool `json:"internal_rules"`
	DataAccuracy            bool `json:"data_accuracy"`
	GuardianResponsibility  bool `json:"guardian_responsibility"`
}
