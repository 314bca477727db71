package service

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/pkg/util"
)

// ConsentValidator checks a submitted payload against the mandatory
// declaration set of the applicant's category. Validate returns every
// failure it finds, in a stable order, so the applicant can fix the whole
// form in one pass.
type ConsentValidator interface {
	Validate(appType model.ApplicationType, payload *model.ApplicationPayload) []string
}

type consentValidator struct{}

func NewConsentValidator() ConsentValidator {
	return &consentValidator{}
}

// consentCheck pairs one consent flag with the message reported when the
// flag is missing. Order in the slices below is the order of the reasons
// in the response.
type consentCheck struct {
	accepted func(c model.ConsentSet) bool
	reason   string
}

var adultConsentChecks = []consentCheck{
	{func(c model.ConsentSet) bool { return c.OperationalAvailability }, "operational availability declaration is required"},
	{func(c model.ConsentSet) bool { return c.NoCriminalRecord }, "no criminal record declaration is required"},
	{func(c model.ConsentSet) bool { return c.UnpaidRole }, "unpaid role acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.SafetyEquipment }, "safety equipment acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.BylawsAccepted }, "bylaws acceptance is required"},
	{func(c model.ConsentSet) bool { return c.ActivityRisks }, "activity risks acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.ThirdPartyRisks }, "third party risks acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.CivilLiability }, "civil liability acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.DeclarationsTruthful }, "truthfulness declaration is required"},
	{func(c model.ConsentSet) bool { return c.PrivacyPolicy }, "privacy policy consent is required"},
	{func(c model.ConsentSet) bool { return c.PhotoVideo }, "photo and video consent is required"},
	{func(c model.ConsentSet) bool { return c.InternalRules }, "internal rules acceptance is required"},
	{func(c model.ConsentSet) bool { return c.DataAccuracy }, "data accuracy declaration is required"},
}

var juniorConsentChecks = []consentCheck{
	{func(c model.ConsentSet) bool { return c.BylawsAccepted }, "bylaws acceptance is required"},
	{func(c model.ConsentSet) bool { return c.UnpaidRole }, "unpaid role acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.SafetyEquipment }, "safety equipment acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.ActivityRisks }, "activity risks acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.CivilLiability }, "civil liability acknowledgment is required"},
	{func(c model.ConsentSet) bool { return c.PrivacyPolicy }, "privacy policy consent is required"},
	{func(c model.ConsentSet) bool { return c.PhotoVideo }, "photo and video consent is required"},
	{func(c model.ConsentSet) bool { return c.GuardianResponsibility }, "guardian responsibility declaration is required"},
}

func (v *consentValidator) Validate(appType model.ApplicationType, payload *model.ApplicationPayload) []string {
	var reasons []string

	reasons = append(reasons, v.validatePersonal(payload)...)

	checks := adultConsentChecks
	if appType == model.ApplicationTypeJunior {
		checks = juniorConsentChecks
	}
	for _, check := range checks {
		if !check.accepted(payload.Consents) {
			reasons = append(reasons, check.reason)
		}
	}

	if appType == model.ApplicationTypeJunior {
		if birthDate, err := time.Parse("2006-01-02", payload.BirthDate); err == nil {
			if age(birthDate, time.Now()) >= 18 {
				reasons = append(reasons, "junior applicants must be under 18 years old")
			}
		}
		reasons = append(reasons, v.validateGuardians(payload)...)
	}

	return reasons
}

func age(birthDate, at time.Time) int {
	years := at.Year() - birthDate.Year()
	if at.YearDay() < birthDate.YearDay() {
		years--
	}
	return years
}

func (v *consentValidator) validatePersonal(payload *model.ApplicationPayload) []string {
	var reasons []string

	if strings.TrimSpace(payload.FirstName) == "" {
		reasons = append(reasons, "first name is required")
	}
	if strings.TrimSpace(payload.LastName) == "" {
		reasons = append(reasons, "last name is required")
	}
	if !util.ValidateTaxCode(payload.TaxCode) {
		reasons = append(reasons, "tax code is not a valid fiscal code")
	}
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		reasons = append(reasons, "email address is not valid")
	}
	if _, err := time.Parse("2006-01-02", payload.BirthDate); err != nil {
		reasons = append(reasons, "birth date must be in YYYY-MM-DD format")
	}

	return reasons
}

func (v *consentValidator) validateGuardians(payload *model.ApplicationPayload) []string {
	var reasons []string

	if len(payload.Guardians) == 0 {
		reasons = append(reasons, "at least one guardian is required for junior applicants")
		return reasons
	}

	for i, g := range payload.Guardians {
		switch g.Type {
		case model.GuardianTypeFather, model.GuardianTypeMother, model.GuardianTypeTutor:
		default:
			reasons = append(reasons, fmt.Sprintf("guardian %d has an unknown relationship type", i+1))
		}
		if strings.TrimSpace(g.FirstName) == "" || strings.TrimSpace(g.LastName) == "" {
			reasons = append(reasons, fmt.Sprintf("guardian %d is missing a name", i+1))
		}
		if !util.ValidateTaxCode(g.TaxCode) {
			reasons = append(reasons, fmt.Sprintf("guardian %d tax code is not a valid fiscal code", i+1))
		}
		if strings.TrimSpace(g.Phone) == "" {
			reasons = append(reasons, fmt.Sprintf("guardian %d phone number is required", i+1))
		}
	}

	return reasons
}
