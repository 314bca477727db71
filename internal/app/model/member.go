package model

import (
	"time"

	"gorm.io/gorm"
)

type MemberType string // adult or junior member

const (
	MemberTypeAdult  MemberType = "adult"
	MemberTypeJunior MemberType = "junior"
)

// Member is the canonical identity record of an association volunteer,
// created exactly once when an application is approved. Adults and juniors
// share the table and one registration number sequence; juniors additionally
// carry guardian rows. The record outlives the originating application.
type Member struct {
	ID                 uint       `gorm:"primarykey" json:"id"`
	RegistrationNumber int        `gorm:"uniqueIndex;not null" json:"registration_number"`
	BadgeNumber        string     `gorm:"type:varchar(20)" json:"badge_number,omitempty"`
	Type               MemberType `gorm:"type:varchar(10);not null;index" json:"type"`

	// Back-reference to the application this member was provisioned from.
	ApplicationID uint `gorm:"not null;index" json:"application_id"`

	FirstName  string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName   string `gorm:"type:varchar(100);not null;index" json:"last_name"`
	TaxCode    string `gorm:"type:varchar(16);not null" json:"tax_code"`
	BirthDate  string `gorm:"type:varchar(10)" json:"birth_date"`
	BirthPlace string `gorm:"type:varchar(100)" json:"birth_place"`
	Address    string `gorm:"type:text" json:"address"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	PostalCode string `gorm:"type:varchar(10)" json:"postal_code"`
	Phone      string `gorm:"type:varchar(30)" json:"phone"`
	Email      string `gorm:"type:varchar(255);index" json:"email"`

	JoinedAt time.Time `gorm:"not null" json:"joined_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Licenses  []MemberLicense  `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"licenses,omitempty"`
	Courses   []MemberCourse   `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"courses,omitempty"`
	Guardians []MemberGuardian `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"guardians,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

type MemberLicense struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	MemberID  uint   `gorm:"not null;index" json:"member_id"`
	Type      string `gorm:"type:varchar(20);not null" json:"type"`
	Number    string `gorm:"type:varchar(50)" json:"number"`
	IssuedAt  string `gorm:"type:varchar(10)" json:"issued_at,omitempty"`
	ExpiresAt string `gorm:"type:varchar(10)" json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (MemberLicense) TableName() string {
	return "member_licenses"
}

type MemberCourse struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	MemberID uint   `gorm:"not null;index" json:"member_id"`
	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	Provider string `gorm:"type:varchar(200)" json:"provider,omitempty"`
	Year     int    `json:"year,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (MemberCourse) TableName() string {
	return "member_courses"
}

type MemberGuardian struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	MemberID  uint         `gorm:"not null;index" json:"member_id"`
	Type      GuardianType `gorm:"type:varchar(10);not null" json:"type"`
	FirstName string       `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string       `gorm:"type:varchar(100);not null" json:"last_name"`
	TaxCode   string       `gorm:"type:varchar(16)" json:"tax_code"`
	Phone     string       `gorm:"type:varchar(30)" json:"phone"`
	Email     string       `gorm:"type:varchar(255)" json:"email,omitempty"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (MemberGuardian) TableName() string {
	return "member_guardians"
}
