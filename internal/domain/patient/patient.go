package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
	SexOther  Sex = "O"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexFemale, SexMale, SexOther:
		return true
	}
	return false
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	FirstName   string    `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName    string    `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;type:date;not null" json:"date_of_birth"`
	Sex         Sex       `gorm:"column:sex;type:varchar(1);not null" json:"sex"`
	Phone       string    `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	Email       string    `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Patient) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		years--
	}
	return years
}

type CreatePatientCommand struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Sex         Sex
	Phone       string
	Email       string
}

// ListPatientsQuery defines filtering and pagination for patient list queries.
type ListPatientsQuery struct {
	Search   string // case-insensitive match on first or last name
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
