package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	FirstName      string `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName       string `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	Specialization string `gorm:"column:specialization;type:varchar(100);index" json:"specialization"`
	Phone          string `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	Email          string `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

type CreateDoctorCommand struct {
	FirstName      string
	LastName       string
	Specialization string
	Phone          string
	Email          string
}
