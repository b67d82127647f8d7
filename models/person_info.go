package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// DateLayout is the storage format of birth and death dates.
const DateLayout = "2006-01-02"

// PersonInfo holds demographic attributes of a Person. It shares the person's
// code as its primary key and is removed together with the person.
type PersonInfo struct {
	Code         string  `gorm:"primaryKey;size:32" json:"code"`
	Gender       *Gender `gorm:"size:16" json:"gender,omitempty"`
	BirthDate    *string `gorm:"size:10" json:"birth_date,omitempty"`
	DeathDate    *string `gorm:"size:10" json:"death_date,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	PlaceOfBirth *string `json:"place_of_birth,omitempty"`
	Status       *string `json:"status,omitempty"`
	UpdatedAt    int64   `gorm:"not null" json:"updated_at"`
}

func (PersonInfo) TableName() string {
	return "person_infos"
}

// AgeAtDeath returns the completed years between the birth and death dates.
// ok is false when either date is missing or malformed.
func (i *PersonInfo) AgeAtDeath() (age int, ok bool) {
	if i == nil || i.BirthDate == nil || i.DeathDate == nil {
		return 0, false
	}
	born, err := time.Parse(DateLayout, *i.BirthDate)
	if err != nil {
		return 0, false
	}
	died, err := time.Parse(DateLayout, *i.DeathDate)
	if err != nil || died.Before(born) {
		return 0, false
	}
	age = died.Year() - born.Year()
	if died.Month() < born.Month() || (died.Month() == born.Month() && died.Day() < born.Day()) {
		age--
	}
	return age, true
}

// PersonMedia references the portrait of a Person.
type PersonMedia struct {
	Code         string `gorm:"primaryKey;size:32" json:"code"`
	PortraitPath string `gorm:"not null" json:"portrait_path"`
	UpdatedAt    int64  `gorm:"not null" json:"updated_at"`
}

func (PersonMedia) TableName() string {
	return "person_media"
}
