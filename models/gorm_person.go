package models

import "regexp"

// CodePattern is the format of externally assigned person codes, e.g. A0-000-001.
var CodePattern = regexp.MustCompile(`^[A-Z]\d{0,3}-\d{3}-\d{3}$`)

// ValidCode reports whether s is a well-formed person code.
func ValidCode(s string) bool {
	return CodePattern.MatchString(s)
}

// RelationType describes how a node relates to the entry it was added under.
// It is descriptive only and never drives traversal.
type RelationType string

const (
	RelationSon              RelationType = "son"
	RelationDaughter         RelationType = "daughter"
	RelationHusband          RelationType = "husband"
	RelationWife             RelationType = "wife"
	RelationHusbandsSon      RelationType = "husbands_son"
	RelationHusbandsDaughter RelationType = "husbands_daughter"
	RelationWifesSon         RelationType = "wifes_son"
	RelationWifesDaughter    RelationType = "wifes_daughter"
)

// RelationTypes lists every accepted relation type.
var RelationTypes = []RelationType{
	RelationSon, RelationDaughter, RelationHusband, RelationWife,
	RelationHusbandsSon, RelationHusbandsDaughter, RelationWifesSon, RelationWifesDaughter,
}

// Gender returns the gender implied by the relation type, or "" when unknown.
func (rt RelationType) Gender() Gender {
	switch rt {
	case RelationSon, RelationHusband, RelationHusbandsSon, RelationWifesSon:
		return GenderMale
	case RelationDaughter, RelationWife, RelationHusbandsDaughter, RelationWifesDaughter:
		return GenderFemale
	default:
		return ""
	}
}

// Person is a node of the family graph. It corresponds to the 'people' table.
// Relatives are referenced by code only; there are no foreign key constraints
// on them so a relative may point at a code that no longer exists.
type Person struct {
	Code            string        `gorm:"primaryKey;size:32" json:"code"`
	Name            string        `gorm:"not null" json:"name"`
	FatherCode      *string       `gorm:"size:32;index" json:"father_code,omitempty"`
	MotherCode      *string       `gorm:"size:32;index" json:"mother_code,omitempty"`
	HusbandCode     *string       `gorm:"size:32;index" json:"husband_code,omitempty"`
	WifeCode        *string       `gorm:"size:32;index" json:"wife_code,omitempty"`
	RelationType    *RelationType `gorm:"size:32" json:"relation_type,omitempty"`
	GenerationLevel int           `gorm:"not null;default:0;index" json:"generation_level"`
	Nickname        *string       `json:"nickname,omitempty"`
	CreatedAt       int64         `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt       int64         `gorm:"not null" json:"updated_at"` // Unix timestamp

	// omitempty hides these when they are not preloaded
	Info  *PersonInfo  `gorm:"foreignKey:Code;references:Code;constraint:OnDelete:CASCADE" json:"info,omitempty"`
	Media *PersonMedia `gorm:"foreignKey:Code;references:Code;constraint:OnDelete:CASCADE" json:"media,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// NicknameValue returns the nickname or "" when unset.
func (p *Person) NicknameValue() string {
	if p == nil || p.Nickname == nil {
		return ""
	}
	return *p.Nickname
}

// InferredGender prefers the recorded gender and falls back to the relation type.
func (p *Person) InferredGender() Gender {
	if p.Info != nil && p.Info.Gender != nil && *p.Info.Gender != "" {
		return *p.Info.Gender
	}
	if p.RelationType != nil {
		return p.RelationType.Gender()
	}
	return ""
}
