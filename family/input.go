package family

import (
	"bytes"
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/models"
)

// Optional distinguishes an absent field from an explicit null. Set is true
// whenever the field appeared in the input; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a set Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

var (
	genders       = []interface{}{models.GenderMale, models.GenderFemale}
	relationTypes = func() []interface{} {
		out := make([]interface{}, len(models.RelationTypes))
		for i, rt := range models.RelationTypes {
			out[i] = rt
		}
		return out
	}()
)

// blankToNil trims s; a blank value becomes nil.
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// InfoInput is the demographic part of a create or update.
type InfoInput struct {
	Gender       *models.Gender `json:"gender"`
	BirthDate    *string        `json:"birth_date"`
	DeathDate    *string        `json:"death_date"`
	Email        *string        `json:"email"`
	Phone        *string        `json:"phone"`
	Address      *string        `json:"address"`
	PlaceOfBirth *string        `json:"place_of_birth"`
	Status       *string        `json:"status"`
}

// clean trims every field; blank values become nil.
func (in *InfoInput) clean() {
	if in.Gender != nil && strings.TrimSpace(string(*in.Gender)) == "" {
		in.Gender = nil
	}
	for _, f := range []**string{&in.BirthDate, &in.DeathDate, &in.Email, &in.Phone, &in.Address, &in.PlaceOfBirth, &in.Status} {
		*f = blankToNil(*f)
	}
}

func (in InfoInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Gender, validation.In(genders...).Error("must be male or female")),
		validation.Field(&in.BirthDate, validation.Date(models.DateLayout).Error("must be a YYYY-MM-DD date")),
		validation.Field(&in.DeathDate, validation.Date(models.DateLayout).Error("must be a YYYY-MM-DD date")),
		validation.Field(&in.Email, is.Email),
	)
}

func (in InfoInput) model(code string) *models.PersonInfo {
	return &models.PersonInfo{
		Code:         code,
		Gender:       in.Gender,
		BirthDate:    in.BirthDate,
		DeathDate:    in.DeathDate,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		PlaceOfBirth: in.PlaceOfBirth,
		Status:       in.Status,
	}
}

// CreatePersonInput is a new node of the tree.
type CreatePersonInput struct {
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	FatherCode      *string              `json:"father_code"`
	MotherCode      *string              `json:"mother_code"`
	HusbandCode     *string              `json:"husband_code"`
	WifeCode        *string              `json:"wife_code"`
	RelationType    *models.RelationType `json:"relation_type"`
	GenerationLevel int                  `json:"generation_level"`
	Nickname        *string              `json:"nickname"`
	Info            *InfoInput           `json:"info"`
	PortraitPath    *string              `json:"portrait_path"`
}

func (in *CreatePersonInput) clean() {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.FatherCode = blankToNil(in.FatherCode)
	in.MotherCode = blankToNil(in.MotherCode)
	in.HusbandCode = blankToNil(in.HusbandCode)
	in.WifeCode = blankToNil(in.WifeCode)
	in.Nickname = blankToNil(in.Nickname)
	in.PortraitPath = blankToNil(in.PortraitPath)
	if in.Info != nil {
		info := *in.Info
		info.clean()
		in.Info = &info
	}
}

func (in CreatePersonInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Code, validation.Required.Error("code is required"), validation.Length(1, 32)),
		validation.Field(&in.Name, validation.Required.Error("name is required")),
		validation.Field(&in.RelationType, validation.In(relationTypes...).Error("unknown relation type")),
		validation.Field(&in.GenerationLevel, validation.Min(0).Error("must not be negative")),
		validation.Field(&in.Info),
	)
}

func (in CreatePersonInput) model() *models.Person {
	p := &models.Person{
		Code:            in.Code,
		Name:            in.Name,
		FatherCode:      in.FatherCode,
		MotherCode:      in.MotherCode,
		HusbandCode:     in.HusbandCode,
		WifeCode:        in.WifeCode,
		RelationType:    in.RelationType,
		GenerationLevel: in.GenerationLevel,
		Nickname:        in.Nickname,
	}
	if in.Info != nil {
		p.Info = in.Info.model(in.Code)
	}
	if in.PortraitPath != nil {
		p.Media = &models.PersonMedia{Code: in.Code, PortraitPath: *in.PortraitPath}
	}
	return p
}

// UpdatePersonInput is a partial update. Fields that are not Set are left
// as they are; a Set field with a nil Value clears a nullable column. Info
// and PortraitPath replace the stored rows when present.
type UpdatePersonInput struct {
	Name            Optional[string]              `json:"name"`
	FatherCode      Optional[string]              `json:"father_code"`
	MotherCode      Optional[string]              `json:"mother_code"`
	HusbandCode     Optional[string]              `json:"husband_code"`
	WifeCode        Optional[string]              `json:"wife_code"`
	RelationType    Optional[models.RelationType] `json:"relation_type"`
	GenerationLevel Optional[int]                 `json:"generation_level"`
	Nickname        Optional[string]              `json:"nickname"`
	Info            *InfoInput                    `json:"info"`
	PortraitPath    *string                       `json:"portrait_path"`
}

func (in *UpdatePersonInput) clean() {
	if in.Name.Set {
		in.Name.Value = trimPtr(in.Name.Value)
	}
	for _, o := range []*Optional[string]{&in.FatherCode, &in.MotherCode, &in.HusbandCode, &in.WifeCode, &in.Nickname} {
		if o.Set {
			o.Value = blankToNil(o.Value)
		}
	}
	in.PortraitPath = blankToNil(in.PortraitPath)
	if in.Info != nil {
		info := *in.Info
		info.clean()
		in.Info = &info
	}
}

func (in UpdatePersonInput) Validate() error {
	errs := validation.Errors{}
	if in.Name.Set {
		errs["name"] = validation.Validate(in.Name.Value, validation.Required.Error("name is required"))
	}
	if in.RelationType.Set {
		errs["relation_type"] = validation.Validate(in.RelationType.Value, validation.In(relationTypes...).Error("unknown relation type"))
	}
	if in.GenerationLevel.Set {
		errs["generation_level"] = validation.Validate(in.GenerationLevel.Value,
			validation.NotNil.Error("must not be null"), validation.Min(0).Error("must not be negative"))
	}
	if in.Info != nil {
		errs["info"] = in.Info.Validate()
	}
	return errs.Filter()
}

// columns returns the person columns to write, keyed by column name.
func (in UpdatePersonInput) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if in.Name.Set {
		cols["name"] = *in.Name.Value
	}
	setNullable := func(col string, o Optional[string]) {
		if o.Set {
			cols[col] = o.Value
		}
	}
	setNullable("father_code", in.FatherCode)
	setNullable("mother_code", in.MotherCode)
	setNullable("husband_code", in.HusbandCode)
	setNullable("wife_code", in.WifeCode)
	setNullable("nickname", in.Nickname)
	if in.RelationType.Set {
		cols["relation_type"] = in.RelationType.Value
	}
	if in.GenerationLevel.Set {
		cols["generation_level"] = *in.GenerationLevel.Value
	}
	return cols
}

// Validate checks the sort order and level of a listing request.
func (q ListQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Sort, validation.In(
			database.SortFullNameAsc, database.SortCodeAsc, database.SortLevelAsc, database.SortLevelDesc,
		).Error("must be one of full_name_asc, code_asc, level_asc, level_desc")),
		validation.Field(&q.MinLevel, validation.Min(0)),
	)
}
