package family

import (
	"encoding/json"
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/familytreebackend/models"
)

func TestUpdateInputDistinguishesAbsentFromNull(t *testing.T) {
	var in UpdatePersonInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Said","father_code":null,"generation_level":3}`), &in))

	assert.True(t, in.Name.Set)
	assert.Equal(t, "Said", *in.Name.Value)
	assert.True(t, in.FatherCode.Set)
	assert.Nil(t, in.FatherCode.Value)
	assert.False(t, in.MotherCode.Set)
	assert.Equal(t, 3, *in.GenerationLevel.Value)

	cols := in.columns()
	assert.Len(t, cols, 3)
	assert.Contains(t, cols, "father_code")
	assert.NotContains(t, cols, "mother_code")
}

func TestUpdateInputCleansBlankRelatives(t *testing.T) {
	in := UpdatePersonInput{WifeCode: Some("  "), Name: Some("  Said ")}
	in.clean()
	assert.True(t, in.WifeCode.Set)
	assert.Nil(t, in.WifeCode.Value)
	assert.Equal(t, "Said", *in.Name.Value)
}

func TestUpdateInputValidation(t *testing.T) {
	in := UpdatePersonInput{Name: Some(""), GenerationLevel: Some(-2)}
	err := in.Validate()
	require.Error(t, err)

	var fields validation.Errors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "generation_level")

	assert.NoError(t, UpdatePersonInput{}.Validate())
	assert.NoError(t, UpdatePersonInput{RelationType: Null[models.RelationType]()}.Validate())
}

func TestCreateInputBlankInfoFieldsAreDropped(t *testing.T) {
	in := CreatePersonInput{Code: "A0-000-001", Name: "Ahmed", Info: &InfoInput{Email: strPtr("  "), Phone: strPtr(" 123 ")}}
	original := in.Info
	in.clean()
	require.NoError(t, in.Validate())

	p := in.model()
	assert.Nil(t, p.Info.Email)
	assert.Equal(t, "123", *p.Info.Phone)
	assert.Equal(t, " 123 ", *original.Phone)
}

func strPtr(s string) *string { return &s }
