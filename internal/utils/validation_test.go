package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carvy-clinic/internal/utils"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, utils.IsValidEmail("a@x.com"))
	assert.True(t, utils.IsValidEmail("maria.garcia@clinic.example.org"))
	assert.False(t, utils.IsValidEmail("not-an-email"))
	assert.False(t, utils.IsValidEmail("a@x"))
	assert.False(t, utils.IsValidEmail("a b@x.com"))
	assert.False(t, utils.IsValidEmail(""))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Dr. A", utils.Sanitize("  Dr. A  "))
	assert.Equal(t, "scriptalert(1)/script", utils.Sanitize("<script>alert(1)</script>"))
	assert.Equal(t, "", utils.Sanitize("   "))
}

func TestFormatValidationError(t *testing.T) {
	type form struct {
		Name     string `validate:"required"`
		Password string `validate:"required,min=6"`
	}

	err := utils.Validate(form{Password: "abc"})
	require.Error(t, err)
	msg := utils.FormatValidationError(err)
	assert.Contains(t, msg, "name failed the required check")
	assert.Contains(t, msg, "password failed the min check")

	assert.NoError(t, utils.Validate(form{Name: "A", Password: "secret99"}))
}

func TestResult(t *testing.T) {
	ok := utils.Ok("done")
	assert.True(t, ok.Success)
	assert.Equal(t, "done", ok.Message)

	fail := utils.Fail("nope")
	assert.False(t, fail.Success)
	assert.Equal(t, "nope", fail.Message)
}
