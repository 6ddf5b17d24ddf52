// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type passwordFixture struct {
	Password string `validate:"strong_password"`
}

type usernameFixture struct {
	Username string `validate:"username"`
}

type rateFixture struct {
	Rate decimal.Decimal `validate:"commission_rate"`
}

func TestStrongPasswordValidation(t *testing.T) {
	valid := []string{"Passw0rd!", "S3cure#pass", "Aa1!aaaa"}
	for _, p := range valid {
		assert.NoError(t, ValidateStruct(&passwordFixture{Password: p}), p)
	}

	invalid := []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoNumbers!", "NoSpecial1"}
	for _, p := range invalid {
		assert.Error(t, ValidateStruct(&passwordFixture{Password: p}), p)
	}
}

func TestUsernameValidation(t *testing.T) {
	valid := []string{"samoku_vendor", "abc", "Shop123"}
	for _, u := range valid {
		assert.NoError(t, ValidateStruct(&usernameFixture{Username: u}), u)
	}

	invalid := []string{"ab", "has space", "bad-dash", "dots.not.ok"}
	for _, u := range invalid {
		assert.Error(t, ValidateStruct(&usernameFixture{Username: u}), u)
	}
}

func TestCommissionRateValidation(t *testing.T) {
	valid := []string{"0", "5", "12.5", "100"}
	for _, r := range valid {
		rate, _ := decimal.NewFromString(r)
		assert.NoError(t, ValidateStruct(&rateFixture{Rate: rate}), r)
	}

	invalid := []string{"-0.01", "100.01", "500"}
	for _, r := range invalid {
		rate, _ := decimal.NewFromString(r)
		assert.Error(t, ValidateStruct(&rateFixture{Rate: rate}), r)
	}
}

func TestGetValidationErrors(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required"`
	}

	errs := GetValidationErrors(ValidateStruct(&form{Email: "not-an-email"}))
	assert.Len(t, errs, 2)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Tag
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "required", fields["name"])
}

func TestGetValidationErrorsNil(t *testing.T) {
	assert.Empty(t, GetValidationErrors(nil))
}
