package validation_test

import (
	"testing"

	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/validation"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registrationRules = []validation.Rule{
	validation.Required("firstName", "First name is required"),
	validation.Required("lastName", "Last name is required"),
	validation.Required("email", "Email is required"),
	validation.Email("email", validation.PatternStrict, "Email is invalid"),
	validation.Present("password", "Password is required"),
	validation.MinLength("password", 6, "Password must be at least 6 characters"),
	validation.Match("confirmPassword", "password", "Passwords do not match"),
}

func validRegistration() *domain.FormState {
	s := domain.NewFormState(validation.Fields(registrationRules)...)
	s.Set("firstName", "Ada")
	s.Set("lastName", "Lovelace")
	s.Set("email", "ada@example.org")
	s.Set("password", "secret1")
	s.Set("confirmPassword", "secret1")
	return s
}

func TestValidate_AllRulesPass(t *testing.T) {
	v := validation.MustNew(registrationRules)

	result := v.Validate(validRegistration())

	assert.True(t, result.Valid(), "unexpected errors: %v", result)
}

func TestValidate_MissingExactlyOneField(t *testing.T) {
	v := validation.MustNew(registrationRules)

	for _, field := range []string{"firstName", "lastName", "email"} {
		t.Run(field, func(t *testing.T) {
			s := validRegistration()
			s.Set(field, "   ")

			result := v.Validate(s)

			require.Len(t, result, 1)
			assert.Contains(t, result, field)
		})
	}
}

func TestValidate_FieldRules(t *testing.T) {
	v := validation.MustNew(registrationRules)

	tests := []struct {
		name  string
		mut   func(*domain.FormState)
		field string
		want  string
	}{
		{"required shadows email", func(s *domain.FormState) { s.Set("email", "") }, "email", "Email is required"},
		{"malformed email", func(s *domain.FormState) { s.Set("email", "not-an-email") }, "email", "Email is invalid"},
		{"email with space", func(s *domain.FormState) { s.Set("email", "a b@c.de") }, "email", "Email is invalid"},
		{"short password", func(s *domain.FormState) {
			s.Set("password", "abc")
			s.Set("confirmPassword", "abc")
		}, "password", "Password must be at least 6 characters"},
		{"mismatch", func(s *domain.FormState) { s.Set("confirmPassword", "other1") }, "confirmPassword", "Passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validRegistration()
			tt.mut(s)

			result := v.Validate(s)

			assert.Equal(t, tt.want, result[tt.field])
		})
	}
}

func TestValidate_LooseEmailAcceptsAtInLocalPart(t *testing.T) {
	loose := validation.MustNew([]validation.Rule{validation.Email("email", validation.PatternLoose, "")})
	strict := validation.MustNew([]validation.Rule{validation.Email("email", validation.PatternStrict, "")})
	s := domain.NewFormState("email")
	s.Set("email", "a@b@c.de")

	assert.True(t, loose.Validate(s).Valid())
	assert.False(t, strict.Validate(s).Valid())
}

func TestValidate_FileAndOneOf(t *testing.T) {
	v := validation.MustNew([]validation.Rule{
		validation.File("profilePic", "Profile picture is required"),
		validation.OneOf("helpType", domain.HelpTypes, "Please select a help type"),
	})
	s := domain.NewFormState("profilePic", "helpType")
	s.Set("helpType", "Spaceships")

	result := v.Validate(s)

	want := domain.ValidationResult{
		"profilePic": "Profile picture is required",
		"helpType":   "Please select a help type",
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}

	s.SetFile("profilePic", &domain.UploadedFile{Name: "me.png"})
	s.Set("helpType", "Food Support")
	assert.True(t, v.Validate(s).Valid())
}

func TestValidate_Idempotent(t *testing.T) {
	v := validation.MustNew(registrationRules)
	s := validRegistration()
	s.Set("email", "nope")
	s.Set("lastName", "")

	first := v.Validate(s)
	second := v.Validate(s)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated validation differs (-first +second):\n%s", diff)
	}
}

func TestValidate_DefaultMessages(t *testing.T) {
	v := validation.MustNew([]validation.Rule{
		{Field: "phoneNumber", Kind: validation.KindRequired},
	})

	result := v.Validate(domain.NewFormState("phoneNumber"))

	assert.Equal(t, "Phone number is required", result["phoneNumber"])
}

func TestValidate_PresentCountsWhitespace(t *testing.T) {
	v := validation.MustNew(registrationRules)

	s := validRegistration()
	s.Set("password", "      ")
	s.Set("confirmPassword", "      ")
	assert.True(t, v.Validate(s).Valid(), "a password of spaces is still a password")

	s.Set("password", "")
	s.Set("confirmPassword", "")
	assert.Equal(t, "Password is required", v.Validate(s)["password"])
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Phone number", validation.Label("phoneNumber"))
	assert.Equal(t, "Email", validation.Label("email"))
	assert.Equal(t, "Confirm password", validation.Label("confirmPassword"))
}

func TestNew_RejectsBadTables(t *testing.T) {
	cases := map[string][]validation.Rule{
		"missing field":  {{Kind: validation.KindRequired}},
		"unknown kind":   {{Field: "x", Kind: "exotic"}},
		"bad pattern":    {{Field: "x", Kind: validation.KindEmail, Pattern: "("}},
		"match no other": {{Field: "x", Kind: validation.KindMatch}},
		"zero min":       {{Field: "x", Kind: validation.KindMinLength}},
	}
	for name, rules := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := validation.New(rules)
			assert.Error(t, err)
		})
	}
}

func TestParseRules(t *testing.T) {
	data := []byte(`
- field: email
  kind: required
  message: Email is required
- field: email
  kind: email
  pattern: loose
- field: password
  kind: min_length
  min: "8"
- field: helpType
  kind: one_of
  options: [a, b]
`)

	rules, err := validation.ParseRules(data)
	require.NoError(t, err)
	require.Len(t, rules, 4)
	assert.Equal(t, validation.KindEmail, rules[1].Kind)
	assert.Equal(t, validation.PatternLoose, rules[1].Pattern)
	assert.Equal(t, 8, rules[2].Min)
	assert.Equal(t, []string{"a", "b"}, rules[3].Options)
	assert.Equal(t, []string{"email", "password", "helpType"}, validation.Fields(rules))

	_, err = validation.ParseRules([]byte("- field: x\n  kind: required\n  typo: 1\n"))
	assert.Error(t, err, "unknown keys must be rejected")
}
