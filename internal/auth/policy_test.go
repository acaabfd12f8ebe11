package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/yourusername/taskforge/internal/apperror"
)

func TestPasswordPolicyCheck(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8, RequireMix: true}

	cases := []struct {
		password string
		problems int
	}{
		{"Abcdef1!", 0},
		{"abc1!", 1},
		{"abcdefgh", 1},
		{"abc", 2},
		{"パスワード123$", 0},
		{strings.Repeat("a1!", 30), 1},
	}
	for _, tc := range cases {
		if got := policy.Check(tc.password); len(got) != tc.problems {
			t.Fatalf("Check(%q) = %v, want %d problems", tc.password, got, tc.problems)
		}
	}
}

func TestPasswordPolicyWithoutMix(t *testing.T) {
	policy := PasswordPolicy{MinLength: 6}
	if got := policy.Check("abcdef"); len(got) != 0 {
		t.Fatalf("unexpected problems: %v", got)
	}
}

func TestSignupValidationFields(t *testing.T) {
	v := newInputValidator(PasswordPolicy{MinLength: 8, RequireMix: true})

	err := v.signup(SignupInput{Email: "not-an-email", FullName: "Al", Password: "short"})
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	got := map[string]bool{}
	for _, f := range appErr.Fields {
		got[f.Field] = true
	}
	for _, field := range []string{"email", "fullName", "password"} {
		if !got[field] {
			t.Fatalf("expected %s in fields: %#v", field, appErr.Fields)
		}
	}

	if err := v.signup(SignupInput{Email: "a@example.com", FullName: "Alice", Password: "Passw0rd!"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSigninValidation(t *testing.T) {
	v := newInputValidator(PasswordPolicy{MinLength: 8})
	if err := v.signin(SigninInput{Email: "a@example.com"}); err == nil {
		t.Fatal("expected error for missing password")
	}
	if err := v.signin(SigninInput{Email: "a@example.com", Password: "x"}); err != nil {
		t.Fatalf("signin should not apply password policy: %v", err)
	}
}
