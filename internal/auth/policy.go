package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/taskforge/internal/apperror"
)

const (
	minFullNameLength = 3
	// bcrypt は 72 バイトを超える入力を扱えない
	maxPasswordBytes = 72
)

// PasswordPolicy はパスワード強度の最低条件です。
type PasswordPolicy struct {
	MinLength  int
	RequireMix bool // 英字・数字・記号をそれぞれ1文字以上
}

// Check は条件を満たさない項目ごとのメッセージを返します。
func (p PasswordPolicy) Check(password string) []string {
	var problems []string
	if utf8.RuneCountInString(password) < p.MinLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters", p.MinLength))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}
	if !p.RequireMix {
		return problems
	}

	var letter, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !letter || !digit || !symbol {
		problems = append(problems, "Password must contain letters, numbers and symbols")
	}
	return problems
}

// inputValidator は入力値の書式チェックをまとめます。
type inputValidator struct {
	validate *validator.Validate
	policy   PasswordPolicy
}

func newInputValidator(policy PasswordPolicy) *inputValidator {
	return &inputValidator{validate: validator.New(), policy: policy}
}

func (v *inputValidator) signup(in SignupInput) error {
	var fields []apperror.FieldError
	if msgs := v.email(in.Email); len(msgs) > 0 {
		fields = append(fields, apperror.FieldError{Field: "email", Messages: msgs})
	}
	name := strings.TrimSpace(in.FullName)
	switch {
	case name == "":
		fields = append(fields, apperror.FieldError{Field: "fullName", Messages: []string{"Full name is required"}})
	case utf8.RuneCountInString(name) < minFullNameLength:
		fields = append(fields, apperror.FieldError{
			Field:    "fullName",
			Messages: []string{fmt.Sprintf("Full name must be at least %d characters", minFullNameLength)},
		})
	}
	if msgs := v.policy.Check(in.Password); len(msgs) > 0 {
		fields = append(fields, apperror.FieldError{Field: "password", Messages: msgs})
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields)
	}
	return nil
}

func (v *inputValidator) signin(in SigninInput) error {
	var fields []apperror.FieldError
	if msgs := v.email(in.Email); len(msgs) > 0 {
		fields = append(fields, apperror.FieldError{Field: "email", Messages: msgs})
	}
	if in.Password == "" {
		fields = append(fields, apperror.FieldError{Field: "password", Messages: []string{"Password is required"}})
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields)
	}
	return nil
}

func (v *inputValidator) email(email string) []string {
	if email == "" {
		return []string{"Email is required"}
	}
	if err := v.validate.Var(email, "email"); err != nil {
		return []string{"Invalid email address"}
	}
	return nil
}
