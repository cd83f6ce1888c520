package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// MaxLengthRule ensures the password has at most max characters.
func MaxLengthRule(max int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if max > 0 && len([]rune(password)) > max {
			return &PasswordValidationError{
				Code:    "max_length",
				Message: fmt.Sprintf("password must be at most %d characters long", max),
			}
		}
		return nil
	})
}

// NoWhitespaceRule rejects passwords containing spaces or control characters.
func NoWhitespaceRule() PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		for _, r := range password {
			if unicode.IsSpace(r) || unicode.IsControl(r) {
				return &PasswordValidationError{
					Code:    "whitespace",
					Message: "password must not contain whitespace",
				}
			}
		}
		return nil
	})
}

// RequirePasswordStrengthRule enforces a minimum zxcvbn score to reject weak passwords.
func RequirePasswordStrengthRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score >= minScore {
			return nil
		}

		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "password is too weak; choose a more complex value",
		}
	})
}

// PasswordPolicyConfig bounds signup passwords.
type PasswordPolicyConfig struct {
	MinLength   int
	MaxLength   int
	MinStrength int
}

// PasswordPolicy builds a validator per call so user inputs (username, email)
// feed the strength estimate.
type PasswordPolicy struct {
	cfg PasswordPolicyConfig
}

var _ port.PasswordPolicyValidator = (*PasswordPolicy)(nil)

// NewPasswordPolicy returns a policy for cfg.
func NewPasswordPolicy(cfg PasswordPolicyConfig) *PasswordPolicy {
	return &PasswordPolicy{cfg: cfg}
}

// Validate applies length, whitespace and strength rules in that order.
func (p *PasswordPolicy) Validate(password string, inputs ...string) error {
	return NewPasswordValidator(
		MinLengthRule(p.cfg.MinLength),
		MaxLengthRule(p.cfg.MaxLength),
		NoWhitespaceRule(),
		RequirePasswordStrengthRule(p.cfg.MinStrength, inputs...),
	).Validate(password)
}
