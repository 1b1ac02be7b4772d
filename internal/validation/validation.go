package validation

import (
	"regexp"
	"time"

	"shelftrack/internal/domain"
)

var emailRX = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+\/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Validator collects field errors; every rule is an explicit typed check
// instead of an interpolated rule string.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Check records message under key when ok is false. The first failure per
// field wins.
func (v *Validator) Check(ok bool, key, message string) {
	if ok {
		return
	}
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

func (v *Validator) Valid() bool { return len(v.Errors) == 0 }

// Err returns the collected failures as a domain error, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &domain.ValidationError{Fields: v.Errors}
}

func IsEmail(s string) bool {
	return emailRX.MatchString(s)
}

// IsDate reports whether s is a calendar date in ISO form.
func IsDate(s string) bool {
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

// MaxChars limits by runes, not bytes.
func MaxChars(s string, n int) bool {
	return len([]rune(s)) <= n
}

func MinChars(s string, n int) bool {
	return len([]rune(s)) >= n
}
