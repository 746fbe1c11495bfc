// Package validate holds the pure field validators run before any request
// reaches a store. Each validator returns nil or an error whose message is
// safe to surface inline next to the offending field.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/huanvo/bookverse-api/internal/models"
)

var (
	ErrInvalid = errors.New("invalid")

	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Mobile numbers: leading 0, second digit 3-9, 10 digits total.
	phoneRe = regexp.MustCompile(`^0[3-9]\d{8}$`)
	// Password alphabet is restricted to letters, digits and underscore.
	passwordAlphabetRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 16
	UsernameMinLen = 3
	NameMinLen     = 3
	PriceMax       = 99999.99
)

// RequireBounded trims and ensures length bounds.
func RequireBounded(name, s string, min, max int) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < min || utf8.RuneCountInString(s) > max {
		return "", errors.New(name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters")
	}
	return s, nil
}

func Email(s string) error {
	if !emailRe.MatchString(strings.TrimSpace(s)) {
		return errors.New("invalid email address")
	}
	return nil
}

func Phone(s string) error {
	if !phoneRe.MatchString(strings.TrimSpace(s)) {
		return errors.New("phone must be 10 digits starting with 0 and a second digit of 3-9")
	}
	return nil
}

func Username(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < UsernameMinLen {
		return fmt.Errorf("username must be at least %d characters long", UsernameMinLen)
	}
	return nil
}

func PersonName(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < NameMinLen {
		return fmt.Errorf("name must be at least %d characters long", NameMinLen)
	}
	return nil
}

// Password enforces the account password policy: 8-16 characters from
// [A-Za-z0-9_] with at least one uppercase letter, one lowercase letter
// and one digit. The error names the first missing requirement so it can
// be shown inline.
func Password(s string) error {
	if n := len(s); n < PasswordMinLen || n > PasswordMaxLen {
		return fmt.Errorf("password must be %d-%d characters long", PasswordMinLen, PasswordMaxLen)
	}
	if !passwordAlphabetRe.MatchString(s) {
		return errors.New("password may only contain letters, digits and underscore")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	switch {
	case !hasUpper:
		return errors.New("password must contain at least one uppercase letter")
	case !hasLower:
		return errors.New("password must contain at least one lowercase letter")
	case !hasDigit:
		return errors.New("password must contain at least one digit")
	}
	return nil
}

// PublishedDate parses a "2006-01-02" string, rejecting impossible calendar
// dates (the parse round-trips year/month/day exactly) and future dates.
func PublishedDate(s string, now time.Time) (models.Date, error) {
	d, err := models.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return models.Date{}, err
	}
	if d.After(now) {
		return models.Date{}, errors.New("published date must not be in the future")
	}
	return d, nil
}

// NotFuture rejects dates past today.
func NotFuture(d models.Date) error {
	if d.After(time.Now()) {
		return errors.New("published date must not be in the future")
	}
	return nil
}

// Price bounds the value and rejects more than two decimal places.
func Price(v float64) error {
	if v < 0 || v > PriceMax {
		return fmt.Errorf("price must be between 0 and %.2f", PriceMax)
	}
	if math.Abs(v*100-math.Round(v*100)) > 1e-9 {
		return errors.New("price must have at most two decimal places")
	}
	return nil
}

func StockQuantity(n int) error {
	if n < 0 {
		return errors.New("stock quantity must not be negative")
	}
	return nil
}

// CartQuantity is stricter than stock: a cart line always holds at least one.
func CartQuantity(n int) error {
	if n <= 0 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}
