package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for birth dates.
const DateLayout = "2006-01-02"

// Contact is an address book entry owned by exactly one user.
type Contact struct {
	ID             int64
	Name           string
	Surname        string
	Email          string
	Phone          string
	BirthDate      time.Time
	AdditionalInfo *string
	OwnerID        int64
	CreatedAt      *time.Time
	UpdatedAt      *time.Time
}

// ContactInput carries the writable contact fields.
type ContactInput struct {
	Name           string
	Surname        string
	Email          string
	Phone          string
	BirthDate      time.Time
	AdditionalInfo *string
}

// ContactFilter holds optional case-insensitive partial match terms.
type ContactFilter struct {
	Name    string
	Surname string
	Email   string
}

// Trim strips surrounding whitespace from every term.
func (f ContactFilter) Trim() ContactFilter {
	return ContactFilter{
		Name:    strings.TrimSpace(f.Name),
		Surname: strings.TrimSpace(f.Surname),
		Email:   strings.TrimSpace(f.Email),
	}
}

// Empty reports whether no filter term is set.
func (f ContactFilter) Empty() bool {
	return f.Name == "" && f.Surname == "" && f.Email == ""
}

// Page is a limit/offset window over an owner's contacts.
type Page struct {
	Limit  int
	Offset int
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}
