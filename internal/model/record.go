package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrValidation is wrapped by every record or profile validation failure.
	ErrValidation = errors.New("validation failed")

	ErrEmptyContent    = fmt.Errorf("%w: empty content", ErrValidation)
	ErrInvalidCategory = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrEmptyName       = fmt.Errorf("%w: empty name", ErrValidation)
	ErrInvalidEmail    = fmt.Errorf("%w: invalid email address", ErrValidation)
)

// Record is the domain model for a todo entry.
// ID is assigned once at creation and never changes; position in the
// collection is only a display concern.
type Record struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Category  Category `json:"category"`
	Completed bool     `json:"completed"`
}

// NewRecord builds a pending record with a fresh ID after validating it.
func NewRecord(content string, category Category) (Record, error) {
	r := Record{
		ID:       uuid.NewString(),
		Content:  strings.TrimSpace(content),
		Category: category,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the invariants every stored record must hold.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, r.Category)
	}
	return nil
}

// Collection is an ordered list of records in creation order.
type Collection []Record

// Clone returns a copy that shares no backing array with c.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// IndexOf returns the position of the record with id, or -1.
func (c Collection) IndexOf(id string) int {
	for i, r := range c {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Stats counts done and pending records.
func (c Collection) Stats() (done, pending int) {
	for _, r := range c {
		if r.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Profile is the one-time user record shown on the profile screen.
type Profile struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileUrl"`
}

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate requires a name and a plausible email address.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !emailRegexp.MatchString(strings.TrimSpace(p.Email)) {
		return ErrInvalidEmail
	}
	return nil
}
