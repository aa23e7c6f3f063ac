package model

import (
	"fmt"
	"strings"
)

// Category is the closed set of task classifications.
// The zero value is Work; declaration order is the canonical display order.
type Category uint8

const (
	Work Category = iota
	Private
	Other
)

// Categories lists every category in canonical order.
var Categories = []Category{Work, Private, Other}

var categoryNames = [...]string{"work", "private", "other"}

// Chart colors, indexed by canonical position.
var categoryColors = [...]string{"#E53629", "#2CD23E", "#4149C3"}

// ParseCategory accepts the text form of a category, ignoring case and
// surrounding space.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Valid reports whether c is one of Work, Private, Other.
func (c Category) Valid() bool { return int(c) < len(categoryNames) }

// Index is the category's position in the canonical order.
func (c Category) Index() int { return int(c) }

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryNames[c]
}

// Color is the fixed hex color for c, or "" if c is not valid.
func (c Category) Color() string {
	if !c.Valid() {
		return ""
	}
	return categoryColors[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Set, String and Type make *Category usable as a pflag.Value.
func (c *Category) Set(s string) error { return c.UnmarshalText([]byte(s)) }

func (c *Category) Type() string { return "category" }
