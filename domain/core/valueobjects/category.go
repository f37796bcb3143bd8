package valueobjects

import (
	pkgerrors "retro-backend/pkg/errors"
)

// Category is the closed set of note categories on the board
type Category string

const (
	CategoryKeep    Category = "keep"
	CategoryImprove Category = "improve"
	CategoryIdeas   Category = "ideas"
	CategoryStop    Category = "stop"
)

// Categories lists every valid category
func Categories() []Category {
	return []Category{CategoryKeep, CategoryImprove, CategoryIdeas, CategoryStop}
}

// ParseCategory validates and returns a Category from its string form
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryKeep, CategoryImprove, CategoryIdeas, CategoryStop:
		return Category(s), nil
	}
	return "", pkgerrors.NewValidationError("category must be one of: keep, improve, ideas, stop")
}

// String returns the string form of the category
func (c Category) String() string {
	return string(c)
}
