package core

import (
	"strings"
	"time"
)

// CategoryKind says which side of the ledger a category applies to. A
// category marked Both may be referenced by income and expense
// transactions alike.
const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
	CategoryBoth    CategoryKind = "both"
)

type (
	CategoryKind string

	// Icon names a glyph by family and name. The domain layer treats any
	// non-empty pair as valid; unknown families are resolved (or defaulted)
	// only at render time by the icons registry.
	Icon struct {
		Family string
		Name   string
	}

	// Category is a transaction bucket. Categories are global, not
	// owner-scoped; user-created ones carry UserDefined.
	Category struct {
		ID          string
		Name        string
		Icon        Icon
		Kind        CategoryKind
		UserDefined bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// CategoryInput is a candidate category before validation.
	CategoryInput struct {
		Name        string
		IconName    string
		IconFamily  string
		Kind        CategoryKind
		UserDefined bool
	}
)

// IsValid reports whether the kind is one of the known values.
func (k CategoryKind) IsValid() bool {
	switch k {
	case CategoryIncome, CategoryExpense, CategoryBoth:
		return true
	}
	return false
}

// Accepts reports whether a transaction of the given type may reference
// a category of this kind.
func (k CategoryKind) Accepts(t TransactionType) bool {
	switch k {
	case CategoryBoth:
		return true
	case CategoryIncome:
		return t == TransactionIncome
	case CategoryExpense:
		return t == TransactionExpense
	}
	return false
}

// Validate checks the candidate and returns the normalized record, or a
// ValidationErrors listing every failing field. The record's identifier
// and timestamps are assigned by the remote store on creation.
func (in CategoryInput) Validate() (Category, error) {
	var errs ValidationErrors

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs = append(errs, FieldError{"name", "Name is required"})
	}
	iconName := strings.TrimSpace(in.IconName)
	if iconName == "" {
		errs = append(errs, FieldError{"iconName", "Icon name cannot be empty"})
	}
	iconFamily := strings.TrimSpace(in.IconFamily)
	if iconFamily == "" {
		errs = append(errs, FieldError{"iconFamily", "Icon family cannot be empty"})
	}
	if !in.Kind.IsValid() {
		errs = append(errs, FieldError{"type", "Invalid category type"})
	}
	if err := errs.ErrOrNil(); err != nil {
		return Category{}, err
	}

	return Category{
		Name:        name,
		Icon:        Icon{Family: iconFamily, Name: iconName},
		Kind:        in.Kind,
		UserDefined: in.UserDefined,
	}, nil
}
