package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. Any other value reaching the balance fold is a
// data-integrity violation, not a no-op.
const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// MaxDescriptionLen bounds the free-text description of a transaction.
const MaxDescriptionLen = 255

type (
	TransactionType string

	// Transaction is a single income or expense entry. Amount is a
	// strictly positive magnitude; the sign is carried by Type.
	// CategoryID references a Category by identifier and is resolved to
	// the full record only for display.
	Transaction struct {
		ID          string
		OwnerID     string
		Amount      decimal.Decimal
		Type        TransactionType
		CategoryID  string
		Date        time.Time
		Description string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// TransactionInput is a candidate transaction as submitted by a form.
	// Date is an ISO 8601 string; Amount has already been through the
	// money parser.
	TransactionInput struct {
		OwnerID     string
		Amount      decimal.Decimal
		Type        TransactionType
		CategoryID  string
		Date        string
		Description string
	}
)

// IsValid reports whether the type is income or expense.
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Validate checks the candidate and returns the normalized record, or a
// ValidationErrors listing every failing field.
func (in TransactionInput) Validate() (Transaction, error) {
	var errs ValidationErrors

	if strings.TrimSpace(in.OwnerID) == "" {
		errs = append(errs, FieldError{"userId", "User ID is required"})
	}
	if !in.Amount.IsPositive() {
		errs = append(errs, FieldError{"amount", "Amount must be greater than 0"})
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		errs = append(errs, FieldError{"description", "Description is required"})
	} else if len(desc) > MaxDescriptionLen {
		errs = append(errs, FieldError{"description", "Description too long"})
	}
	if !in.Type.IsValid() {
		errs = append(errs, FieldError{"type", "Invalid transaction type"})
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		errs = append(errs, FieldError{"categoryId", "Category is required"})
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		errs = append(errs, FieldError{"date", "Invalid date format"})
	}
	if err := errs.ErrOrNil(); err != nil {
		return Transaction{}, err
	}

	return Transaction{
		OwnerID:     strings.TrimSpace(in.OwnerID),
		Amount:      in.Amount,
		Type:        in.Type,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Date:        date,
		Description: desc,
	}, nil
}
