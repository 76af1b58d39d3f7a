package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownTransactionType signals that a transaction with a type outside
// income/expense reached the balance fold. This is a data-integrity
// violation from upstream, not a transient condition, and is never
// silently treated as a zero contribution.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Signed returns the transaction amount with its ledger sign applied:
// positive for income, negative for expense.
func (t Transaction) Signed() (decimal.Decimal, error) {
	switch t.Type {
	case TransactionIncome:
		return t.Amount, nil
	case TransactionExpense:
		return t.Amount.Neg(), nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %q (transaction %s)", ErrUnknownTransactionType, t.Type, t.ID)
}

// TotalBalance folds a transaction list into one signed total: income
// adds, expense subtracts. The fold is commutative, so the input order
// never changes the result. Accumulation stays in decimal; rounding is a
// formatting concern.
func TotalBalance(txns []Transaction) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range txns {
		signed, err := t.Signed()
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(signed)
	}
	return total, nil
}
