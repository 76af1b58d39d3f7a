package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Goal statuses. Status is an opaque field set only by explicit action;
// nothing in this package derives achieved/overdue from the amounts.
const (
	GoalInProgress GoalStatus = "inProgress"
	GoalAchieved   GoalStatus = "achieved"
	GoalCancelled  GoalStatus = "cancelled"
	GoalOverdue    GoalStatus = "overdue"
)

// Goal name length bounds.
const (
	MinGoalNameLen = 3
	MaxGoalNameLen = 100
)

// MinColorLen is the shortest accepted color string (e.g. "#FFF").
const MinColorLen = 4

type (
	GoalStatus string

	// Goal is a savings target. CurrentAmount may exceed TargetAmount;
	// over-funded goals are valid data and only the displayed progress
	// percentage is clamped.
	Goal struct {
		ID            string
		OwnerID       string
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		StartDate     time.Time
		Status        GoalStatus
		Icon          Icon
		Color         string
		Description   string
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// GoalInput is a candidate goal as submitted by a form.
	GoalInput struct {
		OwnerID       string
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		StartDate     string
		Status        GoalStatus
		IconName      string
		IconFamily    string
		Color         string
		Description   string
	}
)

// IsValid reports whether the status is one of the four known values.
func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalInProgress, GoalAchieved, GoalCancelled, GoalOverdue:
		return true
	}
	return false
}

// Validate checks the candidate and returns the normalized record, or a
// ValidationErrors listing every failing field.
func (in GoalInput) Validate() (Goal, error) {
	var errs ValidationErrors

	if strings.TrimSpace(in.OwnerID) == "" {
		errs = append(errs, FieldError{"userId", "User ID cannot be empty"})
	}
	name := strings.TrimSpace(in.Name)
	switch {
	case len(name) < MinGoalNameLen:
		errs = append(errs, FieldError{"name", "Name must be at least 3 characters long"})
	case len(name) > MaxGoalNameLen:
		errs = append(errs, FieldError{"name", "Name is too long"})
	}
	if !in.TargetAmount.IsPositive() {
		errs = append(errs, FieldError{"targetAmount", "Target amount must be a positive number"})
	}
	if in.CurrentAmount.IsNegative() {
		errs = append(errs, FieldError{"currentAmount", "Current amount cannot be negative"})
	}
	startDate, err := ParseDate(in.StartDate)
	if err != nil {
		errs = append(errs, FieldError{"startDate", "Invalid start date format"})
	}
	if !in.Status.IsValid() {
		errs = append(errs, FieldError{"status", "Invalid goal status"})
	}
	iconName := strings.TrimSpace(in.IconName)
	if iconName == "" {
		errs = append(errs, FieldError{"iconName", "Icon name cannot be empty"})
	}
	iconFamily := strings.TrimSpace(in.IconFamily)
	if iconFamily == "" {
		errs = append(errs, FieldError{"iconFamily", "Icon family cannot be empty"})
	}
	if len(strings.TrimSpace(in.Color)) < MinColorLen {
		errs = append(errs, FieldError{"color", "Color must be at least 4 characters (e.g., #FFF)"})
	}
	if err := errs.ErrOrNil(); err != nil {
		return Goal{}, err
	}

	return Goal{
		OwnerID:       strings.TrimSpace(in.OwnerID),
		Name:          name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		StartDate:     startDate,
		Status:        in.Status,
		Icon:          Icon{Family: iconFamily, Name: iconName},
		Color:         strings.TrimSpace(in.Color),
		Description:   strings.TrimSpace(in.Description),
	}, nil
}
