package core

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// InvalidDateLabel is returned by ElapsedLabel for start dates in the
// future. It is a display marker, not an error.
const InvalidDateLabel = "Invalid date"

var hundred = decimal.NewFromInt(100)

// ProgressPercent derives the display progress of a goal as a percentage
// clamped to [0, 100]. A non-positive target yields 0 rather than a
// division error; an over-funded goal reads as 100 while the underlying
// amounts stay untouched.
func (g Goal) ProgressPercent() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	pct, _ := g.CurrentAmount.Mul(hundred).Div(g.TargetAmount).Float64()
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ElapsedLabel renders the whole-day difference between now and start as
// a human label. The exact-multiple branches (7, 30, 365) take precedence
// over the floor-divided range branches only at those exact values; the
// resulting asymmetry near month and year boundaries is intentional,
// inherited behavior.
func ElapsedLabel(start, now time.Time) string {
	days := int(math.Floor(now.Sub(start).Hours() / 24))
	switch {
	case days < 0:
		return InvalidDateLabel
	case days == 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days == 7:
		return "a week ago"
	case days == 30:
		return "a month ago"
	case days == 365:
		return "a year ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
