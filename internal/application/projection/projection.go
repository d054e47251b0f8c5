package projection

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// StatusCompleted is the only investment status that earns growth in a projection.
const StatusCompleted = "completed"

// PeriodDays is the length of one growth period.
const PeriodDays = 30

const day = 24 * time.Hour

// ErrInvalidInput is returned when an amount or creation timestamp cannot be used.
var ErrInvalidInput = errors.New("invalid input")

var (
	one             = decimal.NewFromInt(1)
	growthPerPeriod = decimal.RequireFromString("0.05")
)

// FuturePolicy decides what happens when createdAt lies after now.
type FuturePolicy string

const (
	// FutureClamp treats negative elapsed periods as zero, so a projection never drops below the principal.
	FutureClamp FuturePolicy = "clamp"
	// FutureFloor keeps floor semantics for negative elapsed time, which can shrink the value.
	FutureFloor FuturePolicy = "floor"
)

// ParseFuturePolicy maps a config value to a policy. Empty means FutureClamp.
func ParseFuturePolicy(s string) (FuturePolicy, error) {
	switch FuturePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FutureClamp:
		return FutureClamp, nil
	case FutureFloor:
		return FutureFloor, nil
	}
	return "", fmt.Errorf("unknown projection future policy %q", s)
}

// Calculator computes display values for investment rows.
// The zero value uses time.Now and FutureClamp.
type Calculator struct {
	Now    func() time.Time
	Future FuturePolicy
}

// New returns a Calculator reading the wall clock.
func New(policy FuturePolicy) *Calculator {
	return &Calculator{Now: time.Now, Future: policy}
}

func (c *Calculator) clock() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Calculator) policy() FuturePolicy {
	if c == nil || c.Future == "" {
		return FutureClamp
	}
	return c.Future
}

// Project formats amount for display at the current clock instant.
func (c *Calculator) Project(amount decimal.Decimal, createdAt time.Time, status string) (string, error) {
	return c.ProjectAt(amount, createdAt, status, c.clock())
}

// ProjectAt returns amount with two decimals, grown by 5% for each whole
// 30-day period between createdAt and now when status is "completed".
// Growth is linear: amount * (1 + 0.05 * periods).
func (c *Calculator) ProjectAt(amount decimal.Decimal, createdAt time.Time, status string, now time.Time) (string, error) {
	if amount.IsNegative() {
		return "", fmt.Errorf("%w: amount %s is negative", ErrInvalidInput, amount.String())
	}
	if status != StatusCompleted {
		return Format(amount), nil
	}
	if createdAt.IsZero() {
		return "", fmt.Errorf("%w: created_at is missing", ErrInvalidInput)
	}
	periods := Periods(createdAt, now, c.policy())
	factor := one.Add(growthPerPeriod.Mul(decimal.NewFromInt(periods)))
	return Format(amount.Mul(factor)), nil
}

// ProjectText parses raw row values and projects them. createdAt is only
// parsed for completed rows.
func (c *Calculator) ProjectText(amount, createdAt, status string, now time.Time) (string, error) {
	d, err := ParseAmount(amount)
	if err != nil {
		return "", err
	}
	if status != StatusCompleted {
		return Format(d), nil
	}
	t, err := ParseCreatedAt(createdAt)
	if err != nil {
		return "", err
	}
	return c.ProjectAt(d, t, status, now)
}

// Periods counts whole 30-day windows between createdAt and now.
// Days and periods are floored, so a partially elapsed day or period does not count.
func Periods(createdAt, now time.Time, policy FuturePolicy) int64 {
	diffDays := floorDiv(int64(now.Sub(createdAt)), int64(day))
	periods := floorDiv(diffDays, PeriodDays)
	if periods < 0 && policy != FutureFloor {
		return 0
	}
	return periods
}

// Format renders a decimal with exactly two digits, rounding half away from zero.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Bounds on parsed decimals. Exponent notation is accepted, so the digit counts are
// checked before any rescale expands the coefficient.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 18
	maxDecimalText    = 64
)

// ParseDecimal reads a signed decimal within the money bounds above.
func ParseDecimal(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is empty", ErrInvalidInput)
	}
	if len(s) > maxDecimalText {
		return decimal.Zero, fmt.Errorf("%w: amount text is too long", ErrInvalidInput)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", ErrInvalidInput, text)
	}
	if d.NumDigits()+int(d.Exponent()) > MaxIntegerDigits {
		return decimal.Zero, fmt.Errorf("%w: amount %q is too large", ErrInvalidInput, text)
	}
	if int(d.Exponent()) < -MaxFractionDigits {
		return decimal.Zero, fmt.Errorf("%w: amount %q has too many decimal places", ErrInvalidInput, text)
	}
	return d, nil
}

// ParseAmount reads a non-negative decimal from display text.
func ParseAmount(text string) (decimal.Decimal, error) {
	d, err := ParseDecimal(text)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount %q is negative", ErrInvalidInput, text)
	}
	return d, nil
}

// ParseCreatedAt reads a creation timestamp. Values without a zone are taken as UTC,
// matching how investments are stored.
func ParseCreatedAt(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: created_at is empty", ErrInvalidInput)
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: created_at %q: %v", ErrInvalidInput, text, err)
	}
	return t, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
