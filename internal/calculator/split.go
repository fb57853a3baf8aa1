package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// Rounding selects how an equal split handles cents that do not divide evenly.
type Rounding string

const (
	// RoundLargestRemainder truncates every share to the cent and hands the
	// leftover cents out one at a time in participant order. Shares always
	// sum to the amount.
	RoundLargestRemainder Rounding = "largest_remainder"

	// RoundHalfUp rounds each share independently, half up. The shares may
	// sum to a few cents more or less than the amount.
	RoundHalfUp Rounding = "half_up"
)

// ParseRounding converts a config value to a Rounding.
func ParseRounding(s string) (Rounding, error) {
	switch r := Rounding(s); r {
	case RoundLargestRemainder, RoundHalfUp:
		return r, nil
	case "":
		return RoundLargestRemainder, nil
	default:
		return "", fmt.Errorf("unknown rounding mode %q", s)
	}
}

// Share is one participant's portion of an amount.
type Share struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// Money rounds an amount to cents, half up.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// EqualSplit divides amount across participants.
//
// With RoundHalfUp every share is round(amount / N, 2, HALF_UP):
// 100.00 across 3 gives 33.33 each, 200.00 across 3 gives 66.67 each.
// With RoundLargestRemainder 100.00 across 3 gives 33.34, 33.33, 33.33.
func EqualSplit(amount decimal.Decimal, participants []string, rounding Rounding) ([]Share, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", models.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", models.ErrValidation, amount)
	}
	if err := checkDuplicates(participants); err != nil {
		return nil, err
	}

	amount = Money(amount)
	n := int64(len(participants))
	shares := make([]Share, len(participants))

	switch rounding {
	case RoundHalfUp:
		share := amount.DivRound(decimal.NewFromInt(n), 2)
		for i, p := range participants {
			shares[i] = Share{ParticipantID: p, Amount: share}
		}
	case RoundLargestRemainder, "":
		cents := amount.Shift(2).IntPart()
		base, leftover := cents/n, cents%n
		for i, p := range participants {
			c := base
			if int64(i) < leftover {
				c++
			}
			shares[i] = Share{ParticipantID: p, Amount: decimal.New(c, -2)}
		}
	default:
		return nil, fmt.Errorf("unknown rounding mode %q", rounding)
	}

	return shares, nil
}

// CustomSplit validates caller-supplied shares.
// When strict is set the shares must add up to amount exactly.
func CustomSplit(amount decimal.Decimal, shares []Share, strict bool) ([]Share, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: must have at least one share", models.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", models.ErrValidation, amount)
	}

	ids := make([]string, len(shares))
	out := make([]Share, len(shares))
	sum := decimal.Zero
	for i, s := range shares {
		if s.ParticipantID == "" {
			return nil, fmt.Errorf("%w: share %d has no participant", models.ErrValidation, i)
		}
		if s.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: share for %s is negative", models.ErrValidation, s.ParticipantID)
		}
		ids[i] = s.ParticipantID
		out[i] = Share{ParticipantID: s.ParticipantID, Amount: Money(s.Amount)}
		sum = sum.Add(out[i].Amount)
	}
	if err := checkDuplicates(ids); err != nil {
		return nil, err
	}

	if strict && !sum.Equal(Money(amount)) {
		return nil, fmt.Errorf("%w: shares sum to %s, expected %s",
			models.ErrValidation, sum.StringFixed(2), Money(amount).StringFixed(2))
	}

	return out, nil
}

func checkDuplicates(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: participant %s listed twice", models.ErrValidation, id)
		}
		seen[id] = true
	}
	return nil
}
