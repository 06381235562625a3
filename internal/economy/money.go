// Package economy holds the value types of the market: money, resources,
// storage, wallets, needs and orders.
package economy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/talgya/mini-market/internal/entropy"
)

// Money is a non-negative whole number of credits.
// Values are immutable; arithmetic is only defined between Money values
// and through Scale, so raw numbers never leak into balances.
type Money struct {
	creds int64
}

// Credits returns n credits. Negative amounts are a programming error.
func Credits(n int64) Money {
	if n < 0 {
		panic(fmt.Sprintf("economy: negative money %d", n))
	}
	return Money{creds: n}
}

// Creds returns the raw credit count (for reporting and persistence).
func (m Money) Creds() int64 { return m.creds }

// IsZero reports whether m holds no credits.
func (m Money) IsZero() bool { return m.creds == 0 }

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{creds: m.creds + o.creds}
}

// Sub returns m - o, or ErrNegativeBalance if o exceeds m.
func (m Money) Sub(o Money) (Money, error) {
	if o.creds > m.creds {
		return m, fmt.Errorf("%w: %s - %s", ErrNegativeBalance, m, o)
	}
	return Money{creds: m.creds - o.creds}, nil
}

// Remove takes o out of m. Unlike Scale there is no fractional path.
func (m Money) Remove(o Money) (Money, error) {
	return m.Sub(o)
}

// Scale multiplies m by a non-negative factor, truncating toward zero.
func (m Money) Scale(factor decimal.Decimal) Money {
	v := decimal.NewFromInt(m.creds).Mul(factor).Truncate(0).IntPart()
	return Credits(v)
}

// Split divides m into two parts that sum to m and differ by at most one
// credit. For odd amounts src decides which part gets the odd credit;
// a nil src always gives it to the first part.
func (m Money) Split(src entropy.Source) (Money, Money) {
	low := Money{creds: m.creds / 2}
	high := Money{creds: m.creds - low.creds}
	if high == low || src == nil || src.Intn(2) == 0 {
		return high, low
	}
	return low, high
}

// Cmp returns -1, 0 or 1 comparing m with o.
func (m Money) Cmp(o Money) int {
	switch {
	case m.creds < o.creds:
		return -1
	case m.creds > o.creds:
		return 1
	}
	return 0
}

// Less reports whether m < o.
func (m Money) Less(o Money) bool { return m.creds < o.creds }

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if a.Less(b) {
		return b
	}
	return a
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if b.Less(a) {
		return b
	}
	return a
}

func (m Money) String() string {
	return fmt.Sprintf("%dcr", m.creds)
}
