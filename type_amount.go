package payments

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits kept on every amount, on input and on output.
const Precision = 4

// newDecimal is a convenient factory for decimal.Decimal. Binary floating point is
// deliberately not accepted.
func newDecimal[T int | int32 | int64 | uint | uint16 | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint16:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Amount is an exact base-10 monetary value rounded to Precision fractional digits.
// Rounding is half to even: 0.00005 is 0 and 0.00015 is 0.0002.
//
// The zero value is a valid zero amount.
type Amount struct {
	value decimal.Decimal
}

// A returns the Amount for value, rounded to Precision.
func A[T int | int32 | int64 | uint | uint16 | uint32 | uint64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value).RoundBank(Precision)}
}

// ParseAmount parses a decimal string like "1.5" or "0.00011" and rounds it to Precision.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{value: d.RoundBank(Precision)}, nil
}

// MustParseAmount is like ParseAmount but panics on error. Meant for tests and constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount       { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount               { return Amount{value: a.value.Neg()} }
func (a Amount) Equal(b Amount) bool       { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool    { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }
func (a Amount) IsZero() bool              { return a.value.IsZero() }
func (a Amount) IsNegative() bool          { return a.value.IsNegative() }
func (a Amount) IsPositive() bool          { return a.value.IsPositive() }

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// String formats the amount with at most Precision fractional digits, trailing zeros stripped.
func (a Amount) String() string {
	return a.value.RoundBank(Precision).String()
}

// MarshalJSON encodes the amount as a JSON string to keep it exact for any consumer.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both quoted and bare JSON numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	a.value = d.RoundBank(Precision)
	return nil
}
