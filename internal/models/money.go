package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative monetary magnitude with two decimal places.
// The sign of a bank amount is carried by the trans column, never by Amount.
type Amount struct {
	dec decimal.Decimal
}

// NewAmount returns the magnitude of d rounded to cents.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{dec: d.Abs().Round(2)}
}

// ParseAmount parses a bank amount such as "-45.00", "$1,234.50" or "12".
func ParseAmount(s string) (Amount, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount '%s': %w", s, err)
	}
	return NewAmount(d), nil
}

// MustParseAmount is ParseAmount for literals known to be valid. It panics otherwise.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.dec
}

// IsZero returns true if the amount is zero
func (a Amount) IsZero() bool {
	return a.dec.IsZero()
}

// Equal compares two amounts by value.
func (a Amount) Equal(other Amount) bool {
	return a.dec.Equal(other.dec)
}

// String renders the amount with exactly two decimals, e.g. "45.00".
func (a Amount) String() string {
	return a.dec.StringFixed(2)
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (a Amount) MarshalCSV() (string, error) {
	return a.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (a *Amount) UnmarshalCSV(s string) error {
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner. SQLite returns REAL columns as float64 and
// Postgres returns NUMERIC as text.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case float64:
		*a = NewAmount(decimal.NewFromFloat(v))
		return nil
	case int64:
		*a = NewAmount(decimal.NewFromInt(v))
		return nil
	case string:
		return a.UnmarshalCSV(v)
	case []byte:
		return a.UnmarshalCSV(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}
