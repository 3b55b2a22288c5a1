package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"
)

// displayExponent is the exponent used for two-fraction-digit display.
const displayExponent = -2

// arith is the shared arithmetic context.
// 34 digits is decimal128 precision, far beyond any cart total.
var arith = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundHalfEven
	return c
}()

// Amount is an exact, immutable decimal quantity of money.
// The zero value is 0.
type Amount struct {
	d apd.Decimal
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// Parse converts a decimal string such as "999.99" into an Amount.
// NaN and infinities are rejected.
func Parse(s string) (Amount, error) {
	var a Amount
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("parse amount: empty string")
	}
	if _, _, err := a.d.SetString(s); err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if a.d.Form != apd.Finite {
		return Amount{}, fmt.Errorf("parse amount %q: not a finite number", s)
	}
	return a, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromInt returns the amount n.
func FromInt(n int64) Amount {
	var a Amount
	a.d.SetInt64(n)
	return a
}

// Add returns a+b.
func (a Amount) Add(b Amount) Amount {
	var out Amount
	if _, err := arith.Add(&out.d, &a.d, &b.d); err != nil {
		// Only reachable on exponent overflow of finite inputs.
		panic(fmt.Sprintf("money: add %s + %s: %v", a, b, err))
	}
	return out
}

// MulInt returns a*n.
func (a Amount) MulInt(n int64) Amount {
	var factor, out Amount
	factor.d.SetInt64(n)
	if _, err := arith.Mul(&out.d, &a.d, &factor.d); err != nil {
		panic(fmt.Sprintf("money: mul %s * %d: %v", a, n, err))
	}
	return out
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(&b.d)
}

// Equal reports whether a and b are numerically equal ("20" equals "20.00").
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool {
	return a.d.Sign() < 0
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// String returns the exact decimal representation without exponent notation.
func (a Amount) String() string {
	return a.d.Text('f')
}

// Fixed returns the amount rounded half-even to two fraction digits, e.g. "25.00".
func (a Amount) Fixed() string {
	var out apd.Decimal
	if _, err := arith.Quantize(&out, &a.d, displayExponent); err != nil {
		return a.String()
	}
	return out.Text('f')
}

// Sum returns the sum of all amounts. The sum of nothing is zero.
func Sum(amounts ...Amount) Amount {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes the amount as a JSON string so no precision is lost.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a JSON string ("9.99") or a JSON number (9.99).
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// UnmarshalYAML reads the scalar text directly so prices like 999.99 never
// pass through a float.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = parsed
	return nil
}

// MarshalYAML encodes the amount as its exact decimal text.
func (a Amount) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}
