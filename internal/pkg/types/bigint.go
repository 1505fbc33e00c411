package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// BigInt represents an arbitrary-precision integer amount (e.g., token values
// in base units) that routinely exceeds the native 64-bit range. It wraps
// math/big.Int and provides validation, JSON marshaling as a decimal string,
// and lossless comparison helpers.
//
// The zero value is usable and compares equal to zero.
type BigInt struct {
	value big.Int
}

// BigIntFromString parses a base-10 integer string into a BigInt.
// It returns an error if the string is not a valid decimal integer.
func BigIntFromString(s string) (BigInt, error) {
	var v big.Int
	if _, ok := v.SetString(s, 10); !ok {
		return BigInt{}, fmt.Errorf("invalid decimal integer: %q", s)
	}
	return BigInt{value: v}, nil
}

// BigIntFromInt64 converts a native int64 into a BigInt.
func BigIntFromInt64(n int64) BigInt {
	var v big.Int
	v.SetInt64(n)
	return BigInt{value: v}
}

// BigIntFromHex parses a "0x"-prefixed hexadecimal string into a BigInt.
// It is used when normalizing raw node responses, where amounts are hex encoded.
func BigIntFromHex(s string) (BigInt, error) {
	if len(s) < 3 || (s[:2] != "0x" && s[:2] != "0X") {
		return BigInt{}, fmt.Errorf("hex value must start with 0x: %q", s)
	}

	var v big.Int
	if _, ok := v.SetString(s[2:], 16); !ok {
		return BigInt{}, fmt.Errorf("invalid hexadecimal value: %q", s)
	}
	return BigInt{value: v}, nil
}

// Cmp compares b against other and returns -1, 0 or +1, exactly like
// big.Int.Cmp. Comparisons never go through floating point.
func (b BigInt) Cmp(other BigInt) int {
	return b.value.Cmp(&other.value)
}

// GreaterThan reports whether b is strictly greater than other.
func (b BigInt) GreaterThan(other BigInt) bool {
	return b.Cmp(other) > 0
}

// Float64 returns the closest float64 approximation of the value.
// It is intended for statistical aggregation only, never for threshold checks.
func (b BigInt) Float64() float64 {
	f, _ := new(big.Float).SetInt(&b.value).Float64()
	return f
}

// String returns the base-10 representation of the value.
func (b BigInt) String() string {
	return b.value.String()
}

// MarshalJSON encodes the BigInt as a JSON decimal string.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.value.String())
}

// UnmarshalJSON parses a JSON-encoded decimal string into the BigInt.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid big integer string: %w", err)
	}

	parsed, err := BigIntFromString(s)
	if err != nil {
		return err
	}

	*b = parsed
	return nil
}
