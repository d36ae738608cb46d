// Package recipeid implements the recipe identifier used across the cookbook.
//
// Catalog recipes carry integer ids, user-authored recipes carry string tokens
// (custom-<millis>-<random>). Ids arrive from JSON, URL paths and persisted
// blobs in either shape, so every comparison goes through Equal or Key.
package recipeid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is a tagged union of an integer id and a string token.
type ID struct {
	num   int64
	str   string
	isNum bool
}

// FromInt returns a numeric id.
func FromInt(n int64) ID {
	return ID{num: n, isNum: true}
}

// FromString returns a string id as given, without numeric coercion.
func FromString(s string) ID {
	return ID{str: s}
}

// Parse converts an untyped token (URL path segment, query value) into an ID.
// Canonical decimal integers become numeric ids, everything else stays a string.
func Parse(s string) ID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return FromInt(n)
	}
	return FromString(s)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return !id.isNum && id.str == ""
}

// IsNumeric reports whether the id was built from an integer.
func (id ID) IsNumeric() bool {
	return id.isNum
}

// String returns the raw string form of the id.
func (id ID) String() string {
	if id.isNum {
		return strconv.FormatInt(id.num, 10)
	}
	return id.str
}

// Key returns a canonical string such that Key(a) == Key(b) iff Equal(a, b).
// It is used for map keys and persisted object keys.
func (id ID) Key() string {
	if f, ok := number(id.String()); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return id.String()
}

// Equal reports whether two ids refer to the same recipe: their string forms
// are identical, or both parse as numbers with the same value.
func Equal(a, b ID) bool {
	as, bs := a.String(), b.String()
	if as == bs {
		return true
	}
	af, aok := number(as)
	bf, bok := number(bs)
	return aok && bok && af == bf
}

// Equal is a method form of the package-level Equal.
func (id ID) Equal(other ID) bool {
	return Equal(id, other)
}

// Contains reports whether ids holds an id equal to target.
func Contains(ids []ID, target ID) bool {
	return Index(ids, target) >= 0
}

// Index returns the position of the first id equal to target, or -1.
func Index(ids []ID, target ID) int {
	for i, id := range ids {
		if Equal(id, target) {
			return i
		}
	}
	return -1
}

// Without returns ids with every occurrence of target removed and whether
// anything was removed. The input slice is not modified.
func Without(ids []ID, target ID) ([]ID, bool) {
	out := make([]ID, 0, len(ids))
	removed := false
	for _, id := range ids {
		if Equal(id, target) {
			removed = true
			continue
		}
		out = append(out, id)
	}
	return out, removed
}

func number(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// MarshalJSON writes numeric ids as JSON numbers and tokens as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.isNum {
		return []byte(strconv.FormatInt(id.num, 10)), nil
	}
	return json.Marshal(id.str)
}

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("recipe id: %w", err)
		}
		*id = FromString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("recipe id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = FromInt(i)
		return nil
	}
	// non-integral numbers keep their literal form
	*id = FromString(n.String())
	return nil
}
