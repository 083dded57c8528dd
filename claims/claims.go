// Package claims holds the attribute set asserted by an identity provider
// after a verified login.
//
// Attribute names are provider-defined and configured by the administrator,
// never hard-coded: one provider puts the login name in "preferred_username",
// another in "sub". Lookups therefore fail loudly when a configured attribute
// is absent from the payload, so a provider/config mismatch is visible at the
// first login attempt instead of silently resolving to an empty string.
package claims

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ErrAttributeMissing is wrapped by Set.Get when a requested attribute is
// absent or empty.
var ErrAttributeMissing = fmt.Errorf("claims: attribute missing")

// Set maps provider attribute names to scalar claim values.
type Set map[string]string

// Get returns the value of the named attribute. It fails when the attribute
// is not present or empty; use errors.Is(err, ErrAttributeMissing) to test.
func (s Set) Get(name string) (string, error) {
	v, ok := s[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %q", ErrAttributeMissing, name)
	}
	return v, nil
}

// Lookup returns the value of the named attribute and whether it is present
// and non-empty.
func (s Set) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok && v != ""
}

// FromMap flattens a decoded ID-token claim map to a Set. Scalar values are
// converted to their string form; nested objects and arrays are skipped,
// since no configured lookup attribute can address them.
func FromMap(raw map[string]any) Set {
	s := make(Set, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			s[k] = val
		case bool:
			s[k] = strconv.FormatBool(val)
		case float64:
			s[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case json.Number:
			s[k] = val.String()
		}
	}
	return s
}
