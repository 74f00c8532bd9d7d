package readingtype

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldVector holds one numeric value per positional field. The zero value
// is a valid vector with every field at 0 ("not applicable").
//
// Field values are canonically integers: the standard's dictionary keys are
// enumerations. Decimal tokens are accepted on parse and truncated toward
// zero, matching the documented coercion rule.
type FieldVector [FieldCount]int

// FormatError reports a malformed ReadingTypeID string. It is always
// surfaced to the caller, never silently corrected.
type FormatError struct {
	ID     string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid ReadingTypeID %q: %s", e.ID, e.Reason)
}

// Get returns the value at a field's position by CIM name.
func (v FieldVector) Get(name string) (int, bool) {
	f, ok := FieldByName(name)
	if !ok {
		return 0, false
	}
	return v[f.Position], true
}

// MustGet returns the value for a field by CIM name, or 0 when the name is
// unknown. For call sites with literal field names where the ok check is
// noise.
func (v FieldVector) MustGet(name string) int {
	value, _ := v.Get(name)
	return value
}

// Set assigns the value for a field by CIM name. Unknown names are ignored
// and reported via the boolean.
func (v *FieldVector) Set(name string, value int) bool {
	f, ok := FieldByName(name)
	if !ok {
		return false
	}
	v[f.Position] = value
	return true
}

// Build serializes the vector to the canonical dash-joined identifier.
func Build(v FieldVector) string {
	tokens := make([]string, FieldCount)
	for i, value := range v {
		tokens[i] = strconv.Itoa(value)
	}
	return strings.Join(tokens, Separator)
}

// Parse decodes an identifier string into a field vector. It fails with a
// *FormatError when the token count is not 16 or any token is not numeric.
// Decimal tokens such as "12.5" are accepted and truncated toward zero.
func Parse(id string) (FieldVector, error) {
	var v FieldVector

	tokens := strings.Split(id, Separator)
	if len(tokens) != FieldCount {
		return v, &FormatError{
			ID:     id,
			Reason: fmt.Sprintf("expected %d fields, got %d", FieldCount, len(tokens)),
		}
	}

	for i, token := range tokens {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return v, &FormatError{
				ID:     id,
				Reason: fmt.Sprintf("field %d value %q is not numeric", i+1, token),
			}
		}
		v[i] = int(f)
	}

	return v, nil
}

// Validate reports whether id splits into exactly 16 numeric tokens. It is
// the non-throwing counterpart of Parse for interactive validation paths.
func Validate(id string) bool {
	if id == "" {
		return false
	}
	tokens := strings.Split(id, Separator)
	if len(tokens) != FieldCount {
		return false
	}
	for _, token := range tokens {
		if _, err := strconv.ParseFloat(token, 64); err != nil {
			return false
		}
	}
	return true
}
