package permissions

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Set is an immutable permission bit field. The zero value is the empty set.
type Set uint64

// New builds a Set from any mix of supported inputs: Set, Flag, a registered
// flag name, an unsigned or signed integer bit field, or slices of those.
// Raw integers must stay inside the registered flag space; a stray bit fails
// with ErrInvalidFlag. Anything else fails with ErrInvalidPermissionInput.
func New(inputs ...any) (Set, error) {
	var s Set

	for _, input := range inputs {
		part, err := resolve(input)
		if err != nil {
			return 0, err
		}

		s |= part
	}

	return s, nil
}

// resolve converts one input value to a Set.
func resolve(input any) (Set, error) {
	switch v := input.(type) {
	case Set:
		return v, nil
	case Flag:
		if !v.Registered() {
			return 0, errors.Wrapf(ErrInvalidFlag, "%#x", uint64(v))
		}

		return Set(v), nil
	case string:
		flag, err := Lookup(v)
		if err != nil {
			return 0, err
		}

		return Set(flag), nil
	case uint64:
		return fromRaw(v)
	case int64:
		if v < 0 {
			return 0, errors.Wrapf(ErrInvalidFlag, "%d", v)
		}

		return fromRaw(uint64(v))
	case int:
		if v < 0 {
			return 0, errors.Wrapf(ErrInvalidFlag, "%d", v)
		}

		return fromRaw(uint64(v))
	case uint:
		return fromRaw(uint64(v))
	case []Flag:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}

		return New(items...)
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}

		return New(items...)
	case []uint64:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}

		return New(items...)
	case []int64:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}

		return New(items...)
	case []int:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}

		return New(items...)
	case []uint:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}

		return New(items...)
	case []any:
		return New(v...)
	default:
		return 0, errors.Wrapf(ErrInvalidPermissionInput, "%T", input)
	}
}

// fromRaw validates that a raw bit field only uses registered bits.
func fromRaw(raw uint64) (Set, error) {
	if unknown := Set(raw) &^ All; unknown != 0 {
		return 0, errors.Wrapf(ErrInvalidFlag, "unregistered bits %#x", uint64(unknown))
	}

	return Set(raw), nil
}

// Sanitize masks a raw bit field down to the registered flag space. It is
// the lenient counterpart of New for values loaded from storage or from
// upstream payloads that may carry bits this build does not know about.
func Sanitize(raw uint64) Set {
	return Set(raw) & All
}

// Has reports whether every given flag is present. A set containing
// ADMINISTRATOR always satisfies Has regardless of the other bits; use
// HasStrict to test the literal bits.
func (s Set) Has(flags ...Flag) bool {
	if s&Set(FlagAdministrator) != 0 {
		return true
	}

	return s.HasStrict(flags...)
}

// HasStrict reports whether every given flag's bit is literally set, with no
// administrator override.
func (s Set) HasStrict(flags ...Flag) bool {
	for _, f := range flags {
		if s&Set(f) != Set(f) {
			return false
		}
	}

	return true
}

// Add returns a new Set with the given inputs' bits set. Inputs resolve the
// same way as in New.
func (s Set) Add(inputs ...any) (Set, error) {
	part, err := New(inputs...)
	if err != nil {
		return 0, err
	}

	return s | part, nil
}

// Remove returns a new Set with the given inputs' bits cleared.
func (s Set) Remove(inputs ...any) (Set, error) {
	part, err := New(inputs...)
	if err != nil {
		return 0, err
	}

	return s &^ part, nil
}

// Serialize returns a map with exactly one entry per registered flag, true
// iff the flag's bit is set. Iterate flags via Flags() for stable order.
func (s Set) Serialize() map[string]bool {
	out := make(map[string]bool, len(flagOrder))
	for _, f := range flagOrder {
		out[f.Name()] = s.HasStrict(f)
	}

	return out
}

// Names returns the names of every set flag in registry order. The slice is
// recomputed on each call.
func (s Set) Names() []string {
	var names []string

	for _, f := range flagOrder {
		if s.HasStrict(f) {
			names = append(names, f.Name())
		}
	}

	return names
}

// Raw returns the underlying bit field.
func (s Set) Raw() uint64 {
	return uint64(s)
}

// String renders the set as pipe-joined flag names, or "NONE" when empty.
func (s Set) String() string {
	if s == 0 {
		return "NONE"
	}

	names := s.Names()
	if len(names) == 0 {
		return fmt.Sprintf("UNKNOWN(%#x)", uint64(s))
	}

	return strings.Join(names, " | ")
}
