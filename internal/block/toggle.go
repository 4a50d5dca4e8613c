// Package block provides the shared configuration model for course page blocks.
//
// Every display option of a block is governed on two levels. The site
// administrator assigns the option one of four states: two forced states that
// apply everywhere, and two optional states that hand the decision to the
// course teacher while supplying the default. Course level overrides live on
// the block instance and only take effect for options the administrator left
// optional.
package block

// Toggle is the site-wide state of a block display option.
type Toggle string

const (
	// ForcedOff disables the option on every course. Instance overrides are ignored.
	ForcedOff Toggle = "forced_off"

	// ForcedOn enables the option on every course. Instance overrides are ignored.
	ForcedOn Toggle = "forced_on"

	// OptionalOff lets each course decide, defaulting to off.
	OptionalOff Toggle = "optional_off"

	// OptionalOn lets each course decide, defaulting to on.
	OptionalOn Toggle = "optional_on"
)

// Toggles returns all valid states in form display order.
func Toggles() []Toggle {
	return []Toggle{ForcedOff, ForcedOn, OptionalOff, OptionalOn}
}

// ParseToggle converts the stored string form back into a Toggle.
func ParseToggle(s string) (Toggle, error) {
	switch t := Toggle(s); t {
	case ForcedOff, ForcedOn, OptionalOff, OptionalOn:
		return t, nil
	default:
		return "", ErrUnknownToggle
	}
}

// Valid reports whether t is one of the four defined states.
func (t Toggle) Valid() bool {
	_, err := ParseToggle(string(t))

	return err == nil
}

// Forced reports whether the administrator fixed the option for all courses.
func (t Toggle) Forced() bool {
	return t == ForcedOff || t == ForcedOn
}

// Resolve computes the effective value of the option for one block instance.
// The override is the instance setting: nil when the course never configured
// the option, otherwise the stored choice. Forced states win unconditionally,
// optional states fall back to their default when no override is present.
func (t Toggle) Resolve(override *bool) bool {
	switch t {
	case ForcedOff:
		return false
	case ForcedOn:
		return true
	}

	if override != nil {
		return *override
	}

	return t == OptionalOn
}
