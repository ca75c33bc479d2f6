package align

import (
	"fmt"
	"strings"
)

// Mode selects which reference point of the bounding box is moved to the
// world origin along one axis.
type Mode int

const (
	ModeNone   Mode = iota // leave the axis alone
	ModeMin                // bounding box minimum lands on 0
	ModeMax                // bounding box maximum lands on 0
	ModeCenter             // bounding box center lands on 0
	ModeOrigin             // the object's own origin lands on 0
)

// ModeInfo describes a mode for selector widgets.
type ModeInfo struct {
	Mode        Mode   `json:"mode"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// AllModes lists every mode in display order.
var AllModes = []ModeInfo{
	{ModeNone, "None", "Do not align along this axis"},
	{ModeMin, "Min", "Align using the bounding box minimum"},
	{ModeMax, "Max", "Align using the bounding box maximum"},
	{ModeCenter, "Center", "Align using the bounding box center"},
	{ModeOrigin, "Origin", "Align using the object's origin"},
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeMin:
		return "min"
	case ModeMax:
		return "max"
	case ModeCenter:
		return "center"
	case ModeOrigin:
		return "origin"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a case-insensitive mode name into a Mode. "centre" is
// accepted as a spelling of center.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return ModeNone, nil
	case "min":
		return ModeMin, nil
	case "max":
		return ModeMax, nil
	case "center", "centre":
		return ModeCenter, nil
	case "origin":
		return ModeOrigin, nil
	}
	return ModeNone, fmt.Errorf("align: unknown mode %q (want none, min, max, center or origin)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < ModeNone || m > ModeOrigin {
		return nil, fmt.Errorf("align: cannot marshal %v", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Set implements pflag.Value so a Mode can be bound to a command-line flag.
func (m *Mode) Set(s string) error {
	return m.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (m *Mode) Type() string {
	return "mode"
}
