package scene

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// objectNamespace seeds content-addressed object IDs.
var objectNamespace = uuid.MustParse("6f1c2a4e-3b7d-5e89-a0c1-d2e3f4a5b6c7")

// ObjectID is a content-addressed identifier for scene objects.
type ObjectID string

// ZeroID is the empty ObjectID, used for "no parent" and "no selection".
const ZeroID ObjectID = ""

// NewObjectID derives a stable ID from a creation path such as "mesh/cube".
// The same path always yields the same ID.
func NewObjectID(path string) ObjectID {
	return ObjectID(uuid.NewSHA1(objectNamespace, []byte(path)).String())
}

// IsZero reports whether the ID is unset.
func (id ObjectID) IsZero() bool {
	return id == ZeroID
}

// Short returns the first eight characters of the ID for messages.
func (id ObjectID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

func (id ObjectID) String() string {
	return string(id)
}

// Kind is the geometry representation of an object.
type Kind int

const (
	KindMesh Kind = iota
	KindEmpty
	KindLight
	KindCamera
	KindCurve
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindEmpty:
		return "empty"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	case KindCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// ParseKind converts a case-insensitive kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mesh":
		return KindMesh, nil
	case "empty":
		return KindEmpty, nil
	case "light", "lamp":
		return KindLight, nil
	case "camera":
		return KindCamera, nil
	case "curve":
		return KindCurve, nil
	}
	return 0, fmt.Errorf("scene: unknown object kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Axis names one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists X, Y, Z in index order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}
