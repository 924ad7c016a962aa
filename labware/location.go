package labware

import "fmt"

// Reference is the part of a well a Location is measured from.
type Reference int

const (
	Bottom Reference = iota
	Top
	Center
)

func (r Reference) String() string {
	switch r {
	case Top:
		return "top"
	case Center:
		return "center"
	default:
		return "bottom"
	}
}

// ParseReference parses "top", "bottom" or "center".
func ParseReference(s string) (Reference, error) {
	switch s {
	case "top":
		return Top, nil
	case "bottom", "":
		return Bottom, nil
	case "center":
		return Center, nil
	}
	return Bottom, fmt.Errorf("unknown well reference %q", s)
}

// Location is a point in a well: a reference plus a vertical offset in mm.
// The zero Location has no well and stands for the fixed trash.
type Location struct {
	Well      *Well
	Reference Reference
	Offset    float64
}

// IsTrash reports whether the location is the fixed trash.
func (l Location) IsTrash() bool { return l.Well == nil }

// Height returns the distance above the well bottom in mm.
func (l Location) Height() float64 {
	if l.Well == nil {
		return 0
	}
	depth := l.Well.labware.def.WellDepth
	switch l.Reference {
	case Top:
		return depth + l.Offset
	case Center:
		return depth/2 + l.Offset
	default:
		return l.Offset
	}
}

func (l Location) String() string {
	if l.Well == nil {
		return "trash"
	}
	if l.Offset == 0 {
		return fmt.Sprintf("%s (%s)", l.Well, l.Reference)
	}
	return fmt.Sprintf("%s (%s %+.1fmm)", l.Well, l.Reference, l.Offset)
}
