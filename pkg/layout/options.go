package layout

import (
	"fmt"

	"github.com/lifetree/lifetree/pkg/errors"
)

// SideOrder decides the order in which side branches are walked.
type SideOrder int

const (
	// ReverseRegistration walks the most recently registered side branch first.
	ReverseRegistration SideOrder = iota
	// Registration walks side branches in the order the store returned them.
	Registration
)

// String returns the config spelling of the order.
func (o SideOrder) String() string {
	switch o {
	case ReverseRegistration:
		return "reverse"
	case Registration:
		return "registration"
	default:
		return fmt.Sprintf("SideOrder(%d)", int(o))
	}
}

// ParseSideOrder parses "reverse" or "registration". The empty string yields
// the default.
func ParseSideOrder(s string) (SideOrder, error) {
	switch s {
	case "", "reverse":
		return ReverseRegistration, nil
	case "registration":
		return Registration, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown side order %q (want reverse or registration)", s)
	}
}

// Header is the fixed title pseudo-node placed above the timeline.
type Header struct {
	ID    string
	Label string
	X, Y  float64
}

// Default geometry and labels.
const (
	DefaultTrunkX     = 250
	DefaultSideX      = 150
	DefaultRowHeight  = 100
	DefaultOffsetY    = 75
	DefaultHeaderID   = "title"
	DefaultHeaderText = "About you."
	DefaultHeaderX    = 25
	DefaultHeaderY    = 10
	DefaultDateFormat = "1/2/06"
)

// Options controls geometry and labelling. The zero value is completed by
// [Options.WithDefaults]; use [DefaultOptions] for a ready-made set.
type Options struct {
	TrunkX    float64 // x of trunk nodes
	SideX     float64 // x of side-branch nodes
	RowHeight float64 // vertical distance between rows
	OffsetY   float64 // y of row 0

	Header   Header
	NoHeader bool // omit the header pseudo-node

	// DateFormat is a time layout applied to a node's creation time.
	DateFormat string

	SideOrder SideOrder
}

// DefaultOptions returns the standard geometry.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults fills zero fields with defaults.
func (o Options) WithDefaults() Options {
	if o.TrunkX == 0 {
		o.TrunkX = DefaultTrunkX
	}
	if o.SideX == 0 {
		o.SideX = DefaultSideX
	}
	if o.RowHeight == 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.OffsetY == 0 {
		o.OffsetY = DefaultOffsetY
	}
	if o.Header.ID == "" {
		o.Header.ID = DefaultHeaderID
	}
	if o.Header.Label == "" {
		o.Header.Label = DefaultHeaderText
	}
	if o.Header.X == 0 && o.Header.Y == 0 {
		o.Header.X, o.Header.Y = DefaultHeaderX, DefaultHeaderY
	}
	if o.DateFormat == "" {
		o.DateFormat = DefaultDateFormat
	}
	return o
}

// Validate reports options that cannot produce a readable layout.
func (o Options) Validate() error {
	if o.RowHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "row height must be positive, got %v", o.RowHeight)
	}
	if o.TrunkX == o.SideX {
		return errors.New(errors.ErrCodeInvalidConfig, "trunk and side columns overlap at x=%v", o.TrunkX)
	}
	if o.SideOrder != ReverseRegistration && o.SideOrder != Registration {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown side order %d", int(o.SideOrder))
	}
	return nil
}
