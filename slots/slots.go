// Package slots holds the geometry behind the photo frame editor: rectangular
// photo regions placed over a frame image, expressed in percent of the frame
// so they scale with whatever size the card is rendered at.
package slots

import (
	"errors"
	"math"

	"github.com/google/uuid"
)

// MinSize is the smallest width or height a slot may have, in percent.
const MinSize = 5.0

// Handle names one of the eight resize handles around a slot.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// ErrUnknownHandle is returned by Resize for a handle outside the eight supported ones.
var ErrUnknownHandle = errors.New("unknown resize handle")

// ErrSlotNotFound is returned by list operations when no slot has the given ID.
var ErrSlotNotFound = errors.New("photo slot not found")

// Slot is a photo placeholder over a frame image
type Slot struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	ZIndex   int     `json:"zIndex"`
}

// Right is the x coordinate of the right edge
func (s Slot) Right() float64 { return s.X + s.Width }

// Bottom is the y coordinate of the bottom edge
func (s Slot) Bottom() float64 { return s.Y + s.Height }

// Center returns the centre point of the slot
func (s Slot) Center() (float64, float64) {
	return s.X + s.Width/2, s.Y + s.Height/2
}

// Normalize clamps a slot into the frame: size within [MinSize,100], position
// so that the rectangle never leaves [0,100], rotation within [0,360).
func Normalize(s Slot) Slot {
	s.Width = clamp(s.Width, MinSize, 100)
	s.Height = clamp(s.Height, MinSize, 100)
	s.X = clamp(s.X, 0, 100-s.Width)
	s.Y = clamp(s.Y, 0, 100-s.Height)
	s.Rotation = wrapDegrees(s.Rotation)
	return s
}

// Move drags a slot by (dx, dy) percent. The slot stops at the frame edges.
func Move(s Slot, dx, dy float64) Slot {
	s = Normalize(s)
	s.X = clamp(s.X+dx, 0, 100-s.Width)
	s.Y = clamp(s.Y+dy, 0, 100-s.Height)
	return s
}

// Resize drags one of the eight handles by (dx, dy) percent. The edges not
// attached to the handle stay where they are.
func Resize(s Slot, h Handle, dx, dy float64) (Slot, error) {
	var north, south, east, west bool
	switch h {
	case HandleN:
		north = true
	case HandleS:
		south = true
	case HandleE:
		east = true
	case HandleW:
		west = true
	case HandleNE:
		north, east = true, true
	case HandleNW:
		north, west = true, true
	case HandleSE:
		south, east = true, true
	case HandleSW:
		south, west = true, true
	default:
		return s, ErrUnknownHandle
	}

	s = Normalize(s)
	if east {
		s.Width = clamp(s.Width+dx, MinSize, 100-s.X)
	}
	if west {
		right := s.Right()
		s.X = clamp(s.X+dx, 0, right-MinSize)
		s.Width = right - s.X
	}
	if south {
		s.Height = clamp(s.Height+dy, MinSize, 100-s.Y)
	}
	if north {
		bottom := s.Bottom()
		s.Y = clamp(s.Y+dy, 0, bottom-MinSize)
		s.Height = bottom - s.Y
	}
	return s, nil
}

// Rotate points the slot's rotation handle at (px, py), given in frame percent.
// A pointer straight above the centre gives 0 degrees.
func Rotate(s Slot, px, py float64) Slot {
	cx, cy := s.Center()
	angle := math.Atan2(py-cy, px-cx) * 180 / math.Pi
	s.Rotation = wrapDegrees(math.Round((angle+90)*100) / 100)
	return s
}

// NormalizeAll normalises every slot and assigns IDs to slots that lack one.
func NormalizeAll(list []Slot) []Slot {
	out := make([]Slot, len(list))
	for i, s := range list {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		out[i] = Normalize(s)
	}
	return out
}

// Add appends a default slot on top of the others and returns the new list.
func Add(list []Slot) ([]Slot, Slot) {
	s := Slot{
		ID:     uuid.NewString(),
		X:      10,
		Y:      10,
		Width:  30,
		Height: 30,
		ZIndex: maxZ(list) + 1,
	}
	out := append(clone(list), s)
	return out, s
}

// Update applies fn to the slot with the given ID, normalises the result and
// returns the full updated list.
func Update(list []Slot, id string, fn func(Slot) (Slot, error)) ([]Slot, error) {
	out := clone(list)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		updated, err := fn(out[i])
		if err != nil {
			return nil, err
		}
		updated.ID = id
		out[i] = Normalize(updated)
		return out, nil
	}
	return nil, ErrSlotNotFound
}

// Remove drops the slot with the given ID.
func Remove(list []Slot, id string) ([]Slot, error) {
	out := make([]Slot, 0, len(list))
	found := false
	for _, s := range list {
		if s.ID == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		return nil, ErrSlotNotFound
	}
	return out, nil
}

// BringToFront gives the slot the highest z-index in the list.
func BringToFront(list []Slot, id string) ([]Slot, error) {
	top := maxZ(list)
	return Update(list, id, func(s Slot) (Slot, error) {
		if s.ZIndex < top {
			s.ZIndex = top + 1
		}
		return s, nil
	})
}

func maxZ(list []Slot) int {
	z := 0
	for _, s := range list {
		if s.ZIndex > z {
			z = s.ZIndex
		}
	}
	return z
}

func clone(list []Slot) []Slot {
	out := make([]Slot, len(list))
	copy(out, list)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func wrapDegrees(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	// tiny negatives round up to exactly 360
	if d >= 360 {
		d = 0
	}
	return d
}
