// Package theme provides the light/dark mode bus shared by every shading
// program in a scene.
//
// A Bus is an explicit context object: create one per application and pass it
// to whatever needs colours. Everything runs on the frame thread, so the
// listener list is a plain slice without locking.
package theme

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/logger"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Mode is a display mode.
type Mode int

const (
	Light Mode = iota
	Dark
)

// String returns the config spelling of the mode.
func (m Mode) String() string {
	switch m {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// ParseMode parses "light" or "dark".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "light", "":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return Light, fmt.Errorf("unknown theme mode %q", s)
	}
}

// Palette is the colour set for one mode.
type Palette struct {
	Background  math.Vec3 // clear colour
	Base        math.Vec3 // lit surface colour
	Shadow      math.Vec3 // unlit surface colour
	Line        math.Vec3 // ink colour
	Placeholder math.Vec3 // surface colour before the colour wash
}

// Palettes pairs the light and dark palettes.
type Palettes struct {
	Light Palette
	Dark  Palette
}

// For returns the palette of mode m.
func (p Palettes) For(m Mode) Palette {
	if m == Dark {
		return p.Dark
	}
	return p.Light
}

// DefaultPalettes returns the stock paper/ink colours.
func DefaultPalettes() Palettes {
	return Palettes{
		Light: Palette{
			Background:  math.Vec3{X: 0.99, Y: 0.98, Z: 0.96},
			Base:        math.Vec3{X: 0.96, Y: 0.94, Z: 0.90},
			Shadow:      math.Vec3{X: 0.74, Y: 0.71, Z: 0.68},
			Line:        math.Vec3{X: 0.10, Y: 0.10, Z: 0.12},
			Placeholder: math.Vec3{X: 0.98, Y: 0.97, Z: 0.95},
		},
		Dark: Palette{
			Background:  math.Vec3{X: 0.06, Y: 0.06, Z: 0.07},
			Base:        math.Vec3{X: 0.22, Y: 0.22, Z: 0.25},
			Shadow:      math.Vec3{X: 0.11, Y: 0.11, Z: 0.13},
			Line:        math.Vec3{X: 0.92, Y: 0.91, Z: 0.88},
			Placeholder: math.Vec3{X: 0.08, Y: 0.08, Z: 0.09},
		},
	}
}

type listener struct {
	id uint64
	fn func(Mode)
}

// Bus broadcasts mode changes to subscribed listeners.
type Bus struct {
	mode      Mode
	palettes  Palettes
	listeners []listener
	nextID    uint64
}

// New creates a bus starting in the given mode.
func New(initial Mode, palettes Palettes) *Bus {
	return &Bus{mode: initial, palettes: palettes}
}

// Mode returns the current mode.
func (b *Bus) Mode() Mode {
	return b.mode
}

// Palette returns the palette of the current mode.
func (b *Bus) Palette() Palette {
	return b.palettes.For(b.mode)
}

// Palettes returns both palettes.
func (b *Bus) Palettes() Palettes {
	return b.palettes
}

// SetMode switches to m and notifies listeners in subscription order.
// Setting the current mode again notifies nobody.
func (b *Bus) SetMode(m Mode) {
	if m == b.mode {
		return
	}
	b.mode = m
	logger.Info("theme changed", zap.Stringer("mode", m), zap.Int("listeners", len(b.listeners)))

	// Snapshot so listeners can unsubscribe (or subscribe) while being notified.
	snapshot := make([]listener, len(b.listeners))
	copy(snapshot, b.listeners)
	for _, l := range snapshot {
		if b.subscribed(l.id) {
			l.fn(m)
		}
	}
}

// Toggle flips between light and dark.
func (b *Bus) Toggle() {
	b.SetMode(b.mode.Opposite())
}

// Subscribe registers fn for mode changes. The returned function removes the
// subscription; calling it more than once is a no-op.
func (b *Bus) Subscribe(fn func(Mode)) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener{id: id, fn: fn})

	return func() {
		for i, l := range b.listeners {
			if l.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of live subscriptions.
func (b *Bus) Listeners() int {
	return len(b.listeners)
}

func (b *Bus) subscribed(id uint64) bool {
	for _, l := range b.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}
