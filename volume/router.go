// Package volume decides where wheel input goes and adjusts the OS output volume.
package volume

// Target is the volume a wheel step is applied to.
type Target int

const (
	// None means the step is dropped.
	None Target = iota
	// Player is the engine's own volume.
	Player
	// System is the OS output device volume.
	System
)

const (
	DefaultPlayerStep = 5
	DefaultSystemStep = 2
)

func (t Target) String() string {
	switch t {
	case Player:
		return "player"
	case System:
		return "system"
	default:
		return "none"
	}
}

// Rect is the on-screen area of the playback surface, in the pointer's coordinate space.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// WheelEvent is one wheel notch at a pointer location.
type WheelEvent struct {
	X, Y int
	Up   bool
}

// Decision is where a wheel notch goes and by how many percentage points.
type Decision struct {
	Target Target
	Delta  int
}

// Router maps wheel input to a volume target. It holds no state besides its configuration.
type Router struct {
	Surface    Rect
	PlayerStep int
	SystemStep int
}

// NewRouter returns a router with the given steps, falling back to the defaults for non-positive values.
func NewRouter(playerStep, systemStep int) Router {
	if playerStep <= 0 {
		playerStep = DefaultPlayerStep
	}
	if systemStep <= 0 {
		systemStep = DefaultSystemStep
	}
	return Router{PlayerStep: playerStep, SystemStep: systemStep}
}

// WithSurface returns a copy of r routing against surface.
func (r Router) WithSurface(surface Rect) Router {
	r.Surface = surface
	return r
}

// Route decides the target of ev. Over the surface the step goes to the player, or nowhere
// when no session is active; anywhere else it goes to the OS volume.
func (r Router) Route(ev WheelEvent, sessionActive bool) Decision {
	sign := -1
	if ev.Up {
		sign = 1
	}

	if r.Surface.Contains(ev.X, ev.Y) {
		if !sessionActive {
			return Decision{Target: None}
		}
		return Decision{Target: Player, Delta: sign * r.PlayerStep}
	}

	return Decision{Target: System, Delta: sign * r.SystemStep}
}
