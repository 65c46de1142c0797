package rod

// Viewport bounds, inclusive.
const (
	MinViewportWidth  = 1280
	MaxViewportWidth  = 1600
	MinViewportHeight = 800
	MaxViewportHeight = 950
)

// Viewport is a window size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// RandomViewport picks a desktop viewport within the bounds above.
// intn returns a pseudo-random number in [0, n).
func RandomViewport(intn func(n int) int) Viewport {
	return Viewport{
		Width:  MinViewportWidth + intn(MaxViewportWidth-MinViewportWidth+1),
		Height: MinViewportHeight + intn(MaxViewportHeight-MinViewportHeight+1),
	}
}
