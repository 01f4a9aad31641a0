package raster

import (
	"fmt"
	"strings"
	"sync"

	"softraster/internal/mathutil"
)

// CullMode selects which winding is rejected before filling a triangle.
//
// Winding is measured on screen (y grows downward): a triangle whose
// vertices run counter-clockwise as displayed has positive signed area and
// is front-facing.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

func (c CullMode) String() string {
	switch c {
	case CullNone:
		return "none"
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	}
	return fmt.Sprintf("CullMode(%d)", int(c))
}

// ParseCullMode accepts "none", "back" or "front" (case-insensitive).
func ParseCullMode(s string) (CullMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CullNone, nil
	case "back":
		return CullBack, nil
	case "front":
		return CullFront, nil
	}
	return CullNone, fmt.Errorf("%w: cull mode %q", ErrInvalidArgument, s)
}

// rejects reports whether a triangle with the given signed area is culled.
func (c CullMode) rejects(area float64) bool {
	switch c {
	case CullBack:
		return area < 0
	case CullFront:
		return area > 0
	}
	return false
}

// Mode carries the global rendering flags read once per primitive.
type Mode struct {
	Cull        CullMode
	DepthTest   bool
	Derivatives bool
}

// Target owns color and depth storage and the per-pixel locks.
//
// Depth, SetDepthUnsafe and SetPixelUnsafe are only valid while the caller
// holds the lock returned by LockPixel for the same coordinate.
type Target interface {
	Size() (width, height int)
	Mode() Mode
	Depth(x, y int) float64
	SetDepthUnsafe(x, y int, z float64)
	SetPixelUnsafe(x, y int, c mathutil.Vec4)

	// LockPixel acquires the lock of pixel (x, y) and returns it held.
	// The caller releases it with Unlock, normally through defer.
	LockPixel(x, y int) sync.Locker
}
