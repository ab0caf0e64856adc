// Package camera implements the view transform between layout coordinates
// and the screen.
//
// Layout coordinates have y pointing up; screen coordinates have the origin
// in the top-left corner with y pointing down. A screen unit is one point at
// scale 1. The camera never touches the graph or the layout.
package camera

import (
	"math"

	"github.com/matzehuels/infragraph/pkg/render/layout"
)

const (
	// ZoomBase is the zoom factor of one scroll step.
	ZoomBase = 1.2

	// FitMargin is the fraction of the view left empty around the drawing
	// after Fit.
	FitMargin = 0.3

	MinScale = 0.05
	MaxScale = 20.0

	DefaultWidth  = 800
	DefaultHeight = 600
)

// Camera maps layout point (x, y) to screen point
// (x*Scale + OffsetX, OffsetY - y*Scale).
type Camera struct {
	Scale            float64
	OffsetX, OffsetY float64
	Width, Height    float64 // View size in screen units
}

// New returns a camera for a view of the given size with the layout origin
// in the middle.
func New(width, height float64) Camera {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return Camera{Scale: 1, OffsetX: width / 2, OffsetY: height / 2, Width: width, Height: height}
}

// ToScreen converts a layout point to screen coordinates.
func (c Camera) ToScreen(p layout.Point) (x, y float64) {
	return p.X*c.Scale + c.OffsetX, c.OffsetY - p.Y*c.Scale
}

// ToWorld converts screen coordinates to a layout point.
func (c Camera) ToWorld(x, y float64) layout.Point {
	return layout.Point{X: (x - c.OffsetX) / c.Scale, Y: (c.OffsetY - y) / c.Scale}
}

// Visible returns the layout rectangle shown by the camera.
func (c Camera) Visible() layout.Rect {
	tl := c.ToWorld(0, 0)
	br := c.ToWorld(c.Width, c.Height)
	return layout.Rect{MinX: tl.X, MinY: br.Y, MaxX: br.X, MaxY: tl.Y}
}

// ZoomAt scales the view by factor, keeping the layout point under screen
// position (x, y) fixed. The resulting scale is clamped to
// [MinScale, MaxScale].
func (c *Camera) ZoomAt(factor, x, y float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	anchor := c.ToWorld(x, y)
	c.Scale = clamp(c.Scale*factor, MinScale, MaxScale)
	c.OffsetX = x - anchor.X*c.Scale
	c.OffsetY = y + anchor.Y*c.Scale
}

// Zoom scales the view by factor about its center.
func (c *Camera) Zoom(factor float64) {
	c.ZoomAt(factor, c.Width/2, c.Height/2)
}

// Scroll zooms by ZoomBase per step about (x, y); negative steps zoom out.
func (c *Camera) Scroll(steps int, x, y float64) {
	c.ZoomAt(math.Pow(ZoomBase, float64(steps)), x, y)
}

// Pan moves the view by (dx, dy) screen units.
func (c *Camera) Pan(dx, dy float64) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// Fit scales and centers the view so that bounds fills it, leaving
// FitMargin of the view empty.
func (c *Camera) Fit(bounds layout.Rect) {
	w, h := bounds.Width(), bounds.Height()
	if w <= 0 || h <= 0 {
		c.Center(bounds.Center())
		return
	}
	usable := 1 - FitMargin
	c.Scale = clamp(math.Min(c.Width*usable/w, c.Height*usable/h), MinScale, MaxScale)
	c.Center(bounds.Center())
}

// Center moves the view so that p is in the middle, keeping the scale.
func (c *Camera) Center(p layout.Point) {
	c.OffsetX = c.Width/2 - p.X*c.Scale
	c.OffsetY = c.Height/2 + p.Y*c.Scale
}

// Resize changes the view size, keeping the layout point at the center of
// the view where it is.
func (c *Camera) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	center := c.ToWorld(c.Width/2, c.Height/2)
	c.Width, c.Height = width, height
	c.Center(center)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
