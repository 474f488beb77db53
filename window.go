package tiff

import "fmt"

// An ImageWindow is a half-open pixel rectangle [MinX, MaxX) x [MinY, MaxY).
type ImageWindow struct {
	MinX, MinY int
	MaxX, MaxY int
}

// WindowAt returns the window of the single pixel (x, y).
func WindowAt(x, y int) ImageWindow {
	return ImageWindow{MinX: x, MinY: y, MaxX: x + 1, MaxY: y + 1}
}

// FullWindow returns the window covering a whole width x height image.
func FullWindow(width, height int) ImageWindow {
	return ImageWindow{MaxX: width, MaxY: height}
}

func (w ImageWindow) Width() int {
	return w.MaxX - w.MinX
}

func (w ImageWindow) Height() int {
	return w.MaxY - w.MinY
}

// validate checks that the window is ordered and lies inside the image.
func (w ImageWindow) validate(width, height int) error {
	if w.MinX < 0 || w.MinY < 0 || w.MinX > w.MaxX || w.MinY > w.MaxY || w.MaxX > width || w.MaxY > height {
		return RangeError(fmt.Sprintf("window %v outside of %dx%d image", w, width, height))
	}
	return nil
}

func (w ImageWindow) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", w.MinX, w.MinY, w.MaxX, w.MaxY)
}
