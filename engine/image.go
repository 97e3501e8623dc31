package engine

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/quickdeck/quickdeck/filesystem"
	"github.com/quickdeck/quickdeck/log"
	"github.com/samber/lo"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MinZoom  = 10
	MaxZoom  = 400
	ZoomStep = 10
	PanStep  = 40
)

// ImageView is the zoom and pan state of a shown image. Pan is measured in scaled pixels
// from the centered position.
type ImageView struct {
	Width, Height                 int
	ViewportWidth, ViewportHeight int
	Zoom                          int
	PanX, PanY                    int
	Fitted                        bool
}

// newImageView reads the image dimensions and fits it into the viewport. Formats that cannot
// be decoded are shown at actual size with unknown dimensions.
func newImageView(path string, viewportWidth, viewportHeight int) ImageView {
	view := ImageView{ViewportWidth: viewportWidth, ViewportHeight: viewportHeight, Zoom: 100}

	file, err := filesystem.API().Open(path)
	if err != nil {
		log.Warnf("open image %s: %v", path, err)
		return view
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		log.Debugf("image dimensions of %s unknown: %v", path, err)
		return view
	}
	log.Debugf("image %s: %s %dx%d", path, format, config.Width, config.Height)

	view.Width, view.Height = config.Width, config.Height
	return view.fit()
}

// ScaledSize returns the displayed size at the current zoom.
func (v ImageView) ScaledSize() (int, int) {
	return v.Width * v.Zoom / 100, v.Height * v.Zoom / 100
}

func (v ImageView) fit() ImageView {
	v.PanX, v.PanY = 0, 0
	v.Fitted = true
	if v.Width <= 0 || v.Height <= 0 {
		v.Zoom = 100
		return v
	}
	scale := min(float64(v.ViewportWidth)/float64(v.Width), float64(v.ViewportHeight)/float64(v.Height))
	v.Zoom = lo.Clamp(int(scale*100), MinZoom, MaxZoom)
	return v
}

func (v ImageView) withZoom(zoom int) ImageView {
	v.Zoom = lo.Clamp(zoom, MinZoom, MaxZoom)
	v.Fitted = false
	return v.clampPan()
}

func (v ImageView) withPan(dx, dy int) ImageView {
	v.PanX += dx
	v.PanY += dy
	return v.clampPan()
}

// clampPan keeps the image covering the viewport wherever it overflows it.
func (v ImageView) clampPan() ImageView {
	w, h := v.ScaledSize()
	maxX := max(0, (w-v.ViewportWidth)/2)
	maxY := max(0, (h-v.ViewportHeight)/2)
	v.PanX = lo.Clamp(v.PanX, -maxX, maxX)
	v.PanY = lo.Clamp(v.PanY, -maxY, maxY)
	return v
}

// Image returns the view of the shown image.
func (c *Controller) Image() (ImageView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Viewing {
		return ImageView{}, ErrNotViewing
	}
	return c.image, nil
}

// Zoom changes the zoom by delta percentage points.
func (c *Controller) Zoom(delta int) error {
	return c.updateImage(func(v ImageView) ImageView { return v.withZoom(v.Zoom + delta) })
}

// SetZoom sets the zoom in percent, clamped to [MinZoom, MaxZoom].
func (c *Controller) SetZoom(percent int) error {
	return c.updateImage(func(v ImageView) ImageView { return v.withZoom(percent) })
}

// Pan moves the image by (dx, dy) scaled pixels.
func (c *Controller) Pan(dx, dy int) error {
	return c.updateImage(func(v ImageView) ImageView { return v.withPan(dx, dy) })
}

// FitImage scales the image to fit the viewport.
func (c *Controller) FitImage() error {
	return c.updateImage(ImageView.fit)
}

// ActualSize shows the image at 100%.
func (c *Controller) ActualSize() error {
	return c.updateImage(func(v ImageView) ImageView {
		v.PanX, v.PanY = 0, 0
		return v.withZoom(100)
	})
}

// SetViewport changes the size images are fitted into. A fitted image is refitted.
func (c *Controller) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.ViewportWidth, c.opts.ViewportHeight = width, height
	if c.state != Viewing {
		return
	}
	c.image.ViewportWidth, c.image.ViewportHeight = width, height
	if c.image.Fitted {
		c.image = c.image.fit()
	} else {
		c.image = c.image.clampPan()
	}
}

func (c *Controller) updateImage(update func(ImageView) ImageView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state != Viewing {
		return ErrNotViewing
	}
	c.image = update(c.image)
	return nil
}
