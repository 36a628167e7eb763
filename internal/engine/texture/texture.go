// Package texture prepares RGBA images for upload and samples them on the CPU
// for the reference shading path.
package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	gomath "math"
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"

	"github.com/Faultbox/inkreveal/internal/engine/geometry"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Texture is an RGBA8 image ready for upload.
type Texture struct {
	Image *image.RGBA

	gpu geometry.Releaser
}

// FromImage converts img to RGBA. If either side exceeds maxSize the image is
// scaled down to fit, keeping its aspect ratio. maxSize <= 0 disables scaling.
func FromImage(img image.Image, maxSize int) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		scale := float64(maxSize) / float64(max(w, h))
		w = max(1, int(gomath.Round(float64(w)*scale)))
		h = max(1, int(gomath.Round(float64(h)*scale)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return &Texture{Image: dst}
}

// Decode reads a PNG, JPEG or BMP image.
func Decode(r io.Reader, maxSize int) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	return FromImage(img, maxSize), nil
}

// Load decodes the image file at path.
func Load(path string, maxSize int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()
	return Decode(f, maxSize)
}

// Checker builds a size x size checkerboard of cells x cells squares.
func Checker(size, cells int, a, b color.RGBA) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(1, size/cells)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return &Texture{Image: img}
}

// Width returns the image width in pixels.
func (t *Texture) Width() int { return t.Image.Bounds().Dx() }

// Height returns the image height in pixels.
func (t *Texture) Height() int { return t.Image.Bounds().Dy() }

// Sample returns the nearest texel's colour in [0,1] with repeat wrapping.
// v = 0 is the first row of the image.
func (t *Texture) Sample(u, v float32) math.Vec3 {
	w, h := t.Width(), t.Height()
	x := wrap(u, w)
	y := wrap(v, h)
	c := t.Image.RGBAAt(x, y)
	return math.Vec3{X: float32(c.R) / 255, Y: float32(c.G) / 255, Z: float32(c.B) / 255}
}

func wrap(coord float32, n int) int {
	f := coord - float32(gomath.Floor(float64(coord)))
	i := int(f * float32(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// GPU returns the renderer's resource for this texture, if uploaded.
func (t *Texture) GPU() geometry.Releaser { return t.gpu }

// Attach records the renderer's resource for this texture.
func (t *Texture) Attach(r geometry.Releaser) { t.gpu = r }

// Dispose frees the GPU resource. Calling it again is a no-op.
func (t *Texture) Dispose() error {
	res := t.gpu
	t.gpu = nil
	if res == nil {
		return nil
	}
	return res.Release()
}
