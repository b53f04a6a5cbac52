package imaging

import (
	"fmt"
	"image"
)

// BackgroundRemover crops a card photo down to the card itself
type BackgroundRemover struct {
	// Tolerance is the per-channel distance (0..255) from the background colour
	// above which a pixel counts as card
	Tolerance int
	// MinCoverage is the smallest share of the frame the detected card may cover;
	// below it the photo is assumed to be a tight scan and returned unchanged
	MinCoverage float64
}

// NewBackgroundRemover creates a BackgroundRemover with defaults tuned for phone photos
// of cards on a plain surface
func NewBackgroundRemover() *BackgroundRemover {
	return &BackgroundRemover{
		Tolerance:   40,
		MinCoverage: 0.2,
	}
}

// RemoveBackground estimates the background colour from the frame border, masks every pixel
// that differs from it, opens the mask with a 3x3 kernel to drop speckles and crops img to
// the bounding box of what remains
func (r *BackgroundRemover) RemoveBackground(img image.Image) (image.Image, error) {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return nil, fmt.Errorf("image too small for background removal: %v", b)
	}

	bg := borderColor(img)
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask[y*w+x] = colorDistance(img.At(b.Min.X+x, b.Min.Y+y), bg) > r.Tolerance
		}
	}
	mask = dilate(erode(mask, w, h), w, h)

	box, ok := boundingBox(mask, w, h)
	if !ok {
		return img, nil
	}
	if float64(box.Dx()*box.Dy()) < r.MinCoverage*float64(w*h) {
		return img, nil
	}
	box = box.Add(b.Min)

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image type %T does not support cropping", img)
	}
	return sub.SubImage(box), nil
}

type rgb struct{ r, g, b int }

// borderColor averages the outermost ring of pixels
func borderColor(img image.Image) rgb {
	b := img.Bounds()
	var sr, sg, sb, n int
	add := func(x, y int) {
		cr, cg, cb, _ := img.At(x, y).RGBA()
		sr += int(cr >> 8)
		sg += int(cg >> 8)
		sb += int(cb >> 8)
		n++
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Min.Y)
		add(x, b.Max.Y-1)
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		add(b.Min.X, y)
		add(b.Max.X-1, y)
	}
	return rgb{sr / n, sg / n, sb / n}
}

func colorDistance(c interface{ RGBA() (r, g, b, a uint32) }, bg rgb) int {
	cr, cg, cb, _ := c.RGBA()
	return max(absInt(int(cr>>8)-bg.r), absInt(int(cg>>8)-bg.g), absInt(int(cb>>8)-bg.b))
}

func erode(mask []bool, w, h int) []bool {
	return morph(mask, w, h, true)
}

func dilate(mask []bool, w, h int) []bool {
	return morph(mask, w, h, false)
}

// morph applies a 3x3 rectangular erosion (all) or dilation (any)
func morph(mask []bool, w, h int, all bool) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			result := all
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := mask[clampInt(y+dy, 0, h-1)*w+clampInt(x+dx, 0, w-1)]
					if all && !v {
						result = false
					}
					if !all && v {
						result = true
					}
				}
			}
			out[y*w+x] = result
		}
	}
	return out
}

func boundingBox(mask []bool, w, h int) (image.Rectangle, bool) {
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
