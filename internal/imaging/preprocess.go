package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Range is a fractional span of an image axis, 0 being the top/left edge and 1 the bottom/right
type Range struct {
	From float64
	To   float64
}

// Valid reports whether the range lies within [0,1] and is not empty
func (r Range) Valid() bool {
	return r.From >= 0 && r.To <= 1 && r.From < r.To
}

// Region is a fractional rectangle on a card side
type Region struct {
	Y Range
	X Range
}

// Preprocessor crops card regions and binarizes them for OCR
type Preprocessor struct{}

// NewPreprocessor creates a new Preprocessor
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Crop selects the fractional region y x of img
func (p *Preprocessor) Crop(img image.Image, y, x Range) (image.Image, error) {
	if !y.Valid() || !x.Valid() {
		return nil, fmt.Errorf("invalid crop range y=%v x=%v", y, x)
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rect := image.Rect(
		b.Min.X+int(x.From*w),
		b.Min.Y+int(y.From*h),
		b.Min.X+int(x.To*w),
		b.Min.Y+int(y.To*h),
	).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("crop y=%v x=%v of %v is empty", y, x, b)
	}

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		xdraw.Copy(dst, image.Point{}, img, rect, xdraw.Src, nil)
		return dst, nil
	}
	return sub.SubImage(rect), nil
}

// Binarize converts img to grayscale, blurs it with a kernelSize gaussian, upscales it 2x
// and thresholds it. With otsu set the threshold is computed from the histogram instead.
func (p *Preprocessor) Binarize(img image.Image, kernelSize, threshold int, otsu bool) (image.Image, error) {
	if kernelSize <= 0 {
		return nil, fmt.Errorf("kernel size must be positive, got %d", kernelSize)
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold must be within 0..255, got %d", threshold)
	}

	gray := toGray(img)
	blurred := gaussianBlur(gray, kernelSize)

	b := blurred.Bounds()
	resized := image.NewGray(image.Rect(0, 0, b.Dx()*2, b.Dy()*2))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), blurred, b, xdraw.Src, nil)

	if otsu {
		threshold = otsuThreshold(resized)
	}
	for i, v := range resized.Pix {
		if int(v) > threshold {
			resized.Pix[i] = 255
		} else {
			resized.Pix[i] = 0
		}
	}
	return resized, nil
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return gray
}

// gaussianKernel mirrors OpenCV's default sigma for a given aperture
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianBlur applies a separable gaussian with replicated borders
func gaussianBlur(src *image.Gray, size int) *image.Gray {
	kernel := gaussianKernel(size)
	half := size / 2
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := make([]float64, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, weight := range kernel {
				sx := clampInt(x+k-half, 0, w-1)
				acc += weight * float64(src.Pix[y*src.Stride+sx])
			}
			tmp[y*w+x] = acc
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, weight := range kernel {
				sy := clampInt(y+k-half, 0, h-1)
				acc += weight * tmp[sy*w+x]
			}
			dst.Pix[y*dst.Stride+x] = uint8(math.Round(math.Min(255, math.Max(0, acc))))
		}
	}
	return dst
}

// otsuThreshold picks the threshold maximising between-class variance
func otsuThreshold(img *image.Gray) int {
	var hist [256]int
	for _, v := range img.Pix {
		hist[v]++
	}
	total := len(img.Pix)
	if total == 0 {
		return 0
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var sumBack float64
	var weightBack int
	best, bestVariance := 0, -1.0
	for t := 0; t < 256; t++ {
		weightBack += hist[t]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(t * hist[t])
		meanBack := sumBack / float64(weightBack)
		meanFore := (sumAll - sumBack) / float64(weightFore)
		variance := float64(weightBack) * float64(weightFore) * (meanBack - meanFore) * (meanBack - meanFore)
		if variance > bestVariance {
			bestVariance = variance
			best = t
		}
	}
	return best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
