package extraction

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/zombor/card-reader/internal/imaging"
	"github.com/zombor/card-reader/internal/ocr"
)

// Preprocessor crops and binarizes card regions
type Preprocessor interface {
	// Crop selects a fractional region of img
	Crop(img image.Image, y, x imaging.Range) (image.Image, error)
	// Binarize thresholds img after blurring it with a kernelSize gaussian
	Binarize(img image.Image, kernelSize, threshold int, otsu bool) (image.Image, error)
}

// Observer is told how every field extraction went
type Observer interface {
	ObserveField(field string, attempts int, known bool)
}

// Preprocessing describes how a region is binarized before OCR.
// With Step > 0 the threshold is swept from Threshold upwards while it stays below Ceiling;
// with Step == 0 the region is binarized once at Threshold.
type Preprocessing struct {
	KernelSize int
	Threshold  int
	Step       int
	Ceiling    int
	Otsu       bool
}

// FieldConfig is the fixed recipe for reading one field off a card side
type FieldConfig[T Result] struct {
	Name      string
	Region    imaging.Region
	Allowlist ocr.Allowlist
	// Preprocessing is nil when the raw crop is read
	Preprocessing *Preprocessing
	// Normalize must return the zero value of T when nothing usable was read
	Normalize func(detections []ocr.Detection) T
}

// Controller runs field extractions against one OCR engine and preprocessor.
// It keeps no state between extractions; the engine it wraps is not safe for concurrent use.
type Controller struct {
	engine       ocr.Engine
	preprocessor Preprocessor
	observer     Observer
	logger       *slog.Logger
}

// NewController creates a new Controller with the default logger and no observer
func NewController(engine ocr.Engine, preprocessor Preprocessor) *Controller {
	return NewControllerWithDeps(engine, preprocessor, nil, nil)
}

// NewControllerWithDeps creates a new Controller with a custom observer and logger
func NewControllerWithDeps(engine ocr.Engine, preprocessor Preprocessor, observer Observer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		engine:       engine,
		preprocessor: preprocessor,
		observer:     observer,
		logger:       logger,
	}
}

// Extract reads one field from a card side.
//
// Sweeping fields are re-binarized at increasing thresholds until the normalizer yields a
// known result or the ceiling is reached; exhaustion returns the unknown (zero) value without
// an error. Preprocessing and OCR errors abort the extraction and are never retried.
func Extract[T Result](ctx context.Context, c *Controller, side image.Image, cfg FieldConfig[T]) (T, error) {
	var unknown T

	region, err := c.preprocessor.Crop(side, cfg.Region.Y, cfg.Region.X)
	if err != nil {
		return unknown, fmt.Errorf("cropping %s: %w", cfg.Name, err)
	}

	p := cfg.Preprocessing
	if p == nil || p.Step <= 0 {
		img := region
		threshold := 0
		if p != nil {
			threshold = p.Threshold
			if img, err = c.preprocessor.Binarize(region, p.KernelSize, p.Threshold, p.Otsu); err != nil {
				return unknown, fmt.Errorf("binarizing %s: %w", cfg.Name, err)
			}
		}
		value, err := read(ctx, c, img, cfg, threshold)
		if err != nil {
			return unknown, err
		}
		c.observe(cfg.Name, 1, value.Known())
		return value, nil
	}

	attempts := 0
	for threshold := p.Threshold; threshold < p.Ceiling; threshold += p.Step {
		attempts++
		img, err := c.preprocessor.Binarize(region, p.KernelSize, threshold, p.Otsu)
		if err != nil {
			return unknown, fmt.Errorf("binarizing %s at threshold %d: %w", cfg.Name, threshold, err)
		}
		value, err := read(ctx, c, img, cfg, threshold)
		if err != nil {
			return unknown, err
		}
		if value.Known() {
			c.observe(cfg.Name, attempts, true)
			return value, nil
		}
	}

	c.logger.Debug("threshold sweep exhausted", "field", cfg.Name, "attempts", attempts, "ceiling", p.Ceiling)
	c.observe(cfg.Name, attempts, false)
	return unknown, nil
}

func read[T Result](ctx context.Context, c *Controller, img image.Image, cfg FieldConfig[T], threshold int) (T, error) {
	detections, err := c.engine.Read(ctx, img, cfg.Allowlist)
	if err != nil {
		var unknown T
		return unknown, fmt.Errorf("recognizing %s: %w", cfg.Name, err)
	}
	value := cfg.Normalize(detections)
	c.logger.Debug("field read",
		"field", cfg.Name,
		"threshold", threshold,
		"detections", len(detections),
		"known", value.Known(),
	)
	return value, nil
}

func (c *Controller) observe(field string, attempts int, known bool) {
	if c.observer != nil {
		c.observer.ObserveField(field, attempts, known)
	}
}
