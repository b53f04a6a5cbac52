package card

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/zombor/card-reader/internal/extraction"
	"github.com/zombor/card-reader/internal/imaging"
)

// ErrMissingSide is returned when a card type needs a side that was not supplied
var ErrMissingSide = errors.New("missing card side")

type side int

const (
	front side = iota
	back
)

func (s side) String() string {
	if s == back {
		return "back"
	}
	return "front"
}

// step reads one field of a card side into a draft D
type step[D any] struct {
	side  side
	field string
	run   func(ctx context.Context, c *extraction.Controller, img image.Image, draft *D) error
}

// bind ties a field recipe to the draft slot that receives its result
func bind[D any, T extraction.Result](s side, cfg extraction.FieldConfig[T], assign func(*D, T)) step[D] {
	return step[D]{
		side:  s,
		field: cfg.Name,
		run: func(ctx context.Context, c *extraction.Controller, img image.Image, draft *D) error {
			value, err := extraction.Extract(ctx, c, img, cfg)
			if err != nil {
				return err
			}
			assign(draft, value)
			return nil
		},
	}
}

type fieldConfig = extraction.FieldConfig[extraction.Field]

func region(yFrom, yTo, xFrom, xTo float64) imaging.Region {
	return imaging.Region{
		Y: imaging.Range{From: yFrom, To: yTo},
		X: imaging.Range{From: xFrom, To: xTo},
	}
}

// sweep binarizes from threshold upwards by step while below ceiling
func sweep(kernelSize, threshold, step, ceiling int) *extraction.Preprocessing {
	return &extraction.Preprocessing{KernelSize: kernelSize, Threshold: threshold, Step: step, Ceiling: ceiling}
}

// fixed binarizes once at threshold
func fixed(kernelSize, threshold int) *extraction.Preprocessing {
	return &extraction.Preprocessing{KernelSize: kernelSize, Threshold: threshold}
}

// ValidationObserver is told about every cross-source validation error
type ValidationObserver interface {
	ObserveValidationError(field string)
}

// Assembler reads whole cards by running the field recipes of each card type
type Assembler struct {
	controller *extraction.Controller
	observer   ValidationObserver
	now        func() time.Time
	logger     *slog.Logger
}

// NewAssembler creates a new Assembler using the wall clock
func NewAssembler(controller *extraction.Controller) *Assembler {
	return NewAssemblerWithDeps(controller, nil, time.Now, nil)
}

// NewAssemblerWithDeps creates a new Assembler with custom dependencies for testing
func NewAssemblerWithDeps(controller *extraction.Controller, observer ValidationObserver, now func() time.Time, logger *slog.Logger) *Assembler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		controller: controller,
		observer:   observer,
		now:        now,
		logger:     logger,
	}
}

// ReadIDCard reads both sides of an ID card and cross-validates the redundant readings
func (a *Assembler) ReadIDCard(ctx context.Context, frontImg, backImg image.Image) (*IDCard, error) {
	draft := &IDCardDraft{}
	if err := run(ctx, a, idCardSteps(a.now), frontImg, backImg, draft); err != nil {
		return nil, fmt.Errorf("reading id card: %w", err)
	}

	for _, e := range Validate(draft) {
		a.logger.Info("id card validation error", "field", e.Field, "message", e.Message)
		if a.observer != nil {
			a.observer.ObserveValidationError(e.Field)
		}
	}
	return draft.Record(), nil
}

// ReadHealthCard reads the front of a health insurance card
func (a *Assembler) ReadHealthCard(ctx context.Context, frontImg image.Image) (*HealthCard, error) {
	draft := &HealthCardDraft{}
	if err := run(ctx, a, healthCardSteps(), frontImg, nil, draft); err != nil {
		return nil, fmt.Errorf("reading health card: %w", err)
	}
	return draft.Record(), nil
}

// ReadStudentCard reads both sides of a student card
func (a *Assembler) ReadStudentCard(ctx context.Context, frontImg, backImg image.Image) (*StudentCard, error) {
	draft := &StudentCardDraft{}
	if err := run(ctx, a, studentCardSteps(), frontImg, backImg, draft); err != nil {
		return nil, fmt.Errorf("reading student card: %w", err)
	}
	return draft.Record(), nil
}

// run executes all front steps before any back step, each side in declaration order
func run[D any](ctx context.Context, a *Assembler, steps []step[D], frontImg, backImg image.Image, draft *D) error {
	for _, s := range []side{front, back} {
		img := frontImg
		if s == back {
			img = backImg
		}
		for _, st := range steps {
			if st.side != s {
				continue
			}
			if img == nil {
				return fmt.Errorf("%s needs the %s side: %w", st.field, s, ErrMissingSide)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := st.run(ctx, a.controller, img, draft); err != nil {
				return err
			}
		}
	}
	return nil
}
