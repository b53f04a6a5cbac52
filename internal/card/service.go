package card

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/card-reader/internal/imaging"
)

// ErrUnknownSide is returned when a stored image is requested for a side the read lacks
var ErrUnknownSide = errors.New("unknown card side")

// IDGenerator generates unique IDs for card reads
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Reader reads the fields of decoded, background-free card images
type Reader interface {
	ReadIDCard(ctx context.Context, front, back image.Image) (*IDCard, error)
	ReadHealthCard(ctx context.Context, front image.Image) (*HealthCard, error)
	ReadStudentCard(ctx context.Context, front, back image.Image) (*StudentCard, error)
}

// BackgroundRemover isolates the card from the surface it was photographed on
type BackgroundRemover interface {
	RemoveBackground(img image.Image) (image.Image, error)
}

// Upload is one uploaded photo or scan of a card side
type Upload struct {
	Filename    string
	Data        []byte
	ContentType string
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles card read operations
type Service struct {
	db          DB
	reader      Reader
	remover     BackgroundRemover
	storage     ImageStorage
	metrics     *Metrics
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, reader Reader, remover BackgroundRemover, storage ImageStorage, metrics *Metrics) *Service {
	return NewServiceWithDeps(db, reader, remover, storage, metrics, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, reader Reader, remover BackgroundRemover, storage ImageStorage, metrics *Metrics, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		reader:      reader,
		remover:     remover,
		storage:     storage,
		metrics:     metrics,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ProcessIDCard reads both sides of an ID card and saves the read
func (s *Service) ProcessIDCard(ctx context.Context, front, back Upload) (*Read, error) {
	return s.process(ctx, KindID, []Upload{front, back}, func(read *Read, sides []image.Image) error {
		card, err := s.reader.ReadIDCard(ctx, sides[0], sides[1])
		read.IDCard = card
		return err
	})
}

// ProcessHealthCard reads the front of a health insurance card and saves the read
func (s *Service) ProcessHealthCard(ctx context.Context, front Upload) (*Read, error) {
	return s.process(ctx, KindHealth, []Upload{front}, func(read *Read, sides []image.Image) error {
		card, err := s.reader.ReadHealthCard(ctx, sides[0])
		read.HealthCard = card
		return err
	})
}

// ProcessStudentCard reads both sides of a student card and saves the read
func (s *Service) ProcessStudentCard(ctx context.Context, front, back Upload) (*Read, error) {
	return s.process(ctx, KindStudent, []Upload{front, back}, func(read *Read, sides []image.Image) error {
		card, err := s.reader.ReadStudentCard(ctx, sides[0], sides[1])
		read.StudentCard = card
		return err
	})
}

func (s *Service) process(ctx context.Context, kind Kind, uploads []Upload, readCard func(*Read, []image.Image) error) (read *Read, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRead(kind, start, err) }()

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	sides := make([]image.Image, len(uploads))
	for i, u := range uploads {
		img, err := imaging.Decode(u.Data, u.ContentType)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", u.Filename, err)
		}
		if sides[i], err = s.remover.RemoveBackground(img); err != nil {
			return nil, fmt.Errorf("removing background of %s: %w", u.Filename, err)
		}
	}

	read = &Read{ID: id, Kind: kind, CreatedAt: now}

	var saved []string
	cleanup := func() {
		for _, path := range saved {
			if err := s.storage.Delete(path); err != nil {
				slog.Warn("Failed to delete image", "path", path, "error", err)
			}
		}
	}
	for i, img := range sides {
		path, err := s.storage.SaveImage(fmt.Sprintf("%s_%s.png", id, side(i)), img)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("saving image: %w", err)
		}
		saved = append(saved, path)
	}
	read.FrontImage = saved[0]
	if len(saved) > 1 {
		read.BackImage = saved[1]
	}

	if err := readCard(read, sides); err != nil {
		slog.Error("Failed to read card",
			"id", id,
			"kind", kind,
			"error", err,
		)
		cleanup()
		return nil, fmt.Errorf("reading %s card: %w", kind, err)
	}

	if err := s.db.SaveRead(read); err != nil {
		cleanup()
		return nil, fmt.Errorf("saving read to database: %w", err)
	}

	slog.Info("Card read", "id", id, "kind", kind)
	return read, nil
}

// GetRead retrieves a card read by ID
func (s *Service) GetRead(id string) (*Read, error) {
	read, err := s.db.GetRead(id)
	if err != nil {
		return nil, fmt.Errorf("getting read: %w", err)
	}
	return read, nil
}

// ListReads returns all card reads, newest first
func (s *Service) ListReads() ([]*Read, error) {
	reads, err := s.db.ListReads()
	if err != nil {
		return nil, fmt.Errorf("listing reads: %w", err)
	}
	return reads, nil
}

// DeleteRead removes a card read and its images
func (s *Service) DeleteRead(id string) error {
	read, err := s.db.GetRead(id)
	if err != nil {
		return fmt.Errorf("getting read for deletion: %w", err)
	}

	for _, path := range []string{read.FrontImage, read.BackImage} {
		if path == "" {
			continue
		}
		if err := s.storage.Delete(path); err != nil {
			slog.Warn("Failed to delete image", "path", path, "error", err)
		}
	}

	if err := s.db.DeleteRead(id); err != nil {
		return fmt.Errorf("deleting read from database: %w", err)
	}
	return nil
}

// GetReadImage retrieves the cleaned PNG of one side of a read
func (s *Service) GetReadImage(id string, sideName string) ([]byte, error) {
	read, err := s.db.GetRead(id)
	if err != nil {
		return nil, fmt.Errorf("getting read: %w", err)
	}

	var path string
	switch sideName {
	case front.String():
		path = read.FrontImage
	case back.String():
		path = read.BackImage
	}
	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSide, sideName)
	}

	data, err := s.storage.Get(path)
	if err != nil {
		return nil, fmt.Errorf("getting image: %w", err)
	}
	return data, nil
}
