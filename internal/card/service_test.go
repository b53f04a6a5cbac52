package card

import (
	"context"
	"errors"
	"image"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zombor/card-reader/internal/extraction"
	"github.com/zombor/card-reader/internal/imaging"
)

// mockDB is a mock implementation of DB
type mockDB struct {
	reads   map[string]*Read
	saveErr error
}

func newMockDB() *mockDB {
	return &mockDB{reads: make(map[string]*Read)}
}

func (m *mockDB) SaveRead(read *Read) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.reads[read.ID] = read
	return nil
}

func (m *mockDB) GetRead(id string) (*Read, error) {
	read, ok := m.reads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return read, nil
}

func (m *mockDB) ListReads() ([]*Read, error) {
	reads := make([]*Read, 0, len(m.reads))
	for _, r := range m.reads {
		reads = append(reads, r)
	}
	return reads, nil
}

func (m *mockDB) DeleteRead(id string) error {
	if _, ok := m.reads[id]; !ok {
		return ErrNotFound
	}
	delete(m.reads, id)
	return nil
}

func (m *mockDB) Close() error {
	return nil
}

// mockStorage is a mock implementation of ImageStorage
type mockStorage struct {
	images  map[string]image.Image
	saveErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{images: make(map[string]image.Image)}
}

func (m *mockStorage) SaveImage(name string, img image.Image) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.images[name] = img
	return name, nil
}

func (m *mockStorage) Get(path string) ([]byte, error) {
	img, ok := m.images[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return imaging.EncodePNG(img)
}

func (m *mockStorage) Delete(path string) error {
	delete(m.images, path)
	return nil
}

// mockReader returns canned cards and records the images it was given
type mockReader struct {
	images []image.Image
	err    error
}

func (m *mockReader) ReadIDCard(ctx context.Context, front, back image.Image) (*IDCard, error) {
	m.images = append(m.images, front, back)
	if m.err != nil {
		return nil, m.err
	}
	return &IDCard{Name: extraction.Known("Kovács Anna"), Errors: []ValidationError{}}, nil
}

func (m *mockReader) ReadHealthCard(ctx context.Context, front image.Image) (*HealthCard, error) {
	m.images = append(m.images, front)
	if m.err != nil {
		return nil, m.err
	}
	return &HealthCard{CardNumber: extraction.Known("123456788")}, nil
}

func (m *mockReader) ReadStudentCard(ctx context.Context, front, back image.Image) (*StudentCard, error) {
	m.images = append(m.images, front, back)
	if m.err != nil {
		return nil, m.err
	}
	return &StudentCard{OMNumber: extraction.Known("7123456789")}, nil
}

// shrinkingRemover crops one pixel off every edge
type shrinkingRemover struct {
	err error
}

func (r shrinkingRemover) RemoveBackground(img image.Image) (image.Image, error) {
	if r.err != nil {
		return nil, r.err
	}
	return img.(*image.Gray).SubImage(img.Bounds().Inset(1)), nil
}

type fixedIDGenerator struct{ id string }

func (g fixedIDGenerator) Generate() string { return g.id }

type fixedTimeSource struct{ t time.Time }

func (s fixedTimeSource) Now() time.Time { return s.t }

var _ = Describe("Service", func() {
	var (
		db      *mockDB
		storage *mockStorage
		reader  *mockReader
		remover shrinkingRemover
		metrics *Metrics
		service *Service
		front   Upload
		back    Upload
		created time.Time
	)

	pngUpload := func(name string) Upload {
		data, err := imaging.EncodePNG(image.NewGray(image.Rect(0, 0, 20, 10)))
		Expect(err).NotTo(HaveOccurred())
		return Upload{Filename: name, Data: data, ContentType: "image/png"}
	}

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		reader = &mockReader{}
		remover = shrinkingRemover{}
		metrics = NewMetrics()
		created = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		front = pngUpload("front.png")
		back = pngUpload("back.png")
	})

	JustBeforeEach(func() {
		service = NewServiceWithDeps(db, reader, remover, storage, metrics, fixedIDGenerator{id: "read-1"}, fixedTimeSource{t: created})
	})

	Describe("ProcessIDCard", func() {
		var (
			read *Read
			err  error
		)

		JustBeforeEach(func() {
			read, err = service.ProcessIDCard(context.Background(), front, back)
		})

		When("processing succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the read", func() {
				Expect(read.ID).To(Equal("read-1"))
				Expect(read.Kind).To(Equal(KindID))
				Expect(read.CreatedAt).To(Equal(created))
				Expect(read.IDCard.Name).To(Equal(extraction.Known("Kovács Anna")))
			})

			It("should read the cleaned images", func() {
				Expect(reader.images).To(HaveLen(2))
				Expect(reader.images[0].Bounds()).To(Equal(image.Rect(1, 1, 19, 9)))
			})

			It("should store both cleaned images", func() {
				Expect(read.FrontImage).To(Equal("read-1_front.png"))
				Expect(read.BackImage).To(Equal("read-1_back.png"))
				Expect(storage.images).To(HaveLen(2))
			})

			It("should save the read", func() {
				Expect(db.reads).To(HaveKey("read-1"))
			})

			It("should count the read", func() {
				Expect(testutil.ToFloat64(metrics.Reads.WithLabelValues("id", "success"))).To(Equal(1.0))
			})
		})

		When("an upload is not an image", func() {
			BeforeEach(func() {
				back = Upload{Filename: "back.txt", Data: []byte("hello"), ContentType: "text/plain"}
			})

			It("should return ErrUndecodable", func() {
				Expect(err).To(MatchError(imaging.ErrUndecodable))
				Expect(reader.images).To(BeEmpty())
			})

			It("should count the failure", func() {
				Expect(testutil.ToFloat64(metrics.Reads.WithLabelValues("id", "error"))).To(Equal(1.0))
			})
		})

		When("background removal fails", func() {
			BeforeEach(func() {
				remover = shrinkingRemover{err: errors.New("too small")}
			})

			It("should return an error", func() {
				Expect(err).To(MatchError(ContainSubstring("removing background of front.png")))
			})
		})

		When("reading fails", func() {
			BeforeEach(func() {
				reader.err = errors.New("engine crashed")
			})

			It("should return an error", func() {
				Expect(err).To(MatchError(ContainSubstring("engine crashed")))
			})

			It("should clean up the stored images", func() {
				Expect(storage.images).To(BeEmpty())
			})

			It("should not save the read", func() {
				Expect(db.reads).To(BeEmpty())
			})
		})

		When("saving the read fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
			})

			It("should return an error", func() {
				Expect(err).To(MatchError(ContainSubstring("saving read to database")))
			})

			It("should clean up the stored images", func() {
				Expect(storage.images).To(BeEmpty())
			})
		})

		When("storing an image fails", func() {
			BeforeEach(func() {
				storage.saveErr = errors.New("read-only filesystem")
			})

			It("should not read the card", func() {
				Expect(err).To(MatchError(ContainSubstring("saving image")))
				Expect(reader.images).To(BeEmpty())
			})
		})
	})

	Describe("ProcessHealthCard", func() {
		It("should read and store only the front", func() {
			read, err := service.ProcessHealthCard(context.Background(), front)
			Expect(err).NotTo(HaveOccurred())
			Expect(read.Kind).To(Equal(KindHealth))
			Expect(read.BackImage).To(BeEmpty())
			Expect(read.HealthCard.CardNumber).To(Equal(extraction.Known("123456788")))
			Expect(storage.images).To(HaveLen(1))
		})
	})

	Describe("ProcessStudentCard", func() {
		It("should read both sides", func() {
			read, err := service.ProcessStudentCard(context.Background(), front, back)
			Expect(err).NotTo(HaveOccurred())
			Expect(read.Kind).To(Equal(KindStudent))
			Expect(read.StudentCard.OMNumber).To(Equal(extraction.Known("7123456789")))
			Expect(reader.images).To(HaveLen(2))
		})
	})

	Describe("history", func() {
		JustBeforeEach(func() {
			_, err := service.ProcessIDCard(context.Background(), front, back)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should get a stored read", func() {
			read, err := service.GetRead("read-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(read.Kind).To(Equal(KindID))
		})

		It("should wrap ErrNotFound", func() {
			_, err := service.GetRead("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should list reads", func() {
			reads, err := service.ListReads()
			Expect(err).NotTo(HaveOccurred())
			Expect(reads).To(HaveLen(1))
		})

		It("should return a stored image", func() {
			data, err := service.GetReadImage("read-1", "back")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).NotTo(BeEmpty())
		})

		It("should reject an unknown side", func() {
			_, err := service.GetReadImage("read-1", "left")
			Expect(err).To(MatchError(ErrUnknownSide))
		})

		It("should delete the read and its images", func() {
			Expect(service.DeleteRead("read-1")).To(Succeed())
			Expect(db.reads).To(BeEmpty())
			Expect(storage.images).To(BeEmpty())
		})

		It("should fail to delete a missing read", func() {
			Expect(service.DeleteRead("missing")).To(MatchError(ErrNotFound))
		})
	})
})
