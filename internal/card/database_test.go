package card

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/card-reader/internal/extraction"
)

var _ = Describe("BoltDB", func() {
	var (
		db     *BoltDB
		dbPath string
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newRead := func(id string, created time.Time) *Read {
		return &Read{
			ID:         id,
			Kind:       KindHealth,
			FrontImage: id + "_front.png",
			HealthCard: &HealthCard{
				Name:       extraction.Known("Kiss János"),
				BirthDate:  extraction.Known("1975-05-20"),
				IssueDate:  extraction.Unknown(),
				CardNumber: extraction.Known("123456788"),
			},
			CreatedAt: created,
		}
	}

	Describe("SaveRead and GetRead", func() {
		It("should round-trip a read including unknown fields", func() {
			created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			Expect(db.SaveRead(newRead("r1", created))).To(Succeed())

			read, err := db.GetRead("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(read.Kind).To(Equal(KindHealth))
			Expect(read.CreatedAt.Equal(created)).To(BeTrue())
			Expect(read.HealthCard.Name).To(Equal(extraction.Known("Kiss János")))
			Expect(read.HealthCard.IssueDate.Known()).To(BeFalse())
			Expect(read.IDCard).To(BeNil())
		})

		It("should return ErrNotFound for a missing read", func() {
			_, err := db.GetRead("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListReads", func() {
		It("should return an empty list when there are no reads", func() {
			reads, err := db.ListReads()
			Expect(err).NotTo(HaveOccurred())
			Expect(reads).To(BeEmpty())
		})

		It("should return the newest read first", func() {
			base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			Expect(db.SaveRead(newRead("b", base))).To(Succeed())
			Expect(db.SaveRead(newRead("a", base.Add(time.Hour)))).To(Succeed())
			Expect(db.SaveRead(newRead("c", base.Add(-time.Hour)))).To(Succeed())

			reads, err := db.ListReads()
			Expect(err).NotTo(HaveOccurred())
			ids := []string{reads[0].ID, reads[1].ID, reads[2].ID}
			Expect(ids).To(Equal([]string{"a", "b", "c"}))
		})
	})

	Describe("DeleteRead", func() {
		It("should remove the read", func() {
			Expect(db.SaveRead(newRead("r1", time.Now()))).To(Succeed())
			Expect(db.DeleteRead("r1")).To(Succeed())

			_, err := db.GetRead("r1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should return ErrNotFound for a missing read", func() {
			Expect(db.DeleteRead("missing")).To(MatchError(ErrNotFound))
		})
	})

	It("should keep reads across reopening", func() {
		Expect(db.SaveRead(newRead("r1", time.Now()))).To(Succeed())
		Expect(db.Close()).To(Succeed())

		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
		_, err = db.GetRead("r1")
		Expect(err).NotTo(HaveOccurred())
	})
})
