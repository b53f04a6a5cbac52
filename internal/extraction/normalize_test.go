package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/card-reader/internal/ocr"
)

var _ = Describe("Name", func() {
	var (
		detections []ocr.Detection
		name       Field
	)

	JustBeforeEach(func() {
		name = Name(detections)
	})

	When("two candidates form two tokens", func() {
		BeforeEach(func() {
			detections = []ocr.Detection{det("KOVÁCS", 0.9), det("ANNA", 0.8)}
		})

		It("should title-case and join them", func() {
			Expect(name).To(Equal(Known("Kovács Anna")))
		})
	})

	When("a single candidate holds the whole name", func() {
		BeforeEach(func() {
			detections = []ocr.Detection{det("SZŐKE ÉVA MÁRIA", 0.7)}
		})

		It("should split it on whitespace", func() {
			Expect(name).To(Equal(Known("Szőke Éva Mária")))
		})
	})

	When("more than three candidates are found", func() {
		BeforeEach(func() {
			detections = []ocr.Detection{
				det("KOVÁCS", 0.9),
				det("ANNA", 0.9),
				det("NAGY", 0.9),
				det("PÉTER", 0.9),
			}
		})

		It("should be unknown", func() {
			Expect(name.Known()).To(BeFalse())
		})
	})

	When("only one token remains", func() {
		BeforeEach(func() {
			detections = []ocr.Detection{det("KOVÁCS", 0.9)}
		})

		It("should be unknown", func() {
			Expect(name.Known()).To(BeFalse())
		})
	})

	When("a zero was read instead of an O", func() {
		BeforeEach(func() {
			detections = []ocr.Detection{det("K0VÁCS", 0.9), det("ANNA", 0.9)}
		})

		It("should correct it", func() {
			Expect(name).To(Equal(Known("Kovács Anna")))
		})
	})

	When("some detections are not confident or not letters", func() {
		BeforeEach(func() {
			detections = []ocr.Detection{
				det("KOVÁCS", 0.9),
				det("ANNA", 0.9),
				det("NAGY", 0.5),
				det("12/3", 0.9),
			}
		})

		It("should ignore them", func() {
			Expect(name).To(Equal(Known("Kovács Anna")))
		})
	})
})

var _ = Describe("Sex", func() {
	DescribeTable("reading the sex box",
		func(texts []string, expected Field) {
			var detections []ocr.Detection
			for _, t := range texts {
				detections = append(detections, det(t, 0.9))
			}
			Expect(Sex(detections)).To(Equal(expected))
		},
		Entry("N is female", []string{"N"}, Known("female")),
		Entry("F is male", []string{"F"}, Known("male")),
		Entry("N wins over F", []string{"F", "N"}, Known("female")),
		Entry("no capital letters", []string{"x", "1"}, Unknown()),
		Entry("no detections", []string{}, Unknown()),
	)
})

var _ = Describe("Nationality", func() {
	It("should return the country code", func() {
		Expect(Nationality([]ocr.Detection{det("HUN", 0.9)})).To(Equal(Known("HUN")))
	})

	It("should uppercase before matching", func() {
		Expect(Nationality([]ocr.Detection{det("hun", 0.9)})).To(Equal(Known("HUN")))
	})

	It("should return the first match", func() {
		Expect(Nationality([]ocr.Detection{det("12", 0.9), det("HUN AUT", 0.9)})).To(Equal(Known("HUN")))
	})

	It("should prefer a standalone code over letters inside a word", func() {
		Expect(Nationality([]ocr.Detection{det("Magyar HUN", 0.9)})).To(Equal(Known("HUN")))
	})

	It("should look past the first detection for a standalone code", func() {
		Expect(Nationality([]ocr.Detection{det("Magyar", 0.9), det("HUN", 0.9)})).To(Equal(Known("HUN")))
	})

	It("should be unknown without a code", func() {
		Expect(Nationality([]ocr.Detection{det("H1", 0.9)}).Known()).To(BeFalse())
	})
})

var _ = Describe("FixedFormatIdentifier", func() {
	DescribeTable("reading the document number",
		func(text string, expected Field) {
			Expect(FixedFormatIdentifier([]ocr.Detection{det(text, 0.9)})).To(Equal(expected))
		},
		Entry("clean", "123456AB", Known("123456AB")),
		Entry("O read for a zero", "12345OAB", Known("123450AB")),
		Entry("lowercase with noise", "no 123456ab", Known("123456AB")),
		Entry("too few digits", "1234AB", Unknown()),
	)
})

var _ = Describe("NumericIdentifier", func() {
	can := NumericIdentifier(6)

	It("should concatenate numeric detections", func() {
		Expect(can([]ocr.Detection{det("123", 0.9), det("456", 0.9)})).To(Equal(Known("123456")))
	})

	It("should strip spaces and correct O", func() {
		Expect(can([]ocr.Detection{det("12 34 O6", 0.9)})).To(Equal(Known("123406")))
	})

	It("should skip non numeric detections", func() {
		Expect(can([]ocr.Detection{det("CAN", 0.9), det("123456", 0.9)})).To(Equal(Known("123456")))
	})

	It("should ignore detections at or below 0.6", func() {
		Expect(can([]ocr.Detection{det("123456", 0.6)}).Known()).To(BeFalse())
	})

	It("should be unknown when there are too few digits", func() {
		Expect(can([]ocr.Detection{det("12345", 0.9)}).Known()).To(BeFalse())
	})
})

var _ = Describe("Joined", func() {
	It("should join confident detections in order", func() {
		birthplace := Joined(0.55)([]ocr.Detection{det("BUDAPEST", 0.9), det("(XI.)", 0.6), det("X", 0.2)})
		Expect(birthplace).To(Equal(Known("BUDAPEST (XI.)")))
	})

	It("should be unknown when nothing is confident", func() {
		Expect(Joined(0.55)([]ocr.Detection{det("BUDAPEST", 0.5)}).Known()).To(BeFalse())
	})
})

var _ = Describe("Address", func() {
	It("should accept an address starting with a postal code", func() {
		address := Address([]ocr.Detection{det("1111 Budapest,", 0.9), det("Fő utca 1.", 0.5)})
		Expect(address).To(Equal(Known("1111 Budapest, Fő utca 1.")))
	})

	It("should reject an address without a postal code", func() {
		Expect(Address([]ocr.Detection{det("Budapest, Fő utca 1.", 0.9)}).Known()).To(BeFalse())
	})
})

var _ = Describe("Year", func() {
	It("should read a four digit year", func() {
		Expect(Year([]ocr.Detection{det("2025", 0.9), det("év", 0.9)})).To(Equal(Known("2025")))
	})

	It("should return the first year when several are read", func() {
		Expect(Year([]ocr.Detection{det("2025", 0.9), det("2025", 0.9)})).To(Equal(Known("2025")))
		Expect(Year([]ocr.Detection{det("2025", 0.9), det("2026", 0.9)})).To(Equal(Known("2025")))
	})

	It("should find the year inside a whole line", func() {
		Expect(Year([]ocr.Detection{det("Érvényes 2025", 0.9)})).To(Equal(Known("2025")))
	})

	It("should ignore years that are not confident", func() {
		Expect(Year([]ocr.Detection{det("2024", 0.4), det("2025", 0.9)})).To(Equal(Known("2025")))
	})

	It("should be unknown for a short number", func() {
		Expect(Year([]ocr.Detection{det("25", 0.9)}).Known()).To(BeFalse())
	})
})

var _ = Describe("Checked", func() {
	cardNumber := Checked(NumericIdentifier(9), ValidCardNumber)

	It("should keep a number with a valid check digit", func() {
		Expect(cardNumber([]ocr.Detection{det("123 456 788", 0.9)})).To(Equal(Known("123456788")))
	})

	It("should discard a number with a bad check digit", func() {
		Expect(cardNumber([]ocr.Detection{det("123 456 789", 0.9)}).Known()).To(BeFalse())
	})
})
