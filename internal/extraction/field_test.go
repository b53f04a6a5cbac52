package extraction

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Field", func() {
	Describe("Equal", func() {
		It("should be true for equal known values", func() {
			Expect(Known("a").Equal(Known("a"))).To(BeTrue())
		})

		It("should be false for different values", func() {
			Expect(Known("a").Equal(Known("b"))).To(BeFalse())
		})

		It("should be false when both are unknown", func() {
			Expect(Unknown().Equal(Unknown())).To(BeFalse())
		})

		It("should distinguish unknown from an empty known value", func() {
			Expect(Known("").Equal(Unknown())).To(BeFalse())
			Expect(Known("").Known()).To(BeTrue())
		})
	})

	Describe("JSON", func() {
		type record struct {
			Name Field `json:"name"`
			Sex  Field `json:"sex"`
		}

		It("should encode unknown as null", func() {
			data, err := json.Marshal(record{Name: Known("Kovács Anna"), Sex: Unknown()})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(MatchJSON(`{"name":"Kovács Anna","sex":null}`))
		})

		It("should decode null as unknown", func() {
			var r record
			Expect(json.Unmarshal([]byte(`{"name":"Kovács Anna","sex":null}`), &r)).To(Succeed())
			Expect(r.Name).To(Equal(Known("Kovács Anna")))
			Expect(r.Sex.Known()).To(BeFalse())
		})
	})
})
