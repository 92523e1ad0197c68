package qdrant

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	qdrantgo "github.com/qdrant/go-client/qdrant"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

var _ = Describe("queryFilter", func() {
	It("returns nil for an empty filter", func() {
		f, err := queryFilter(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNil())
	})

	It("prefixes field keys with the metadata payload key", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "color", Type: memory.FieldTypeKeyword, Op: memory.OpEq, Value: "red"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Must).To(HaveLen(1))
		Expect(f.Must[0].GetField().GetKey()).To(Equal("metadata.color"))
	})

	It("translates keyword equality into a keyword match", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "color", Type: memory.FieldTypeKeyword, Op: memory.OpEq, Value: "red"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Must[0].GetField().GetMatch().GetKeyword()).To(Equal("red"))
	})

	It("translates integer equality into an integer match", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "count", Type: memory.FieldTypeInteger, Op: memory.OpEq, Value: int64(7)},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Must[0].GetField().GetMatch().GetInteger()).To(Equal(int64(7)))
	})

	It("translates boolean equality into a boolean match", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "archived", Type: memory.FieldTypeBoolean, Op: memory.OpEq, Value: true},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Must[0].GetField().GetMatch().GetBoolean()).To(BeTrue())
	})

	It("translates float equality into a closed range", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "price", Type: memory.FieldTypeFloat, Op: memory.OpEq, Value: 9.99},
		})
		Expect(err).NotTo(HaveOccurred())
		r := f.Must[0].GetField().GetRange()
		Expect(r.GetGte()).To(Equal(9.99))
		Expect(r.GetLte()).To(Equal(9.99))
	})

	It("puts negations into must_not", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "color", Type: memory.FieldTypeKeyword, Op: memory.OpNeq, Value: "red"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Must).To(BeEmpty())
		Expect(f.MustNot).To(HaveLen(1))
		Expect(f.MustNot[0].GetField().GetMatch().GetKeyword()).To(Equal("red"))
	})

	It("translates ordering conditions into open ranges", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "count", Type: memory.FieldTypeInteger, Op: memory.OpGt, Value: int64(5)},
			{Field: "price", Type: memory.FieldTypeFloat, Op: memory.OpLte, Value: 20.0},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Must).To(HaveLen(2))
		Expect(f.Must[0].GetField().GetRange().GetGt()).To(Equal(5.0))
		Expect(f.Must[1].GetField().GetRange().GetLte()).To(Equal(20.0))
	})

	It("translates any into a keywords match", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "tag", Type: memory.FieldTypeKeyword, Op: memory.OpAny, Value: []string{"work", "home"}},
		})
		Expect(err).NotTo(HaveOccurred())
		keywords := f.Must[0].GetField().GetMatch().GetKeywords()
		Expect(keywords.GetStrings()).To(Equal([]string{"work", "home"}))
	})

	It("translates except into an except match", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "count", Type: memory.FieldTypeInteger, Op: memory.OpExcept, Value: []int64{1, 2}},
		})
		Expect(err).NotTo(HaveOccurred())
		except := f.Must[0].GetField().GetMatch().GetExceptIntegers()
		Expect(except.GetIntegers()).To(Equal([]int64{1, 2}))
	})

	It("combines multiple conditions into one filter", func() {
		f, err := queryFilter(memory.Filter{
			{Field: "color", Type: memory.FieldTypeKeyword, Op: memory.OpEq, Value: "red"},
			{Field: "size", Type: memory.FieldTypeKeyword, Op: memory.OpNeq, Value: "xl"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Must).To(HaveLen(1))
		Expect(f.MustNot).To(HaveLen(1))
	})
})

var _ = Describe("indexFieldType", func() {
	It("maps every declared field type onto an index schema", func() {
		for fieldType, want := range map[memory.FieldType]qdrantgo.FieldType{
			memory.FieldTypeKeyword: qdrantgo.FieldType_FieldTypeKeyword,
			memory.FieldTypeInteger: qdrantgo.FieldType_FieldTypeInteger,
			memory.FieldTypeFloat:   qdrantgo.FieldType_FieldTypeFloat,
			memory.FieldTypeBoolean: qdrantgo.FieldType_FieldTypeBool,
		} {
			got, err := indexFieldType(fieldType)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		}
	})

	It("rejects unknown field types", func() {
		_, err := indexFieldType("rainbow")
		Expect(err).To(MatchError(ContainSubstring("unsupported")))
	})
})
