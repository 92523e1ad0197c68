package mcp

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/config"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/logger"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
	testutils "github.com/cielhaidir/mcp-server-qdrant/pkg/utils/test"
)

// resultText extracts the text block from a tool result for assertions.
func resultText(result *mcpsdk.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	if !ok {
		return ""
	}
	return text.Text
}

var _ = Describe("Memory tool handlers", func() {
	var (
		server    *Server
		driver    *testutils.MockDriver
		publisher *testutils.MockPublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		driver = testutils.NewMockDriver()
		publisher = testutils.NewMockPublisher()
		ctx = context.TODO()

		var err error
		server, err = NewServer(Config{
			Driver:            driver,
			Publisher:         publisher,
			DefaultCollection: "memories",
			Logger:            logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("store", func() {
		It("stores an entry and reports the new id", func() {
			result, output, err := server.handleStore(ctx, nil, StoreInput{
				Information: "the sky is blue",
				Metadata:    map[string]any{"source": "observation"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.ID).NotTo(BeEmpty())
			Expect(output.Collection).To(Equal("memories"))
			Expect(output.Message).To(Equal("Remembered: the sky is blue"))

			entry, ok := driver.Data["memories"][output.ID]
			Expect(ok).To(BeTrue())
			Expect(entry.Content).To(Equal("the sky is blue"))
			Expect(entry.Metadata).To(HaveKeyWithValue("source", "observation"))
		})

		It("publishes a stored event after a successful write", func() {
			_, output, err := server.handleStore(ctx, nil, StoreInput{
				Information: "remember me",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.Events).To(HaveLen(1))
			event := publisher.Events[0]
			Expect(event.EventType).To(Equal(eventstream.EventTypePointStored))
			Expect(event.Collection).To(Equal("memories"))
			Expect(event.PointID).To(Equal(output.ID))
		})

		It("succeeds even when publishing fails", func() {
			publisher.FailWith = errors.New("broker down")

			result, output, err := server.handleStore(ctx, nil, StoreInput{
				Information: "still stored",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(driver.Data["memories"]).To(HaveKey(output.ID))
		})

		It("requires information", func() {
			result, _, err := server.handleStore(ctx, nil, StoreInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("information is required"))
			Expect(driver.StoreCalls).To(BeZero())
		})

		It("stores into an explicitly named collection", func() {
			_, output, err := server.handleStore(ctx, nil, StoreInput{
				Information:    "elsewhere",
				CollectionName: "other",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Collection).To(Equal("other"))
			Expect(driver.Data["other"]).To(HaveKey(output.ID))
		})

		It("reports a driver failure as a tool error", func() {
			driver.FailWith = memory.ErrConnection

			result, _, err := server.handleStore(ctx, nil, StoreInput{
				Information: "doomed",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("Store failed"))
			Expect(publisher.Events).To(BeEmpty())
		})
	})

	Describe("edit", func() {
		BeforeEach(func() {
			driver.Seed("memories", "point-1", memory.Entry{Content: "original"})
		})

		It("overwrites an existing point", func() {
			result, output, err := server.handleEdit(ctx, nil, EditInput{
				PointID:     "point-1",
				Information: "revised",
				Metadata:    map[string]any{"edited": true},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.ID).To(Equal("point-1"))

			entry := driver.Data["memories"]["point-1"]
			Expect(entry.Content).To(Equal("revised"))
			Expect(entry.Metadata).To(HaveKeyWithValue("edited", true))

			Expect(publisher.Events).To(HaveLen(1))
			Expect(publisher.Events[0].EventType).To(Equal(eventstream.EventTypePointUpdated))
			Expect(publisher.Events[0].PointID).To(Equal("point-1"))
		})

		It("fails for a missing point without creating one", func() {
			result, _, err := server.handleEdit(ctx, nil, EditInput{
				PointID:     "no-such-point",
				Information: "ghost",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("Edit failed"))

			Expect(driver.Data["memories"]).NotTo(HaveKey("no-such-point"))
			Expect(driver.Data["memories"]).To(HaveLen(1))
			Expect(publisher.Events).To(BeEmpty())
		})

		It("fails for a missing collection without creating one", func() {
			result, _, err := server.handleEdit(ctx, nil, EditInput{
				PointID:        "point-1",
				Information:    "ghost",
				CollectionName: "no-such-collection",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(driver.Data).NotTo(HaveKey("no-such-collection"))
		})

		It("requires point_id", func() {
			result, _, err := server.handleEdit(ctx, nil, EditInput{
				Information: "no target",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("point_id is required"))
			Expect(driver.UpdateCalls).To(BeZero())
		})

		It("requires information", func() {
			result, _, err := server.handleEdit(ctx, nil, EditInput{
				PointID: "point-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("information is required"))
			Expect(driver.UpdateCalls).To(BeZero())
		})
	})

	Describe("delete", func() {
		BeforeEach(func() {
			driver.Seed("memories", "point-1", memory.Entry{Content: "doomed"})
		})

		It("deletes an existing point", func() {
			result, output, err := server.handleDelete(ctx, nil, DeleteInput{
				PointID: "point-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.ID).To(Equal("point-1"))
			Expect(driver.Data["memories"]).NotTo(HaveKey("point-1"))

			Expect(publisher.Events).To(HaveLen(1))
			Expect(publisher.Events[0].EventType).To(Equal(eventstream.EventTypePointDeleted))
		})

		It("fails for a missing point", func() {
			result, _, err := server.handleDelete(ctx, nil, DeleteInput{
				PointID: "no-such-point",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("Delete failed"))
			Expect(publisher.Events).To(BeEmpty())
		})

		It("requires point_id", func() {
			result, _, err := server.handleDelete(ctx, nil, DeleteInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("point_id is required"))
			Expect(driver.DeleteCalls).To(BeZero())
		})
	})

	Describe("find", func() {
		BeforeEach(func() {
			driver.Seed("memories", "a", memory.Entry{Content: "alpha"})
			driver.Seed("memories", "b", memory.Entry{Content: "beta"})
		})

		It("returns matching points", func() {
			result, output, err := server.handleFind(ctx, nil, FindInput{
				Query: "greek letters",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Query).To(Equal("greek letters"))
			Expect(output.Count).To(Equal(2))
			Expect(output.Points).To(HaveLen(2))
		})

		It("requires a query", func() {
			result, _, err := server.handleFind(ctx, nil, FindInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("query is required"))
		})

		It("caps results at the configured search limit", func() {
			limited, err := NewServer(Config{
				Driver:            driver,
				DefaultCollection: "memories",
				SearchLimit:       1,
				Logger:            logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			_, output, err := limited.handleFind(ctx, nil, FindInput{Query: "anything"})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Points).To(HaveLen(1))
		})

		It("reports a missing collection as a tool error", func() {
			result, _, err := server.handleFind(ctx, nil, FindInput{
				Query:          "anything",
				CollectionName: "no-such-collection",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("Find failed"))
		})

		It("rejects filters when no filterable fields are declared", func() {
			result, _, err := server.handleFind(ctx, nil, FindInput{
				Query:  "anything",
				Filter: map[string]any{"color": "red"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("unknown filter field"))
		})

		Context("with filterable fields", func() {
			var filtered *Server

			BeforeEach(func() {
				var err error
				filtered, err = NewServer(Config{
					Driver:            driver,
					DefaultCollection: "memories",
					FilterableFields: []memory.FilterableField{
						{Name: "color", Type: memory.FieldTypeKeyword, Condition: memory.OpEq},
						{Name: "count", Type: memory.FieldTypeInteger, Condition: memory.OpGte},
					},
					Logger: logger.Nop(),
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("passes validated conditions to the driver", func() {
				result, _, err := filtered.handleFind(ctx, nil, FindInput{
					Query:  "anything",
					Filter: map[string]any{"color": "red", "count": float64(3)},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.IsError).To(BeFalse())
				Expect(driver.LastFindFilter).To(Equal(memory.Filter{
					{Field: "color", Type: memory.FieldTypeKeyword, Op: memory.OpEq, Value: "red"},
					{Field: "count", Type: memory.FieldTypeInteger, Op: memory.OpGte, Value: int64(3)},
				}))
			})

			It("searches unfiltered when the filter is omitted", func() {
				result, output, err := filtered.handleFind(ctx, nil, FindInput{Query: "anything"})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.IsError).To(BeFalse())
				Expect(output.Count).To(Equal(2))
				Expect(driver.LastFindFilter).To(BeEmpty())
			})

			It("rejects values of the wrong type without calling the driver", func() {
				driver.LastFindFilter = memory.Filter{{Field: "sentinel"}}
				result, _, err := filtered.handleFind(ctx, nil, FindInput{
					Query:  "anything",
					Filter: map[string]any{"count": "three"},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.IsError).To(BeTrue())
				Expect(resultText(result)).To(ContainSubstring("invalid filter"))
				Expect(driver.LastFindFilter).To(Equal(memory.Filter{{Field: "sentinel"}}))
			})

			It("rejects unknown filter fields", func() {
				result, _, err := filtered.handleFind(ctx, nil, FindInput{
					Query:  "anything",
					Filter: map[string]any{"size": "xl"},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.IsError).To(BeTrue())
				Expect(resultText(result)).To(ContainSubstring(`unknown filter field "size"`))
			})
		})
	})

	Describe("list", func() {
		BeforeEach(func() {
			driver.Seed("memories", "a", memory.Entry{Content: "first"})
			driver.Seed("memories", "b", memory.Entry{Content: "second"})
			driver.Seed("memories", "c", memory.Entry{Content: "third"})
		})

		It("lists points with the default page size", func() {
			result, output, err := server.handleList(ctx, nil, ListInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(3))
			Expect(driver.LastListLimit).To(Equal(100))
			Expect(driver.LastListOffset).To(BeZero())
		})

		It("respects an explicit limit", func() {
			_, output, err := server.handleList(ctx, nil, ListInput{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Points).To(HaveLen(2))
		})

		It("skips points by offset", func() {
			_, first, err := server.handleList(ctx, nil, ListInput{Limit: 1})
			Expect(err).NotTo(HaveOccurred())

			_, second, err := server.handleList(ctx, nil, ListInput{Limit: 1, Offset: 1})
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Offset).To(Equal(1))
			Expect(second.Points).To(HaveLen(1))
			Expect(second.Points[0].ID).NotTo(Equal(first.Points[0].ID))
		})

		It("returns an empty page past the end", func() {
			_, output, err := server.handleList(ctx, nil, ListInput{Offset: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Points).To(BeEmpty())
			Expect(output.Count).To(BeZero())
		})

		It("clamps the limit to the maximum", func() {
			_, _, err := server.handleList(ctx, nil, ListInput{Limit: 5000})
			Expect(err).NotTo(HaveOccurred())
			Expect(driver.LastListLimit).To(Equal(1000))
		})

		It("clamps a negative offset to zero", func() {
			_, output, err := server.handleList(ctx, nil, ListInput{Offset: -5})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Offset).To(BeZero())
			Expect(driver.LastListOffset).To(BeZero())
		})

		It("reports a missing collection as a tool error", func() {
			result, _, err := server.handleList(ctx, nil, ListInput{
				CollectionName: "no-such-collection",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("List failed"))
		})
	})

	Describe("tool descriptions", func() {
		It("falls back to the built-in defaults when unset", func() {
			defaults := config.NewDefaultConfig().Tools
			Expect(server.config.ToolDescriptions.Find).To(Equal(defaults.FindDescription))
			Expect(server.config.ToolDescriptions.Store).To(Equal(defaults.StoreDescription))
			Expect(server.config.ToolDescriptions.List).To(Equal(defaults.ListDescription))
			Expect(server.config.ToolDescriptions.Edit).To(Equal(defaults.EditDescription))
			Expect(server.config.ToolDescriptions.Delete).To(Equal(defaults.DeleteDescription))
		})

		It("keeps explicit overrides", func() {
			custom, err := NewServer(Config{
				Driver:           driver,
				ToolDescriptions: ToolDescriptions{Find: "custom find"},
				Logger:           logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(custom.config.ToolDescriptions.Find).To(Equal("custom find"))
			Expect(custom.config.ToolDescriptions.Store).To(Equal(config.NewDefaultConfig().Tools.StoreDescription))
		})
	})

	Describe("filterFieldsHelp", func() {
		It("renders queryable fields with type, condition, and description", func() {
			help := filterFieldsHelp([]memory.FilterableField{
				{Name: "color", Description: "The color of the object", Type: memory.FieldTypeKeyword, Condition: memory.OpEq},
				{Name: "tenant", Type: memory.FieldTypeKeyword, Condition: memory.OpEq, Required: true},
			})
			Expect(help).To(ContainSubstring("color (keyword, ==): The color of the object"))
			Expect(help).To(ContainSubstring("tenant (keyword, ==) [required]"))
		})

		It("omits index-only fields", func() {
			help := filterFieldsHelp([]memory.FilterableField{
				{Name: "shard", Type: memory.FieldTypeInteger},
			})
			Expect(help).To(BeEmpty())
		})

		It("is empty for no fields", func() {
			Expect(filterFieldsHelp(nil)).To(BeEmpty())
		})
	})

	Describe("collection resolution", func() {
		It("fails when no collection is named and no default is configured", func() {
			bare, err := NewServer(Config{
				Driver: driver,
				Logger: logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			result, _, err := bare.handleFind(ctx, nil, FindInput{Query: "anything"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultText(result)).To(ContainSubstring("no default collection"))
		})
	})
})
