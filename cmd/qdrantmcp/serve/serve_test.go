package servecmder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

func TestServe(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Serve Suite")
}

var _ = Describe("newLogger", func() {
	It("builds a console logger when no log file is configured", func() {
		log, closeLogs, err := newLogger("stdio", false, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(log).NotTo(BeNil())
		Expect(closeLogs()).To(Succeed())
	})

	It("enables debug level in debug mode", func() {
		log, closeLogs, err := newLogger("stdio", true, "")
		Expect(err).NotTo(HaveOccurred())
		defer closeLogs()

		Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
	})

	It("fans records out to a JSON log file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "server.log")

		log, closeLogs, err := newLogger("stdio", false, path)
		Expect(err).NotTo(HaveOccurred())

		log.Info("started", "transport", "stdio")
		Expect(closeLogs()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"started"`))
		Expect(string(data)).To(ContainSubstring(`"transport":"stdio"`))
	})

	It("appends across restarts", func() {
		path := filepath.Join(GinkgoT().TempDir(), "server.log")

		for _, msg := range []string{"first run", "second run"} {
			log, closeLogs, err := newLogger("http", false, path)
			Expect(err).NotTo(HaveOccurred())
			log.Info(msg)
			Expect(closeLogs()).To(Succeed())
		}

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("first run"))
		Expect(string(data)).To(ContainSubstring("second run"))
	})

	It("fails when the log file cannot be created", func() {
		_, _, err := newLogger("stdio", false, filepath.Join(GinkgoT().TempDir(), "missing", "server.log"))
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})

var _ = Describe("filterableFields", func() {
	newCommander := func(fields []map[string]any) *ServeCommander {
		v := viper.New()
		if fields != nil {
			v.Set("qdrant.filterable_fields", fields)
		}
		return &ServeCommander{viper: v}
	}

	It("returns no fields when none are configured", func() {
		fields, err := newCommander(nil).filterableFields()
		Expect(err).NotTo(HaveOccurred())
		Expect(fields).To(BeEmpty())
	})

	It("decodes declarations into the domain form", func() {
		fields, err := newCommander([]map[string]any{
			{"name": "color", "description": "The color", "type": "keyword", "condition": "=="},
			{"name": "shard", "type": "integer"},
		}).filterableFields()
		Expect(err).NotTo(HaveOccurred())
		Expect(fields).To(Equal([]memory.FilterableField{
			{Name: "color", Description: "The color", Type: memory.FieldTypeKeyword, Condition: memory.OpEq},
			{Name: "shard", Type: memory.FieldTypeInteger},
		}))
	})

	It("rejects inconsistent declarations", func() {
		_, err := newCommander([]map[string]any{
			{"name": "color", "type": "keyword", "condition": ">"},
		}).filterableFields()
		Expect(err).To(MatchError(ContainSubstring("requires a numeric type")))
	})
})
