package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/embeddings/ollama"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

func TestOllama(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Embedder Suite")
}

var _ = Describe("Embedder", func() {
	Describe("NewEmbedder", func() {
		It("applies defaults for empty config", func() {
			e, err := ollama.NewEmbedder(ollama.EmbedderConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.VectorName()).To(Equal(ollama.DefaultEmbeddingModel))
			Expect(e.Dimensions()).To(Equal(uint64(ollama.DefaultDimensions)))
		})

		It("keeps explicit settings", func() {
			e, err := ollama.NewEmbedder(ollama.EmbedderConfig{
				Model:      "all-minilm",
				Dimensions: 384,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.VectorName()).To(Equal("all-minilm"))
			Expect(e.Dimensions()).To(Equal(uint64(384)))
		})
	})

	Describe("VectorName", func() {
		It("strips a registry prefix from the model name", func() {
			e, err := ollama.NewEmbedder(ollama.EmbedderConfig{
				Model: "nomic-ai/nomic-embed-text",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.VectorName()).To(Equal("nomic-embed-text"))
		})
	})

	Describe("Embed", func() {
		It("posts the text and returns the first embedding", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/embed"))
				Expect(r.Method).To(Equal(http.MethodPost))

				var req map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req["model"]).To(Equal("nomic-embed-text"))
				Expect(req["input"]).To(Equal("hello world"))

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{{0.1, 0.2, 0.3}},
				})
			}))
			defer server.Close()

			e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			vec, err := e.Embed(context.Background(), "hello world")
			Expect(err).NotTo(HaveOccurred())
			Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))
		})

		It("wraps non-200 responses in the embedding sentinel", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			}))
			defer server.Close()

			e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			_, err = e.Embed(context.Background(), "hello")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, memory.ErrEmbedding)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("404"))
		})

		It("fails when the response has no embeddings", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{},
				})
			}))
			defer server.Close()

			e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			_, err = e.Embed(context.Background(), "hello")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, memory.ErrEmbedding)).To(BeTrue())
		})

		It("wraps connection failures in the embedding sentinel", func() {
			e, err := ollama.NewEmbedder(ollama.EmbedderConfig{
				BaseURL: "http://127.0.0.1:1",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = e.Embed(context.Background(), "hello")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, memory.ErrEmbedding)).To(BeTrue())
		})
	})
})
