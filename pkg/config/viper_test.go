package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/config"
)

// setenv sets an environment variable for the duration of the spec.
func setenv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("applies defaults when nothing else is set", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("qdrant.url")).To(Equal(defaults.Qdrant.URL))
		Expect(v.GetUint("qdrant.search_limit")).To(Equal(defaults.Qdrant.SearchLimit))
		Expect(v.GetString("server.transport")).To(Equal(defaults.Server.Transport))
		Expect(v.GetString("embedding.model")).To(Equal(defaults.Embedding.Model))
		Expect(v.GetBool("qdrant.read_only")).To(BeFalse())
	})

	It("reads values from config.toml", func() {
		data := `[qdrant]
url = "https://qdrant.example.com:6334"
collection = "memories"

[server]
transport = "http"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("qdrant.url")).To(Equal("https://qdrant.example.com:6334"))
		Expect(v.GetString("qdrant.collection")).To(Equal("memories"))
		Expect(v.GetString("server.transport")).To(Equal("http"))
	})

	It("lets prefixed environment variables override the config file", func() {
		data := `[qdrant]
url = "https://from-file:6334"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		setenv("QDRANTMCP_QDRANT_URL", "https://from-env:6334")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("qdrant.url")).To(Equal("https://from-env:6334"))
	})

	Describe("legacy environment aliases", func() {
		It("honors QDRANT_URL", func() {
			setenv("QDRANT_URL", "https://legacy:6334")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetString("qdrant.url")).To(Equal("https://legacy:6334"))
		})

		It("honors COLLECTION_NAME", func() {
			setenv("COLLECTION_NAME", "legacy-memories")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetString("qdrant.collection")).To(Equal("legacy-memories"))
		})

		It("honors QDRANT_READ_ONLY", func() {
			setenv("QDRANT_READ_ONLY", "1")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetBool("qdrant.read_only")).To(BeTrue())
		})

		It("honors QDRANT_SEARCH_LIMIT", func() {
			setenv("QDRANT_SEARCH_LIMIT", "25")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetUint("qdrant.search_limit")).To(Equal(uint(25)))
		})

		It("honors TOOL_FIND_DESCRIPTION", func() {
			setenv("TOOL_FIND_DESCRIPTION", "custom find description")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetString("tools.find_description")).To(Equal("custom find description"))
		})

		It("prefers the prefixed form when both are set", func() {
			setenv("QDRANT_URL", "https://legacy:6334")
			setenv("QDRANTMCP_QDRANT_URL", "https://prefixed:6334")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.GetString("qdrant.url")).To(Equal("https://prefixed:6334"))
		})
	})
})
