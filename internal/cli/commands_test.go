// Test Type: Integration Test
// Description: End-to-end tests for the pylon commands against a real
// project tree

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pylon/pkg/testutil"
)

const testPipelines = `
[[pipeline]]
name = "images"
base_dir = "."
glob = "/**/*.png"
ops = ["OP_COPY"]
`

func TestBuildCommand(t *testing.T) {
	t.Run("produces_manifest_assets", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml":          testPipelines,
			"content/blog/post.md":    "# post",
			"content/blog/header.png": "png-bytes",
			"assets.yaml": "assets:\n" +
				"  - uri: /blog/header.png\n" +
				"    document: content/blog/post.md\n",
		})

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"build", "--root", env.Root})
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)

		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, "png-bytes", env.ReadFile("public/blog/header.png"))
		assert.Contains(t, out.String(), "/blog/header.png")
	})

	t.Run("reports_failures_without_stopping", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml":          testPipelines,
			"content/blog/post.md":    "# post",
			"content/blog/header.png": "png-bytes",
			"assets.yaml": "assets:\n" +
				"  - uri: /blog/missing.png\n" +
				"    document: content/blog/post.md\n" +
				"  - uri: /blog/header.png\n" +
				"    document: content/blog/post.md\n",
		})

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"build", "--root", env.Root})
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)

		err := rootCmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 assets failed")
		assert.Equal(t, "png-bytes", env.ReadFile("public/blog/header.png"),
			"healthy assets still get produced")
	})

	t.Run("missing_pipeline_manifest", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"assets.yaml": "assets: []\n",
		})

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"build", "--root", env.Root})
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetErr(&bytes.Buffer{})

		require.Error(t, rootCmd.Execute())
	})
}

func TestAssetCommand(t *testing.T) {
	t.Run("produces_single_asset", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml":          testPipelines,
			"content/blog/post.md":    "# post",
			"content/blog/header.png": "png-bytes",
		})

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{
			"asset", "/blog/header.png",
			"--root", env.Root,
			"--document", "content/blog/post.md",
		})
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)

		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, "png-bytes", env.ReadFile("public/blog/header.png"))
	})

	t.Run("no_matching_rule", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml": testPipelines,
		})

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"asset", "/fonts/sans.woff2", "--root", env.Root})
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetErr(&bytes.Buffer{})

		require.Error(t, rootCmd.Execute())
	})
}

func TestPipelinesCommand(t *testing.T) {
	t.Run("lists_registered_rules", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml": testPipelines,
		})

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"pipelines", "--root", env.Root})
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)

		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, out.String(), "images")
		assert.Contains(t, out.String(), "/**/*.png")
	})
}
