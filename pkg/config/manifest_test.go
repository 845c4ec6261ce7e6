// Test Type: Unit Test
// Description: Tests for the pipeline manifest - rule loading and registry construction

package config_test

import (
	"testing"

	"github.com/arthur-debert/pylon/pkg/config"
	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/rules"
	"github.com/arthur-debert/pylon/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
[[pipeline]]
name = "blog images"
base_dir = "."
glob = "/blog/**/*.png"
ops = ["OP_COPY"]

[[pipeline]]
name = "stylesheets"
base_dir = "/sass"
glob = "/static/styles/*.css"
ops = [
  "sassc $SOURCE $SCRATCH",
  "cp $SCRATCH $TARGET",
]
autorun = "/sass/**/*.scss"
`

func TestLoadPipelines(t *testing.T) {
	t.Run("parses_manifest", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml": sampleManifest,
		})

		specs, err := config.LoadPipelines(env.Path("pipelines.toml"))
		require.NoError(t, err)
		require.Len(t, specs, 2)

		assert.Equal(t, "blog images", specs[0].Name)
		assert.Equal(t, ".", specs[0].BaseDir)
		assert.Equal(t, []string{"OP_COPY"}, specs[0].Ops)

		assert.Equal(t, "/sass", specs[1].BaseDir)
		assert.Len(t, specs[1].Ops, 2)
		assert.Equal(t, "/sass/**/*.scss", specs[1].Autorun)
	})

	t.Run("base_dir_defaults_to_document_relative", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml": "[[pipeline]]\nglob = \"/a/*.png\"\nops = [\"OP_COPY\"]\n",
		})

		specs, err := config.LoadPipelines(env.Path("pipelines.toml"))
		require.NoError(t, err)
		assert.Equal(t, ".", specs[0].BaseDir)
	})

	t.Run("missing_glob_rejected", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml": "[[pipeline]]\nops = [\"OP_COPY\"]\n",
		})

		_, err := config.LoadPipelines(env.Path("pipelines.toml"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})

	t.Run("missing_ops_rejected", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml": "[[pipeline]]\nglob = \"/a/*.png\"\n",
		})

		_, err := config.LoadPipelines(env.Path("pipelines.toml"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})

	t.Run("missing_file", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, nil)
		_, err := config.LoadPipelines(env.Path("pipelines.toml"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})
}

func TestBuildRegistry(t *testing.T) {
	t.Run("registers_and_freezes", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"pipelines.toml": sampleManifest,
		})
		specs, err := config.LoadPipelines(env.Path("pipelines.toml"))
		require.NoError(t, err)

		registry, err := config.BuildRegistry(specs)
		require.NoError(t, err)
		assert.Equal(t, 2, registry.Len())
		assert.True(t, registry.Frozen())

		matches := registry.FindMatches("/blog/x/y.png")
		require.Len(t, matches, 1)
		assert.Equal(t, "blog images", matches[0].Name)
	})

	t.Run("registration_order_follows_manifest_order", func(t *testing.T) {
		registry, err := config.BuildRegistry([]config.PipelineSpec{
			{Name: "first", BaseDir: ".", Glob: "/img/*.png", Ops: []string{"OP_COPY"}},
			{Name: "second", BaseDir: ".", Glob: "/img/*.p?g", Ops: []string{"OP_COPY"}},
		})
		require.NoError(t, err)

		matches := registry.FindMatches("/img/logo.png")
		require.Len(t, matches, 2)
		assert.Equal(t, "first", matches[0].Name, "equal specificity: earliest manifest entry wins")
	})

	t.Run("invalid_operation_symbol", func(t *testing.T) {
		_, err := config.BuildRegistry([]config.PipelineSpec{
			{Name: "bad", BaseDir: ".", Glob: "/a/*.png", Ops: []string{"OP_EXPLODE"}},
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrOpInvalid))
	})

	t.Run("invalid_glob", func(t *testing.T) {
		_, err := config.BuildRegistry([]config.PipelineSpec{
			{Name: "bad", BaseDir: ".", Glob: "a/*.png", Ops: []string{"OP_COPY"}},
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrGlobNotAbsolute))
	})

	t.Run("rule_ids_are_sequential", func(t *testing.T) {
		registry, err := config.BuildRegistry([]config.PipelineSpec{
			{BaseDir: ".", Glob: "/a/*.png", Ops: []string{"OP_COPY"}},
			{BaseDir: ".", Glob: "/b/*.png", Ops: []string{"OP_COPY"}},
		})
		require.NoError(t, err)

		all := registry.Rules()
		require.Len(t, all, 2)
		assert.Equal(t, rules.RuleID(0), all[0].ID)
		assert.Equal(t, rules.RuleID(1), all[1].ID)
	})
}
