// Test Type: Unit Test
// Description: Tests for the executor package - builtin copy, shell chains, fail-fast, cleanup

package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/executor"
	"github.com/arthur-debert/pylon/pkg/paths"
	"github.com/arthur-debert/pylon/pkg/rules"
	"github.com/arthur-debert/pylon/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRule(t *testing.T, baseDir, targetGlob string, opSpecs ...string) *rules.Rule {
	t.Helper()
	ops, err := rules.ParseOperations(opSpecs)
	require.NoError(t, err)
	rule, err := rules.NewRule("", baseDir, targetGlob, ops, "")
	require.NoError(t, err)
	return &rule
}

func resolve(t *testing.T, env *testutil.SiteEnv, rule *rules.Rule, uri string, doc *paths.DocumentRef) *paths.ResolutionContext {
	t.Helper()
	ctx, err := paths.NewResolver(env.Paths).Resolve(rule, uri, doc)
	require.NoError(t, err)
	return ctx
}

func TestRun_Copy(t *testing.T) {
	t.Run("copies_bytes_and_creates_parents", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"content/blog/x/page.md": "# page",
			"content/blog/x/y.png":   "png-bytes",
		})
		rule := newRule(t, ".", "/blog/**/*.png", "OP_COPY")
		rctx := resolve(t, env, rule, "/blog/x/y.png", env.Document("content/blog/x/page.md"))

		exec := executor.New(executor.Options{})
		require.NoError(t, exec.Run(context.Background(), rctx, rule))

		assert.Equal(t, "png-bytes", env.ReadFile("public/blog/x/y.png"))
	})

	t.Run("running_twice_is_idempotent", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"content/page.md": "# page",
			"content/a.txt":   "data",
		})
		rule := newRule(t, ".", "/*.txt", "OP_COPY")
		exec := executor.New(executor.Options{})

		for i := 0; i < 2; i++ {
			rctx := resolve(t, env, rule, "/a.txt", env.Document("content/page.md"))
			require.NoError(t, exec.Run(context.Background(), rctx, rule))
		}
		assert.Equal(t, "data", env.ReadFile("public/a.txt"))
	})

	t.Run("missing_source_fails", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"content/page.md": "# page",
		})
		rule := newRule(t, ".", "/*.txt", "OP_COPY")
		rctx := resolve(t, env, rule, "/missing.txt", env.Document("content/page.md"))

		exec := executor.New(executor.Options{})
		err := exec.Run(context.Background(), rctx, rule)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSourceMissing))
		assert.Empty(t, env.ScratchEntries(), "scratch must be cleaned up on failure")
	})
}

func TestRun_Shell(t *testing.T) {
	t.Run("token_substitution_and_direct_target_write", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"test.txt": "old",
		})
		rule := newRule(t, "/", "/*.txt", "sed 's/old/new/g' $SOURCE > $TARGET")
		rctx := resolve(t, env, rule, "/test.txt", nil)

		exec := executor.New(executor.Options{})
		require.NoError(t, exec.Run(context.Background(), rctx, rule))
		assert.Equal(t, "new", env.ReadFile("public/test.txt"))
	})

	t.Run("scratch_file_is_stable_across_chain", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"img/logo.svg": "fill=COLOR more",
		})
		rule := newRule(t, "/img", "/static/img/*.svg",
			"sed 's/COLOR/red/' $SOURCE > $SCRATCH",
			"tr -d ' ' < $SCRATCH > $TARGET")
		rctx := resolve(t, env, rule, "/static/img/logo.svg", nil)
		scratchDir := rctx.ScratchDir

		exec := executor.New(executor.Options{})
		require.NoError(t, exec.Run(context.Background(), rctx, rule))

		assert.Equal(t, "fill=redmore", env.ReadFile("public/static/img/logo.svg"))
		assert.NoDirExists(t, scratchDir, "scratch dir must be removed after the run")
		assert.Empty(t, env.ScratchEntries())
	})

	t.Run("fail_fast_reports_failing_position", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, map[string]string{
			"content/page.md": "# page",
			"content/a.css":   "body{}",
		})
		rule := newRule(t, ".", "/*.css",
			"cat $SOURCE > $SCRATCH",
			"echo boom >&2; exit 3",
			"cp $SCRATCH $TARGET")
		rctx := resolve(t, env, rule, "/a.css", env.Document("content/page.md"))

		exec := executor.New(executor.Options{})
		err := exec.Run(context.Background(), rctx, rule)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrShellExit))

		details := errors.GetErrorDetails(err)
		assert.Equal(t, 2, details["commandIndex"])
		assert.Equal(t, 3, details["exitCode"])
		assert.Equal(t, "boom", details["stderr"])

		// The third command never ran
		assert.False(t, env.Exists("public/a.css"))
		assert.Empty(t, env.ScratchEntries())
	})

	t.Run("unknown_dollar_tokens_pass_through", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, nil)
		rule := newRule(t, "/", "/greeting.txt", `MSG=hello; printf '%s' "$MSG" > $TARGET`)
		rctx := resolve(t, env, rule, "/greeting.txt", nil)

		exec := executor.New(executor.Options{})
		require.NoError(t, exec.Run(context.Background(), rctx, rule))
		assert.Equal(t, "hello", env.ReadFile("public/greeting.txt"))
	})

	t.Run("target_not_produced_is_an_error", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, nil)
		rule := newRule(t, "/", "/a.txt", "true")
		rctx := resolve(t, env, rule, "/a.txt", nil)

		exec := executor.New(executor.Options{})
		err := exec.Run(context.Background(), rctx, rule)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrTargetNotProduced))
		assert.Empty(t, env.ScratchEntries())
	})

	t.Run("timeout_is_fatal_and_cleans_up", func(t *testing.T) {
		env := testutil.NewSiteEnv(t, nil)
		rule := newRule(t, "/", "/a.txt", "sleep 5; echo done > $TARGET")
		rctx := resolve(t, env, rule, "/a.txt", nil)

		exec := executor.New(executor.Options{Timeout: 50 * time.Millisecond})
		err := exec.Run(context.Background(), rctx, rule)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrTimeout))
		assert.Equal(t, 1, errors.GetErrorDetails(err)["commandIndex"])
		assert.Empty(t, env.ScratchEntries())
	})
}
