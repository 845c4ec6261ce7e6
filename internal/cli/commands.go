// Package cli wires the pylon commands: loading configuration, building
// the rule registry, and driving the pipeline engine.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pylon/internal/version"
	"github.com/arthur-debert/pylon/pkg/config"
	"github.com/arthur-debert/pylon/pkg/executor"
	"github.com/arthur-debert/pylon/pkg/logging"
	"github.com/arthur-debert/pylon/pkg/paths"
	"github.com/arthur-debert/pylon/pkg/pipeline"
	"github.com/arthur-debert/pylon/pkg/rules"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity   int
		projectRoot string
	)

	rootCmd := &cobra.Command{
		Use:   "pylon",
		Short: "An asset pipeline engine for static sites",
		Long: `pylon resolves asset references discovered during a site render
against registered pipeline rules and produces the assets: copying
them into the output tree or running shell pipelines over them.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "root", "r", ".", "Project root directory")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newBuildCmd(&projectRoot))
	rootCmd.AddCommand(newAssetCmd(&projectRoot))
	rootCmd.AddCommand(newPipelinesCmd(&projectRoot))

	return rootCmd
}

// engine bundles everything a command needs to produce assets
type engine struct {
	cfg      *config.Config
	paths    *paths.Paths
	registry *rules.Registry
	service  *pipeline.Service
}

// loadEngine builds the full pipeline stack for a project root
func loadEngine(projectRoot string) (*engine, error) {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	scratch := cfg.ScratchDir
	if scratch != "" && !filepath.IsAbs(scratch) {
		scratch = filepath.Join(projectRoot, scratch)
	}
	p, err := paths.New(paths.Options{
		ProjectRoot: projectRoot,
		SrcDir:      cfg.SrcDir,
		OutputDir:   cfg.OutputDir,
		ScratchRoot: scratch,
	})
	if err != nil {
		return nil, err
	}

	manifestPath := cfg.PipelinesFile
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(p.ProjectRoot(), manifestPath)
	}
	specs, err := config.LoadPipelines(manifestPath)
	if err != nil {
		return nil, err
	}
	registry, err := config.BuildRegistry(specs)
	if err != nil {
		return nil, err
	}

	service := pipeline.NewService(
		registry,
		paths.NewResolver(p),
		executor.New(executor.Options{Timeout: cfg.Timeout}),
	)

	return &engine{cfg: cfg, paths: p, registry: registry, service: service}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pylon version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

func newBuildCmd(projectRoot *string) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Produce every asset listed in an asset manifest",
		Long: `Build reads the asset manifest the renderer emitted, resolves each
asset reference against the registered pipeline rules, and runs the
winning rule's operations. Independent assets run concurrently;
individual failures do not stop the remaining assets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.build")

			eng, err := loadEngine(*projectRoot)
			if err != nil {
				return err
			}

			path := manifestPath
			if !filepath.IsAbs(path) {
				path = filepath.Join(eng.paths.ProjectRoot(), path)
			}
			manifest, err := pipeline.LoadManifest(path)
			if err != nil {
				return err
			}
			requests := manifest.Requests(eng.paths)

			logger.Info().
				Int("assets", len(requests)).
				Int("workers", eng.cfg.Workers).
				Msg("Starting asset build")

			runner := pipeline.NewRunner(eng.service, eng.cfg.Workers)
			results := runner.Run(cmd.Context(), requests)

			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", res.Request.URI, res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s)\n", res.Request.URI, res.Asset.Rule)
			}

			if failures := pipeline.FailureCount(results); failures > 0 {
				return fmt.Errorf("%d of %d assets failed", failures, len(results))
			}
			logger.Info().Int("assets", len(results)).Msg("Asset build finished")
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "assets.yaml", "Asset manifest emitted by the renderer")
	return cmd
}

func newAssetCmd(projectRoot *string) *cobra.Command {
	var document string

	cmd := &cobra.Command{
		Use:   "asset URI",
		Short: "Produce a single asset",
		Long: `Asset resolves one asset URI against the registered pipeline rules
and runs the winning rule. Pass --document when the reference came
from a source document, so document-relative rules can resolve.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(*projectRoot)
			if err != nil {
				return err
			}

			var doc *paths.DocumentRef
			if document != "" {
				docPath := document
				if !filepath.IsAbs(docPath) {
					docPath = filepath.Join(eng.paths.ProjectRoot(), docPath)
				}
				doc = &paths.DocumentRef{Path: docPath}
			}

			asset, err := eng.service.ResolveAndRun(cmd.Context(), args[0], doc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s)\n", args[0], asset.Rule)
			return nil
		},
	}

	cmd.Flags().StringVarP(&document, "document", "d", "", "Referencing document, relative to the project root")
	return cmd
}

func newPipelinesCmd(projectRoot *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List the registered pipeline rules",
		Long: `Pipelines prints every registered rule with its target glob,
working directory, operation count, and specificity, in the order
rules are consulted during resolution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(*projectRoot)
			if err != nil {
				return err
			}
			return renderPipelines(cmd.OutOrStdout(), eng.registry.Rules())
		},
	}
}

func init() {
	initTemplateFormatting()
}

// Run executes the root command; exit status 1 on any error
func Run() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
