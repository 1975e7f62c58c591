package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tordrt/kgschema"
	"github.com/tordrt/kgschema/internal/config"
	"github.com/tordrt/kgschema/internal/db"
	"github.com/tordrt/kgschema/internal/formatter"
	"github.com/tordrt/kgschema/internal/history"
	"github.com/tordrt/kgschema/internal/logging"
)

type options struct {
	configPath   string
	dryRun       bool
	noIntrospect bool
	format       string
	exclude      string
	outputDir    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "kgschema",
		Short:         "Keep a MySQL schema in sync with a knowledge graph",
		Long:          `kgschema reads SHACL shaped JSON-LD knowledge, compares the tables it describes with a live MySQL database and writes the DDL statements needed to bring the database in line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Project configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.exclude, "exclude", "", "Tables to ignore (comma-separated, added to exclude_tables)")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Write a migration file for the differences between knowledge and database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	syncCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the statements instead of writing a migration file")
	syncCmd.Flags().BoolVar(&opts.noIntrospect, "no-introspect", false, "Diff against an empty database (bootstrap)")
	syncCmd.Flags().StringVarP(&opts.format, "format", "f", formatter.FormatSQL, "Dry run output format: sql or markdown")

	knowledgeCmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Generate knowledge files from the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKnowledge(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	knowledgeCmd.Flags().StringVarP(&opts.outputDir, "output-dir", "d", "", "Output directory (default: knowledge.output_dir)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List generated migration files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(syncCmd, knowledgeCmd, historyCmd)
	return rootCmd
}

// parseTableList splits a comma-separated table list
func parseTableList(tables string) []string {
	if tables == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(tables, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func setup(opts *options) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.Database.ExcludeTables = append(cfg.Database.ExcludeTables, parseTableList(opts.exclude)...)

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// connect opens the configured database and returns its extractor
func connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*db.MySQLExtractor, *db.MySQLClient, error) {
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, nil, err
	}
	name, err := db.DatabaseName(dsn)
	if err != nil {
		return nil, nil, err
	}

	client, err := db.NewMySQLClient(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return db.NewMySQLExtractor(client, name, logger), client, nil
}

func closeClient(client *db.MySQLClient) {
	if err := client.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close MySQL connection: %v\n", err)
	}
}

func runSync(ctx context.Context, opts *options, out io.Writer) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Validate the format before doing any work
	var f formatter.Formatter
	if opts.dryRun {
		if f, err = formatter.New(opts.format, out); err != nil {
			return err
		}
	}

	g, err := kgschema.LoadGraph(cfg.Path(cfg.Knowledge.MergedFile), cfg.Knowledge.Namespaces)
	if err != nil {
		return err
	}

	var introspector kgschema.Introspector
	if !opts.noIntrospect {
		extractor, client, err := connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeClient(client)
		introspector = extractor
	}

	runner := kgschema.NewRunner(introspector, &kgschema.Options{
		ExcludeTables: cfg.Database.ExcludeTables,
		Logger:        logger,
	})

	if opts.dryRun {
		plan, err := runner.Plan(ctx, g)
		if err != nil {
			return err
		}
		return f.Format(plan)
	}

	store, err := history.Open(ctx, cfg.Path(cfg.Migrations.History))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	res, err := runner.Sync(ctx, g, formatter.NewMigrationWriter(cfg.Path(cfg.Migrations.Folder)), store)
	if err != nil {
		return err
	}

	if res.File == "" {
		_, _ = fmt.Fprintln(out, "No changes detected.")
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s (%d statements)\n", res.File, res.Plan.Len())
	return nil
}

func runKnowledge(ctx context.Context, opts *options, out io.Writer) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Knowledge.Prefix == "" || cfg.Knowledge.PrefixURI == "" {
		return fmt.Errorf("%w: knowledge.prefix and knowledge.prefix_uri are required", config.ErrMissingConfig)
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.Path(cfg.Knowledge.OutputDir)
	}

	extractor, client, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient(client)

	runner := kgschema.NewRunner(extractor, &kgschema.Options{
		ExcludeTables: cfg.Database.ExcludeTables,
		Logger:        logger,
	})
	written, err := runner.GenerateKnowledge(ctx, cfg.Knowledge.Prefix, cfg.Knowledge.PrefixURI, outputDir)
	if err != nil {
		return err
	}

	for _, path := range written {
		_, _ = fmt.Fprintln(out, path)
	}
	return nil
}

func runHistory(ctx context.Context, opts *options, out io.Writer) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := history.Open(ctx, cfg.Path(cfg.Migrations.History))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No migrations recorded.")
		return nil
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(out, "%d\t%s\t%s\t%d\t%s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.File, e.Statements, e.Checksum[:12])
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
