// Package kgschema keeps a MySQL schema in sync with a knowledge graph.
//
// The knowledge graph is a JSON-LD document describing classes with SHACL
// NodeShapes. Every class marked with dwm:isStoredInDatabase "true" becomes a
// table; its property shapes become columns, keys, foreign keys and indexes.
// kgschema compares that expected schema with the live database and produces
// the ordered DDL statements that turn one into the other. It never executes
// them: statements are written to a timestamped migration file for review.
//
// # Quick Start
//
//	client, err := db.NewMySQLClient(ctx, dsn)
//	...
//	runner := kgschema.NewRunner(db.NewMySQLExtractor(client, "shop", logger), &kgschema.Options{Logger: logger})
//	g, err := kgschema.LoadGraph("knowledge/merged.jsonld", nil)
//	...
//	res, err := runner.Sync(ctx, g, formatter.NewMigrationWriter("migrations"), nil)
//
// # Bootstrap
//
// A Runner without an Introspector diffs against an empty database, which
// yields CREATE TABLE statements for every table.
//
// # Knowledge Regeneration
//
// GenerateKnowledge goes the other way: it reads the live tables and writes
// one JSON-LD document per table.
package kgschema

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/tordrt/kgschema/internal/diff"
	"github.com/tordrt/kgschema/internal/formatter"
	"github.com/tordrt/kgschema/internal/history"
	"github.com/tordrt/kgschema/internal/knowledge"
	"github.com/tordrt/kgschema/internal/rdf"
	"github.com/tordrt/kgschema/internal/schema"
)

// Introspector reads the current schema of a database.
// db.MySQLExtractor is the production implementation.
type Introspector interface {
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
}

// Options configures a Runner.
//
// All fields are optional:
//   - ExcludeTables: tables removed from both the expected and the current
//     schema before diffing
//   - Logger: defaults to a no-op logger
type Options struct {
	ExcludeTables []string
	Logger        *zap.Logger
}

// Runner orchestrates one synchronization run.
type Runner struct {
	introspector  Introspector
	builder       *knowledge.Builder
	excludeTables []string
	logger        *zap.Logger
}

// SyncResult reports what a Sync run produced.
type SyncResult struct {
	Plan *diff.Result
	// File is the written migration file, "" when there were no changes.
	File string
	// History is the ledger entry of File, nil without a ledger or file.
	History *history.Entry
}

// NewRunner creates a Runner. A nil introspector selects bootstrap mode.
func NewRunner(introspector Introspector, opts *Options) *Runner {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		introspector:  introspector,
		builder:       knowledge.NewBuilder(logger),
		excludeTables: opts.ExcludeTables,
		logger:        logger,
	}
}

// LoadGraph parses the merged knowledge file at path. namespaces are bound
// in addition to the builtin prefixes, in prefix order.
func LoadGraph(path string, namespaces map[string]string) (*rdf.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge graph: %w", err)
	}

	ns := rdf.NewNamespaces()
	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		if err := ns.Register(prefix, namespaces[prefix]); err != nil {
			return nil, err
		}
	}

	g, err := rdf.ParseGraph(ns, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse knowledge graph %s: %w", path, err)
	}
	return g, nil
}

// ExpectedSchema builds the schema the knowledge graph describes.
func (r *Runner) ExpectedSchema(g *rdf.Graph) (*schema.Schema, error) {
	s, err := r.builder.Build(g)
	if err != nil {
		return nil, fmt.Errorf("failed to build expected schema: %w", err)
	}
	return s.Without(r.excludeTables...), nil
}

// CurrentSchema introspects the database, or returns an empty schema in
// bootstrap mode.
func (r *Runner) CurrentSchema(ctx context.Context) (*schema.Schema, error) {
	if r.introspector == nil {
		r.logger.Info("introspection skipped, diffing against an empty database")
		return &schema.Schema{}, nil
	}
	s, err := r.introspector.ExtractSchema(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect database: %w", err)
	}
	return s.Without(r.excludeTables...), nil
}

// Plan computes the statements that turn the database into the schema g
// describes.
func (r *Runner) Plan(ctx context.Context, g *rdf.Graph) (*diff.Result, error) {
	expected, err := r.ExpectedSchema(g)
	if err != nil {
		return nil, err
	}

	current, err := r.CurrentSchema(ctx)
	if err != nil {
		return nil, err
	}

	plan := diff.Compute(expected, current)
	r.logger.Debug("computed plan",
		zap.Int("expected_tables", len(expected.Tables)),
		zap.Int("current_tables", len(current.Tables)),
		zap.Int("statements", plan.Len()))
	return plan, nil
}

// Sync plans and writes the migration file. When store is non-nil the file
// is recorded in the ledger.
func (r *Runner) Sync(ctx context.Context, g *rdf.Graph, w *formatter.MigrationWriter, store *history.Store) (*SyncResult, error) {
	plan, err := r.Plan(ctx, g)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{Plan: plan}
	if plan.IsEmpty() {
		r.logger.Info("No changes detected.")
		return res, nil
	}

	res.File, err = w.Write(plan)
	if err != nil {
		return nil, err
	}
	r.logger.Info("wrote migration file", zap.String("file", res.File), zap.Int("statements", plan.Len()))

	if store != nil {
		entry, err := store.Record(ctx, res.File, plan.Len(), []byte(formatter.SQL(plan)))
		if err != nil {
			return nil, err
		}
		res.History = &entry
	}

	return res, nil
}

// GenerateKnowledge writes one knowledge document per database table to
// outputDir and returns the written paths.
func (r *Runner) GenerateKnowledge(ctx context.Context, prefix, prefixURI, outputDir string) ([]string, error) {
	if r.introspector == nil {
		return nil, fmt.Errorf("knowledge generation needs a database connection")
	}

	s, err := r.CurrentSchema(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := knowledge.Generate(s, prefix, prefixURI)
	if err != nil {
		return nil, err
	}

	written, err := formatter.NewMultiFileFormatter(outputDir).Format(s, docs)
	if err != nil {
		return nil, err
	}
	r.logger.Info("wrote knowledge files", zap.String("dir", outputDir), zap.Int("tables", len(docs)))
	return written, nil
}
