package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"relgraph/internal/config"
	"relgraph/internal/joins"
	"relgraph/internal/logging"
	"relgraph/internal/schema"

	"github.com/spf13/pflag"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

const usage = `usage: relgraph <command> [flags]

commands:
  explain        Print the join chain for a cross-table search path
                 (requires --from and --path)
  check-indexes  Report fields the configured search paths need indexed
`

func main() {
	if err := run(); err != nil {
		slog.Error("relgraph error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	pflag.Bool("version", false, "Print version and exit")
	pflag.String("from", "", "Root entity type for explain")
	pflag.String("path", "", "Dotted search path for explain (e.g. companies.name)")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("relgraph %s (%s)\n", Version, Commit)
		return nil
	}

	validationResult := cfg.Validate()
	for _, warn := range validationResult.Warnings {
		slog.Warn("configuration warning",
			slog.String("field", warn.Field),
			slog.String("message", warn.Message),
			slog.String("hint", warn.Hint),
		)
	}
	if validationResult.HasErrors() {
		for _, err := range validationResult.Errors {
			slog.Error("configuration error",
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.String("hint", err.Hint),
			)
		}
		return fmt.Errorf("configuration validation failed")
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	catalog, err := schema.Load(cfg.Schema.Path)
	if err != nil {
		return fmt.Errorf("failed to load relationship schema: %w", err)
	}
	logger.Debug("relationship schema loaded",
		"path", cfg.Schema.Path,
		"entities", len(catalog.EntityNames()),
	)

	args := pflag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "explain":
		return runExplain(catalog)
	case "check-indexes":
		return runCheckIndexes(cfg, catalog)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// runExplain resolves one search path and prints the join chain it produces,
// so schema authors can inspect aliases and conditions before shipping a
// search configuration.
func runExplain(catalog *schema.Catalog) error {
	from, _ := pflag.CommandLine.GetString("from")
	path, _ := pflag.CommandLine.GetString("path")
	if from == "" || path == "" {
		return fmt.Errorf("explain requires --from and --path")
	}

	resolver := joins.NewResolver(catalog)
	plan, err := resolver.ResolveJoinChain(from, path)
	if err != nil {
		return err
	}

	fmt.Printf("root: %s (table %s)\n", plan.RootType, plan.RootTable)
	for i, step := range plan.Steps {
		join := "JOIN"
		if step.ToMany {
			join = "JOIN (to-many)"
		}
		fmt.Printf("step %d: %s %s AS %s ON %s\n", i+1, join, step.TargetTable, step.Alias, step.Condition)
	}
	fmt.Printf("filter: %s.%s (%s)\n", plan.TargetAlias, plan.TargetField, plan.TargetType)
	return nil
}

// runCheckIndexes scans the configured search paths per entity and reports
// every field that needs indexed: true in the schema document.
func runCheckIndexes(cfg *config.Config, catalog *schema.Catalog) error {
	if len(cfg.Search) == 0 {
		fmt.Println("no search paths configured")
		return nil
	}

	resolver := joins.NewResolver(catalog)
	entities := make([]string, 0, len(cfg.Search))
	for name := range cfg.Search {
		entities = append(entities, name)
	}
	sort.Strings(entities)

	missing := 0
	for _, entity := range entities {
		reqs := resolver.RequiredIndexes(entity, cfg.Search[entity])
		for _, req := range reqs {
			missing++
			fmt.Printf("%s.%s: %s\n", req.Type, req.Field, req.Reason)
		}
	}
	if missing == 0 {
		fmt.Println("all search paths are backed by indexed fields")
		return nil
	}
	return fmt.Errorf("%d field(s) need indexed: true", missing)
}
