package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/stratalign/stratalign/export"
	"github.com/stratalign/stratalign/gap"
	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/publish"
	"github.com/stratalign/stratalign/scoring"
	"github.com/stratalign/stratalign/validation"
)

// catalog builds the schema catalog, honoring a configured
// reference-goal override file.
func (a *appContext) catalog() (*graph.Catalog, error) {
	if a.cfg.Catalog.GoalsFile == "" {
		return graph.NewCatalog(), nil
	}
	goals, err := graph.LoadReferenceGoals(a.cfg.Catalog.GoalsFile)
	if err != nil {
		return nil, err
	}
	return graph.NewCatalogWithGoals(goals), nil
}

// loadStore reads one serialized graph file into a fresh store.
func (a *appContext) loadStore(path string) (*graph.Store, error) {
	catalog, err := a.catalog()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	store, err := graph.LoadStore(catalog, data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return store, nil
}

// resolveFiles expands command arguments to graph files. With no
// arguments the configured snapshot glob is used.
func (a *appContext) resolveFiles(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	matches, err := doublestar.Glob(os.DirFS(a.cfg.Snapshots.Dir), a.cfg.Snapshots.Pattern)
	if err != nil {
		return nil, fmt.Errorf("glob snapshots: %w", err)
	}
	sort.Strings(matches)
	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(a.cfg.Snapshots.Dir, m)
	}
	return files, nil
}

func (a *appContext) publisher() (*publish.Publisher, error) {
	if a.cfg.NATS.URL == "" {
		return nil, nil
	}
	return publish.Connect(a.cfg.NATS.URL, a.cfg.NATS.SubjectPrefix)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func validateCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate graph files against the schema",
		Long: `Validate loads each graph file, captures a snapshot, and checks every
entity against its declared shape. Without file arguments the configured
snapshot glob is used. The command fails if any file has violations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := app.resolveFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no graph files matched")
			}

			var invalid int
			for _, path := range files {
				store, err := app.loadStore(path)
				if err != nil {
					return err
				}
				report := validation.NewValidator(store.Catalog()).ValidateStore(store)
				fmt.Printf("%s: %d entities, %d violations\n", path, report.Entities, len(report.Violations))
				for _, v := range report.Violations {
					fmt.Printf("  %s [%s] %s\n", v.Resource, v.Rule, v.Detail)
				}
				if !report.Valid() {
					invalid++
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d files failed validation", invalid, len(files))
			}
			return nil
		},
	}
}

func scoreCmd(app *appContext) *cobra.Command {
	var publishScores bool

	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Compute alignment metrics for a graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.loadStore(args[0])
			if err != nil {
				return err
			}
			report := scoring.NewEngine(store).Compute()
			if err := printJSON(report); err != nil {
				return err
			}

			if publishScores {
				pub, err := app.publisher()
				if err != nil {
					return err
				}
				defer pub.Close()
				if err := pub.PublishScores(cmd.Context(), report); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&publishScores, "publish", false, "Publish the report to NATS")
	return cmd
}

// analysis is the combined gap-analysis output.
type analysis struct {
	OrphanObjectives       []graph.Resource   `json:"orphan_objectives"`
	OrphanTaskGroups       []graph.Resource   `json:"orphan_task_groups"`
	UnbalancedPerspectives []graph.Resource   `json:"unbalanced_perspectives"`
	ExecutionGaps          []gap.ExecutionGap `json:"execution_gaps"`
	Misalignments          []gap.Misalignment `json:"misalignments"`
	ChainGaps              []gap.ChainGap     `json:"chain_gaps"`
}

func analyzeCmd(app *appContext) *cobra.Command {
	var writeDerived bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run gap analysis on a graph file",
		Long: `Analyze detects orphan objectives and task groups, perspectives with no
objectives, importance/allocation execution gaps, resourcing
misalignments, and breaks in the perspective causal chain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.loadStore(args[0])
			if err != nil {
				return err
			}
			analyzer := gap.NewAnalyzer(store)

			var out analysis
			if out.OrphanObjectives, err = analyzer.OrphanObjectives(); err != nil {
				return err
			}
			if out.OrphanTaskGroups, err = analyzer.OrphanTaskGroups(); err != nil {
				return err
			}
			out.UnbalancedPerspectives = analyzer.UnbalancedPerspectives()
			out.ExecutionGaps = analyzer.ExecutionGaps()
			out.Misalignments = analyzer.Misalignments()
			out.ChainGaps = analyzer.ChainGaps()

			if writeDerived {
				if err := analyzer.WriteDerived(); err != nil {
					return err
				}
				data, err := store.Serialize()
				if err != nil {
					return err
				}
				target := outPath
				if target == "" {
					target = args[0]
				}
				if err := os.WriteFile(target, data, 0644); err != nil {
					return fmt.Errorf("write graph file: %w", err)
				}
			}
			return printJSON(out)
		},
	}
	cmd.Flags().BoolVar(&writeDerived, "write-derived", false, "Write orphan and gap-severity facts back into the graph file")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path for the rewritten graph (default: in place)")
	return cmd
}

func exportCmd(app *appContext) *cobra.Command {
	var formatName string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a graph file as a node/edge list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			store, err := app.loadStore(args[0])
			if err != nil {
				return err
			}
			data, err := export.FromSnapshot(store.Snapshot()).Render(format)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(outPath, data, 0644)
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "json", "Export format (json, dot)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (default: stdout)")
	return cmd
}

func watchCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the snapshot directory and validate on change",
		Long: `Watch monitors the configured snapshot directory. Whenever a matching
graph file is written it is reloaded, validated, and scored, and the
results are logged (and published when NATS is configured).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()
			if err := watcher.Add(app.cfg.Snapshots.Dir); err != nil {
				return fmt.Errorf("watch %s: %w", app.cfg.Snapshots.Dir, err)
			}

			pub, err := app.publisher()
			if err != nil {
				return err
			}
			defer pub.Close()

			slog.Info("watching snapshot directory", "dir", app.cfg.Snapshots.Dir, "pattern", app.cfg.Snapshots.Pattern)
			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					slog.Error("watch error", "error", err)
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}
					rel, err := filepath.Rel(app.cfg.Snapshots.Dir, event.Name)
					if err != nil {
						continue
					}
					if ok, _ := doublestar.Match(app.cfg.Snapshots.Pattern, filepath.ToSlash(rel)); !ok {
						continue
					}
					app.handleChange(ctx, event.Name, pub)
				}
			}
		},
	}
}

// handleChange validates and scores one changed graph file. Failures
// are logged, never fatal to the watch loop.
func (a *appContext) handleChange(ctx context.Context, path string, pub *publish.Publisher) {
	store, err := a.loadStore(path)
	if err != nil {
		slog.Error("reload failed", "file", path, "error", err)
		return
	}
	report := validation.NewValidator(store.Catalog()).ValidateStore(store)
	scores := scoring.NewEngine(store).Compute()
	slog.Info("graph file changed",
		"file", path,
		"violations", len(report.Violations),
		"overall", fmt.Sprintf("%.1f", scores.Overall))

	if err := pub.PublishValidation(ctx, report); err != nil {
		slog.Warn("validation publish failed", "error", err)
	}
	if err := pub.PublishScores(ctx, scores); err != nil {
		slog.Warn("score publish failed", "error", err)
	}
}
