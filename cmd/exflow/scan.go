package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"exflow/internal/analyzer"
	"exflow/internal/config"
	"exflow/internal/crawler"
	"exflow/internal/diag"
	"exflow/internal/git"
	"exflow/internal/output"
	"exflow/internal/storage"

	"github.com/spf13/cobra"
)

var (
	formatFlag   string
	minSeverity  string
	sinceRef     string
	workersFlag  int
	failOnFlag   string
	excludeFlags []string
)

func init() {
	scanCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: text, json or msgpack")
	scanCmd.Flags().StringVar(&minSeverity, "min-severity", "", "Lowest severity to report: hidden, suggestion, warning, error")
	scanCmd.Flags().StringVar(&sinceRef, "since", "", "Only report findings on lines changed since this git ref")
	scanCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Number of parallel workers (default: one per CPU)")
	scanCmd.Flags().StringVar(&failOnFlag, "fail-on", "error", "Exit non-zero when a finding of this severity or above is reported; empty disables")
	scanCmd.Flags().StringSliceVar(&excludeFlags, "exclude", nil, "Directory names to skip")
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Analyze the C# files under path and report exception-flow findings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyScanFlags(cfg)

		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		root, err = filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", root, err)
		}

		format, err := output.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		floor, err := diag.ParseSeverity(cfg.Output.MinSeverity)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := analyzer.New(analyzer.Options{
			Settings:   config.NewSettings(cfg.Prefix, cfg.Source()),
			BroadTypes: cfg.Analysis.BroadTypes,
			Workers:    cfg.Analysis.Workers,
		})
		if err != nil {
			return err
		}

		progress("📂 Scanning directory: %s\n", root)
		files, err := crawler.NewCrawler(a.Extensions(), cfg.Project.Exclude...).Files(root)
		if err != nil {
			return fmt.Errorf("failed to scan project: %w", err)
		}
		progress("🔍 Analyzing %d file(s)...\n", len(files))

		started := time.Now()
		res, err := a.AnalyzeFiles(ctx, files)
		if err != nil {
			if res == nil {
				return err
			}
			log.Printf("⚠️ %v; reporting partial results", err)
		}

		progress("🧩 %d type(s) declared, %d code unit(s) analyzed\n", res.Types, res.Units)

		bag := diag.NewBag()
		bag.Add(res.Diagnostics...)
		if sinceRef != "" {
			changes, err := git.GetChangedFiles(ctx, root, sinceRef)
			if err != nil {
				return err
			}
			bag.Filter(git.NewFilter(git.TopLevel(ctx, root), changes).Keep)
			progress("🧮 %d finding(s) on lines changed since %s\n", bag.Len(), sinceRef)
		}

		if err := persist(ctx, cfg, root, started, res, bag.Items()); err != nil {
			return err
		}
		failErr := checkFailOn(bag)

		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= floor })
		report := output.Report{
			RunID:    res.RunID.String(),
			Root:     root,
			Files:    res.Files,
			Units:    res.Units,
			Findings: bag.Items(),
		}
		if err := output.Write(cmd.OutOrStdout(), format, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		progress("✅ Done in %s\n", time.Since(started).Round(time.Millisecond))

		return failErr
	},
}

func applyScanFlags(cfg *config.Config) {
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if minSeverity != "" {
		cfg.Output.MinSeverity = minSeverity
	}
	if workersFlag > 0 {
		cfg.Analysis.Workers = workersFlag
	}
	cfg.Project.Exclude = append(cfg.Project.Exclude, excludeFlags...)
}

func persist(ctx context.Context, cfg *config.Config, root string, started time.Time, res *analyzer.Result, findings []diag.Diagnostic) error {
	store, err := initStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if store == nil {
		return nil
	}
	defer store.Close()

	run := storage.Run{ID: res.RunID, Root: root, StartedAt: started, Files: res.Files, Units: res.Units}
	if err := store.SaveRun(ctx, run, findings); err != nil {
		return fmt.Errorf("failed to save findings: %w", err)
	}
	progress("💾 Saved run %s to %s\n", run.ID, cfg.Store.Path)
	return nil
}

func checkFailOn(bag *diag.Bag) error {
	if failOnFlag == "" {
		return nil
	}
	threshold, err := diag.ParseSeverity(failOnFlag)
	if err != nil {
		return err
	}
	if n := bag.Count(threshold); n > 0 {
		return fmt.Errorf("%d finding(s) at or above %s", n, threshold)
	}
	return nil
}

// progress writes status lines to stderr so stdout carries only the report.
func progress(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
