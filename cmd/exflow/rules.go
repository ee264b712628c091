package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"exflow/internal/config"
	"exflow/internal/diag"
	"exflow/internal/output"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules and whether the current configuration enables them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		settings := config.NewSettings(cfg.Prefix, cfg.Source())

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		w := cmd.OutOrStdout()
		for _, r := range diag.Rules {
			state := green("enabled")
			if !settings.RuleEnabled(r) {
				state = gray("disabled")
			}
			fmt.Fprintf(w, "%s  %-10s %-8s %s\n", r.ID, r.Severity, state, r.Title)
			fmt.Fprintf(w, "        %s\n", gray(settings.Prefix+"_enable_"+r.Name))
		}
		return nil
	},
}

var fromFile string

func init() {
	showCmd.Flags().StringVar(&fromFile, "from", "", "Re-render a report saved with --format json or msgpack instead of reading the database")
}

var showCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the findings of the latest stored run for path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		if fromFile != "" {
			report, err := readReport(fromFile)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, *report)
		}

		store, err := initStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if store == nil {
			return fmt.Errorf("no findings database configured (use --db)")
		}
		defer store.Close()

		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		root, err = filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", root, err)
		}

		ctx := cmd.Context()
		run, err := store.LatestRun(ctx, root)
		if err != nil {
			return err
		}
		findings, err := store.Findings(ctx, run.ID)
		if err != nil {
			return err
		}
		return output.Write(cmd.OutOrStdout(), format, output.Report{
			RunID:    run.ID.String(),
			Root:     run.Root,
			Files:    run.Files,
			Units:    run.Units,
			Findings: findings,
		})
	},
}

// readReport decodes a saved report; the extension picks the encoding.
func readReport(path string) (*output.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	format := output.JSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		format = output.Msgpack
	}
	return output.Read(f, format)
}
