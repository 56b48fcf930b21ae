package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/dgallion1/casesheet/internal/analyze"
	"github.com/dgallion1/casesheet/internal/casesheet"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize FILE...",
	Short: "Summarize one or more case sheets",
	Long: `Summarize prints the summary of each file and writes it next to the input
as <name>_summary.txt. A file that fails is reported on stderr and the
command exits non-zero after processing the rest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().Bool("no-write", false, "print only, do not write <name>_summary.txt")
	summarizeCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	summarizeCmd.Flags().String("summarizer", "", "summarizer: lead, rank, or remote (overrides config)")
	summarizeCmd.Flags().String("rules", "", "YAML rules file (overrides config)")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	noWrite, _ := cmd.Flags().GetBool("no-write")
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q (want text, json, or yaml)", format)
	}

	a, err := buildAnalyzer(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for i, path := range args {
		report, err := summarizeFile(cmd, a, path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}
		if len(args) > 1 && format == "text" {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "=== %s ===\n", path)
		}
		if err := writeReport(out, report, format); err != nil {
			return err
		}
		if !noWrite {
			dest := summaryPath(path)
			if err := os.WriteFile(dest, []byte(report.Format()), 0o644); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: write summary: %v\n", path, err)
				failed++
				continue
			}
			logger.Info("summary written", "path", dest)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func buildAnalyzer(cmd *cobra.Command) (*analyze.Analyzer, error) {
	c := cfg
	if s, _ := cmd.Flags().GetString("summarizer"); s != "" {
		c.Summarizer = strings.ToLower(s)
	}
	if r, _ := cmd.Flags().GetString("rules"); r != "" {
		c.RulesPath = r
	}
	return analyze.FromConfig(c, nil, nil, logger)
}

func summarizeFile(cmd *cobra.Command, a *analyze.Analyzer, path string) (*casesheet.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(cmd.Context(), filepath.Base(path), data)
}

func writeReport(w io.Writer, r *casesheet.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, r.Format())
		return err
	}
}

// summaryPath maps notes/visit.pdf to notes/visit_summary.txt.
func summaryPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "_summary.txt"
}
