package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections FILE",
	Short: "Print the filtered sections of a case sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildAnalyzer(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		sections, err := a.Sections(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range sections.List() {
			fmt.Fprintf(out, "[%s]\n%s\n\n", s.Name, s.Content)
		}
		return nil
	},
}

func init() {
	sectionsCmd.Flags().String("rules", "", "YAML rules file (overrides config)")
	rootCmd.AddCommand(sectionsCmd)
}
