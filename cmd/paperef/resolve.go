// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlanSynn/paperef/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a single citation query to BibTeX",
	Long: `Resolve looks one paper up by title, year, and/or DOI. The primary lookup
goes to OpenAlex (DOI-direct first when a DOI is given); with --interactive a
Google Scholar browser session is tried when OpenAlex has nothing confident.
Outcomes are cached, including negative ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		year, _ := cmd.Flags().GetInt("year")
		doi, _ := cmd.Flags().GetString("doi")
		asJSON, _ := cmd.Flags().GetBool("json")

		q := types.Query{Title: title, Year: year, DOI: doi}
		if err := q.Validate(); err != nil {
			return err
		}

		cfg := pipelineConfig()
		applyResolveFlags(cmd, &cfg)

		r, cleanup, err := newResolver(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := r.Resolve(cmd.Context(), q)
		if err != nil {
			return err
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"status":     out.Status,
				"source":     out.Source,
				"from_cache": out.FromCache,
				"bibtex":     out.BibTeX,
			})
		}

		if out.Status != "resolved" {
			fmt.Fprintf(os.Stderr, "unresolved: %s\n", q.Title)
			return fmt.Errorf("no confident match found")
		}
		fmt.Print(out.BibTeX)
		return nil
	},
}

func init() {
	resolveCmd.Flags().String("title", "", "paper title to resolve")
	resolveCmd.Flags().Int("year", 0, "publication year hint")
	resolveCmd.Flags().String("doi", "", "DOI for direct lookup")
	resolveCmd.Flags().Bool("interactive", false, "allow the browser-driven Scholar fallback")
	resolveCmd.Flags().Bool("enrich", false, "fill missing fields from Crossref DOI metadata")
	resolveCmd.Flags().Bool("json", false, "output the outcome as JSON")

	rootCmd.AddCommand(resolveCmd)
}

// applyResolveFlags lets per-command flags override the config for the
// interactive and enrich switches.
func applyResolveFlags(cmd *cobra.Command, cfg *types.PipelineConfig) {
	if cmd.Flags().Changed("interactive") {
		cfg.Resolve.Interactive, _ = cmd.Flags().GetBool("interactive")
	}
	if cmd.Flags().Changed("enrich") {
		cfg.Resolve.Enrich, _ = cmd.Flags().GetBool("enrich")
	}
}
