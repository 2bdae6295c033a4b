// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlanSynn/paperef/internal/refparse"
	"github.com/AlanSynn/paperef/pkg/types"
)

var refsCmd = &cobra.Command{
	Use:   "refs <markdown-file>",
	Short: "List the references segmented from a converted document",
	Long: `Refs scans converted Markdown for a references section, segments it into
individual entries, and parses each into a query (title, authors, year,
DOI). Nothing is resolved; use bib for the full pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		raws := refparse.Segment(string(data))
		if len(raws) == 0 {
			return fmt.Errorf("no references section found in %s", args[0])
		}

		if asJSON {
			queries := make([]types.Query, 0, len(raws))
			for _, raw := range raws {
				queries = append(queries, refparse.ParseReference(raw))
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(queries)
		}

		for i, raw := range raws {
			q := refparse.ParseReference(raw)
			fmt.Printf("[%d] %s\n", i+1, raw)
			fmt.Printf("    title=%q year=%d doi=%q authors=%v\n", q.Title, q.Year, q.DOI, q.Authors)
		}
		fmt.Fprintf(os.Stderr, "%d references\n", len(raws))
		return nil
	},
}

func init() {
	refsCmd.Flags().Bool("json", false, "output parsed queries as JSON")

	rootCmd.AddCommand(refsCmd)
}
