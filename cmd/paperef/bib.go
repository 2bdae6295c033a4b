// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AlanSynn/paperef/internal/convert"
	"github.com/AlanSynn/paperef/internal/refparse"
	"github.com/AlanSynn/paperef/pkg/types"
)

var bibCmd = &cobra.Command{
	Use:   "bib <document>",
	Short: "Build a bibliography for a document",
	Long: `Bib runs the full pipeline: a PDF (or other source document) is converted
to Markdown through the markitdown container, its references are segmented
and parsed, and every reference is resolved to BibTeX. A Markdown input
skips conversion. The resolved entries are written to a .bib file next to
the input, or to --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		includeSelf, _ := cmd.Flags().GetBool("self")

		cfg := pipelineConfig()
		applyResolveFlags(cmd, &cfg)

		doc, err := loadDocument(args[0], cfg.Conversion)
		if err != nil {
			return err
		}

		raws := refparse.Segment(doc.Text)
		queries := make([]types.Query, 0, len(raws)+1)
		if includeSelf && doc.Meta.Title != "" {
			queries = append(queries, doc.Meta.Query())
		}
		for _, raw := range raws {
			queries = append(queries, refparse.ParseReference(raw))
		}
		if len(queries) == 0 {
			return fmt.Errorf("nothing to resolve: no references found and no document metadata")
		}

		r, cleanup, err := newResolver(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer cleanup()

		outcomes, summary := r.ResolveBatch(cmd.Context(), queries)

		var b strings.Builder
		for _, out := range outcomes {
			if out.BibTeX != "" {
				b.WriteString(out.BibTeX)
				b.WriteString("\n")
			}
		}

		if output == "" {
			base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			output = base + ".bib"
		}
		if err := os.WriteFile(output, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		fmt.Fprintf(os.Stderr, "%s: %d resolved, %d unresolved, %d failed (total %d)\n",
			output, summary.Resolved, summary.Unresolved, summary.Failed, summary.Total())
		if summary.Resolved == 0 {
			return fmt.Errorf("no references resolved")
		}
		return nil
	},
}

// loadDocument reads Markdown directly or converts any other input through
// the container pipeline.
func loadDocument(path string, cfg types.ConversionConfig) (convert.Document, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".md" || ext == ".markdown" {
		data, err := os.ReadFile(path)
		if err != nil {
			return convert.Document{}, fmt.Errorf("reading %s: %w", path, err)
		}
		text := string(data)
		return convert.Document{Text: text, Meta: convert.ExtractMeta(text)}, nil
	}

	rt, err := convert.DetectRuntime()
	if err != nil {
		return convert.Document{}, err
	}
	mc, err := convert.NewMarkitdownConverter(rt, cfg)
	if err != nil {
		return convert.Document{}, err
	}
	return convert.ConvertFile(mc, path, cfg.OutputDir, os.Stderr)
}

func init() {
	bibCmd.Flags().String("output", "", "output .bib path (default: input name with .bib)")
	bibCmd.Flags().Bool("self", false, "also resolve the document itself from its metadata")
	bibCmd.Flags().Bool("interactive", false, "allow the browser-driven Scholar fallback")
	bibCmd.Flags().Bool("enrich", false, "fill missing fields from Crossref DOI metadata")

	rootCmd.AddCommand(bibCmd)
}
