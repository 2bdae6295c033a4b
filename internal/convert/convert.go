// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns source documents into Markdown text plus seed
// metadata for resolution. The heavy lifting is delegated to the markitdown
// container image; this package owns runtime detection, piping, and
// metadata extraction from the converted text.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/AlanSynn/paperef/pkg/types"
)

// Document is a converted source file: its full Markdown text and the
// metadata extracted from it.
type Document struct {
	Text string
	Meta types.DocMeta
}

// Converter transforms a source file into Markdown text. Backends differ in
// how they run the conversion; the markitdown container is the default.
type Converter interface {
	Convert(path string) (string, error)
}

// ConvertFile converts one document and extracts its metadata. When
// outputDir is non-empty the Markdown is also written there, and an
// existing output file is reused instead of reconverting.
func ConvertFile(c Converter, path, outputDir string, w io.Writer) (Document, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var mdPath, metaPath string
	if outputDir != "" {
		mdPath = filepath.Join(outputDir, base+".md")
		metaPath = filepath.Join(outputDir, base+".yaml")
		if data, err := os.ReadFile(mdPath); err == nil {
			fmt.Fprintf(w, "reusing converted text: %s\n", mdPath)
			text := string(data)
			meta, metaErr := ReadMeta(metaPath)
			if metaErr != nil {
				meta = ExtractMeta(text)
			}
			return Document{Text: text, Meta: meta}, nil
		}
	}

	text, err := c.Convert(path)
	if err != nil {
		return Document{}, fmt.Errorf("converting %s: %w", path, err)
	}

	meta := ExtractMeta(text)
	if mdPath != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return Document{}, fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(mdPath, []byte(text), 0o644); err != nil {
			return Document{}, fmt.Errorf("writing %s: %w", mdPath, err)
		}
		if err := WriteMeta(metaPath, meta); err != nil {
			return Document{}, err
		}
		fmt.Fprintf(w, "converted: %s\n", mdPath)
	}

	return Document{Text: text, Meta: meta}, nil
}

// WriteMeta writes document metadata to a YAML sidecar file.
func WriteMeta(path string, meta types.DocMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadMeta reads document metadata from a YAML sidecar file.
func ReadMeta(path string) (types.DocMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.DocMeta{}, err
	}
	var meta types.DocMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return types.DocMeta{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return meta, nil
}
