// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"

	"github.com/AlanSynn/paperef/pkg/types"
)

// defaultImage is the conversion container image when the config names none.
const defaultImage = "markitdown:latest"

// MarkitdownConverter converts documents by piping them through the
// markitdown container image over an injected container runtime.
type MarkitdownConverter struct {
	runtime Runtime
	image   string
}

// NewMarkitdownConverter verifies the image is present in the runtime and
// returns a converter using it.
func NewMarkitdownConverter(rt Runtime, cfg types.ConversionConfig) (*MarkitdownConverter, error) {
	image := cfg.Image
	if image == "" {
		image = defaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("conversion image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt, image: image}, nil
}

// Convert pipes the file at path through the container and returns the
// Markdown text.
func (m *MarkitdownConverter) Convert(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(m.image, f, &out); err != nil {
		return "", fmt.Errorf("converting %s: %w", path, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("conversion produced empty output for %s", path)
	}
	return out.String(), nil
}
