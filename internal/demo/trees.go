package demo

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/aretw0/arbor/pkg/adapters/memory"
)

//go:embed trees/*.yaml
var definitions embed.FS

// Trees returns a loader serving the sample definitions, keyed by file name.
func Trees() (*memory.Loader, error) {
	entries, err := fs.ReadDir(definitions, "trees")
	if err != nil {
		return nil, err
	}
	data := make(map[string]string, len(entries))
	for _, e := range entries {
		raw, err := definitions.ReadFile(path.Join("trees", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		data[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = string(raw)
	}
	return memory.NewLoader(data), nil
}
