package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/registry"
)

// CatalogMarkdown describes the registered node types as a Markdown document.
func CatalogMarkdown(manifests []registry.Manifest) string {
	var sb strings.Builder
	sb.WriteString("# Node types\n\n")
	sb.WriteString("| Type | Kind | Ports | Description |\n")
	sb.WriteString("|------|------|-------|-------------|\n")
	for _, m := range manifests {
		ports := make([]string, 0, len(m.Ports))
		for _, p := range m.Ports {
			entry := fmt.Sprintf("`%s` %s %s", p.Name, p.Direction, p.TypeName())
			if p.HasDefault {
				entry += fmt.Sprintf(" = `%s`", p.Default)
			}
			ports = append(ports, entry)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			m.Type, m.Kind, strings.Join(ports, "<br>"), strings.ReplaceAll(m.Description, "|", "\\|"))
	}
	return sb.String()
}
