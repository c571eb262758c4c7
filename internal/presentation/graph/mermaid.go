package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay controls the dynamic state drawn on top of the structure.
type Overlay struct {
	// Statuses colours every node that is not IDLE.
	Statuses bool
}

// GenerateMermaid produces a Mermaid flowchart of a tree snapshot.
// It applies semantic shapes per node kind:
// - Control: [[Subroutine]]
// - Decorator: {Rhombus}
// - Condition: ([Stadium])
// - SubTree: [/Parallelogram/]
// - Action: [Rectangle]
func GenerateMermaid(snap domain.TreeSnapshot, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range snap.Nodes {
		opener, closer := "[", "]"
		switch n.Kind {
		case domain.KindControl:
			opener, closer = "[[", "]]"
		case domain.KindDecorator:
			opener, closer = "{", "}"
		case domain.KindCondition:
			opener, closer = "([", "])"
		case domain.KindSubTree:
			opener, closer = "[/", "/]"
		}

		label := escapeLabel(n.Name)
		if n.Name != n.Type {
			label = fmt.Sprintf("%s <br/> <i>%s</i>", label, escapeLabel(n.Type))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(n.UID), opener, label, closer)
		if n.Parent >= 0 {
			arrow := "-->"
			if parentKind(snap.Nodes, n.Parent) == domain.KindSubTree {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(n.Parent), arrow, nodeID(n.UID))
		}
	}

	if overlay != nil && overlay.Statuses {
		sb.WriteString("\n    %% Status Overlay\n")
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef success fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failure fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		for _, n := range snap.Nodes {
			if n.Status == domain.StatusIdle || n.Status == "" {
				continue
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", nodeID(n.UID), strings.ToLower(n.Status.String()))
		}
	}

	return sb.String()
}

func nodeID(uid int) string {
	return fmt.Sprintf("n%d", uid)
}

func parentKind(nodes []domain.NodeSnapshot, uid int) domain.NodeKind {
	if uid >= 0 && uid < len(nodes) && nodes[uid].UID == uid {
		return nodes[uid].Kind
	}
	for _, n := range nodes {
		if n.UID == uid {
			return n.Kind
		}
	}
	return ""
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
