package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
)

var statusColors = map[domain.Status]string{
	domain.StatusRunning: "#facc15",
	domain.StatusSuccess: "#4ade80",
	domain.StatusFailure: "#f87171",
	domain.StatusSkipped: "#9ca3af",
}

// RenderTree writes an indented view of snap, one node per line with its status.
func RenderTree(w io.Writer, snap domain.TreeSnapshot, color bool) {
	p := termenv.Ascii
	if color {
		p = termenv.ColorProfile()
	}

	children := make(map[int][]domain.NodeSnapshot, len(snap.Nodes))
	var roots []domain.NodeSnapshot
	for _, n := range snap.Nodes {
		if n.Parent < 0 {
			roots = append(roots, n)
			continue
		}
		children[n.Parent] = append(children[n.Parent], n)
	}

	var walk func(n domain.NodeSnapshot, prefix string, last, root bool)
	walk = func(n domain.NodeSnapshot, prefix string, last, root bool) {
		branch, next := "", ""
		if !root {
			branch, next = "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
		}

		label := n.Name
		if n.Name != n.Type {
			label = fmt.Sprintf("%s (%s)", n.Name, n.Type)
		}
		fmt.Fprintf(w, "%s%s%s %s\n", prefix, branch, label, styleStatus(p, n.Status))

		kids := children[n.UID]
		for i, c := range kids {
			walk(c, prefix+next, i == len(kids)-1, false)
		}
	}
	for _, r := range roots {
		walk(r, "", true, true)
	}
}

func styleStatus(p termenv.Profile, s domain.Status) string {
	if s == "" {
		s = domain.StatusIdle
	}
	text := "[" + strings.ToLower(s.String()) + "]"
	if p == termenv.Ascii {
		return text
	}
	style := p.String(text)
	if c, ok := statusColors[s]; ok {
		style = style.Foreground(p.Color(c))
	} else {
		style = style.Faint()
	}
	return style.String()
}
