// Package graph extracts the directed tool graph of a network.
package graph

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/opencode-ai/netforge/internal/state"
)

// Edge points from a node to one of its tools.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the named-node view of a network.
type Graph struct {
	Frontman string   `json:"frontman,omitempty"`
	Nodes    []string `json:"nodes"`
	Edges    []Edge   `json:"edges"`
}

// Build collects the named nodes of st in order and one edge per tool entry.
// Edges to unknown names are kept so dangling references stay visible.
func Build(st *state.AppState) Graph {
	g := Graph{Nodes: []string{}, Edges: []Edge{}}
	if front := st.Frontman(); front != nil {
		g.Frontman = front.Name
	}
	for _, node := range st.Nodes {
		if node.Name == "" {
			continue
		}
		g.Nodes = append(g.Nodes, node.Name)
		for _, tool := range node.Tools {
			g.Edges = append(g.Edges, Edge{Source: node.Name, Target: tool})
		}
	}
	return g
}

// WriteDOT writes g as Graphviz text. Hierarchical graphs are laid out top
// to bottom, others left to right.
func WriteDOT(w io.Writer, g Graph, hierarchical bool) error {
	rankdir := "LR"
	if hierarchical {
		rankdir = "TB"
	}

	var b strings.Builder
	b.WriteString("digraph network {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", rankdir)
	b.WriteString("  node [shape=box];\n")
	for _, name := range g.Nodes {
		if name == g.Frontman {
			fmt.Fprintf(&b, "  %s [peripheries=2];\n", strconv.Quote(name))
			continue
		}
		fmt.Fprintf(&b, "  %s;\n", strconv.Quote(name))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %s -> %s;\n", strconv.Quote(e.Source), strconv.Quote(e.Target))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
