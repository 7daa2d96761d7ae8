package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/schemable/pkg/dsl"
)

// Edge is a reference from one definition (or the root) to another.
type Edge struct {
	From    string
	To      string
	Label   string // Location of the reference inside From, e.g. "friends[]"
	Guarded bool   // The reference sits inside a container (type, partial, record, array, tuple)
}

// References lists the references of a document, root first and then definitions in name order.
func References(doc *dsl.Document) []Edge {
	var edges []Edge
	edges = collect(doc.Root, rootID(doc), "", false, edges)
	for _, name := range slices.Sorted(maps.Keys(doc.Definitions)) {
		edges = collect(doc.Definitions[name], name, "", false, edges)
	}
	return edges
}

func collect(n *dsl.Node, from, path string, guarded bool, edges []Edge) []Edge {
	if n == nil {
		return edges
	}
	switch n.Kind {
	case dsl.KindRef:
		edges = append(edges, Edge{From: from, To: n.Ref, Label: path, Guarded: guarded})
	case dsl.KindNullable, dsl.KindRefine:
		edges = collect(n.Elem, from, path, guarded, edges)
	case dsl.KindRecord, dsl.KindArray:
		edges = collect(n.Elem, from, path+"[]", true, edges)
	case dsl.KindType, dsl.KindPartial:
		for _, k := range slices.Sorted(maps.Keys(n.Properties)) {
			edges = collect(n.Properties[k], from, join(path, k), true, edges)
		}
	case dsl.KindTuple:
		for i, item := range n.Items {
			edges = collect(item, from, fmt.Sprintf("%s[%d]", path, i), true, edges)
		}
	case dsl.KindIntersect, dsl.KindUnion:
		for _, item := range n.Items {
			edges = collect(item, from, path, guarded, edges)
		}
	case dsl.KindSum:
		for _, k := range slices.Sorted(maps.Keys(n.Members)) {
			edges = collect(n.Members[k], from, join(path, n.Tag+"="+k), guarded, edges)
		}
	}
	return edges
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func rootID(doc *dsl.Document) string {
	return "doc_" + doc.Name
}

// GenerateMermaid produces a Mermaid flowchart of the definitions of a document and the
// references between them.
// It applies semantic styling:
// - Document root: ((Circle))
// - Sum: {{Hexagon}}
// - Refinement: [[Subroutine]]
// - Default: [Rectangle]
// References inside containers are dotted; direct references are solid.
func GenerateMermaid(doc *dsl.Document) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", sanitizeMermaidID(rootID(doc)), doc.Name)
	for _, name := range slices.Sorted(maps.Keys(doc.Definitions)) {
		opener, closer := "[", "]"
		switch doc.Definitions[name].Kind {
		case dsl.KindSum:
			opener, closer = "{{", "}}"
		case dsl.KindRefine:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(name), opener, name, closer)
	}

	for _, e := range References(doc) {
		arrow := "-->"
		if e.Guarded {
			arrow = "-.->"
		}
		if e.Label != "" {
			label := strings.ReplaceAll(e.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
			if e.Guarded {
				arrow = fmt.Sprintf("-. \"%s\" .->", label)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
