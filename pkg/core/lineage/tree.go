package lineage

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/scienceol/cellbank/pkg/repo/model"
)

const (
	ColorUsed     = "#FF6B6B"
	ColorInuse    = "#FFA500"
	ColorDepleted = "#B0B0B0"
	ColorStored   = "#97C2FC"
)

// BuildTree turns tube rows into a forest keyed by tube label. A later row
// producing the same label replaces the earlier node in place. Nodes whose
// parent label is empty, unknown or themselves are roots; a parent cycle is
// cut so that every node is reachable from some root.
func BuildTree(rows []*model.Tube, log []*model.UsageEntry) []*Node {
	nodes := map[string]*Node{}
	parents := map[string]string{}
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		passage := row.Passage.V
		for i := 1; i <= row.Tubes(); i++ {
			label := model.TubeLabel(passage, i)
			usage := findUsage(log, passage, i)
			node := &Node{
				Name:      label,
				Value:     tooltip(label, passage, row, usage),
				Children:  []*Node{},
				ItemStyle: ItemStyle{Color: color(row.Status, usage != nil)},
			}
			if _, ok := nodes[label]; !ok {
				order = append(order, label)
			}
			nodes[label] = node
			if row.ParentTube != "" {
				parents[label] = row.ParentTube
			}
		}
	}

	attached := map[string]string{}
	roots := make([]*Node, 0)
	for _, label := range order {
		p := parents[label]
		parent, ok := nodes[p]
		if p == "" || p == label || !ok {
			roots = append(roots, nodes[label])
			continue
		}
		parent.Children = append(parent.Children, nodes[label])
		attached[label] = p
	}

	reached := map[*Node]bool{}
	for _, r := range roots {
		mark(r, reached)
	}
	for _, label := range order {
		if reached[nodes[label]] {
			continue
		}
		// walk up until a label repeats: that label sits on the cycle
		seen := map[string]bool{}
		cur := label
		for !seen[cur] {
			seen[cur] = true
			cur = attached[cur]
		}
		detach(nodes[attached[cur]], nodes[cur])
		delete(attached, cur)
		roots = append(roots, nodes[cur])
		mark(nodes[cur], reached)
	}
	return roots
}

func mark(n *Node, reached map[*Node]bool) {
	if reached[n] {
		return
	}
	reached[n] = true
	for _, c := range n.Children {
		mark(c, reached)
	}
}

func detach(parent, child *Node) {
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}

// findUsage is the first log entry that consumed tube i of the passage.
func findUsage(log []*model.UsageEntry, passage, i int) *model.UsageEntry {
	for _, e := range log {
		if e.Passage.Valid && e.Passage.V == passage && e.UsedTubeNo.Valid && e.UsedTubeNo.V == i {
			return e
		}
	}
	return nil
}

func color(status model.Status, used bool) string {
	switch {
	case used:
		return ColorUsed
	case status == model.StatusInuse:
		return ColorInuse
	case status == model.StatusDepleted:
		return ColorDepleted
	}
	return ColorStored
}

func tooltip(label string, passage int, row *model.Tube, usage *model.UsageEntry) string {
	date := ""
	if row.FreezeDate != nil {
		date = row.FreezeDate.Format(model.DateLayout)
	}
	esc := html.EscapeString
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Tube:</b> %s<br>", esc(label))
	fmt.Fprintf(&b, "Passage: %s<br>", strconv.Itoa(passage))
	fmt.Fprintf(&b, "Lot: %s<br>", esc(row.Lot))
	fmt.Fprintf(&b, "Date: %s<br>", date)
	fmt.Fprintf(&b, "Remain vials: %s<br>", row.RemainVials)
	fmt.Fprintf(&b, "Name: %s<br>", esc(row.Name))
	fmt.Fprintf(&b, "Source: %s<br>", esc(row.Source))
	fmt.Fprintf(&b, "Status: %s", row.Status.Title())
	if usage != nil {
		fmt.Fprintf(&b, "<br><b>Used by:</b> %s<br><b>Exp:</b> %s<br><b>Date:</b> %s",
			esc(usage.User), esc(usage.Experiment), usage.Date)
	}
	return b.String()
}
