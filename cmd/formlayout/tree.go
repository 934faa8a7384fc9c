package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formlayout/pkg/layout"
)

type treeStyles struct {
	container lipgloss.Style
	component lipgloss.Style
	kind      lipgloss.Style
	page      lipgloss.Style
	unknown   lipgloss.Style
}

func newTreeStyles() treeStyles {
	return treeStyles{
		container: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		component: lipgloss.NewStyle(),
		kind:      lipgloss.NewStyle().Faint(true),
		page:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		unknown:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("196")),
	}
}

func newTreeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the container hierarchy of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			internal, err := a.readInternal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderTree(a.out, internal, newTreeStyles())
			return nil
		},
	}
}

// renderTree writes one line per item, indented by nesting. Ids without a
// matching item are shown as unknown components.
func renderTree(w io.Writer, l layout.Layout, styles treeStyles) {
	fmt.Fprintln(w, styles.container.Render(layout.BaseContainerID))
	visited := map[string]struct{}{layout.BaseContainerID: {}}
	var walk func(containerID, prefix string)
	walk = func(containerID, prefix string) {
		children := l.Order[containerID]
		for idx, childID := range children {
			branch, next := "├── ", "│   "
			if idx == len(children)-1 {
				branch, next = "└── ", "    "
			}
			fmt.Fprintln(w, prefix+branch+describeItem(l, childID, styles))
			if _, seen := visited[childID]; seen || !layout.IsContainer(l, childID) {
				continue
			}
			visited[childID] = struct{}{}
			walk(childID, prefix+next)
		}
	}
	walk(layout.BaseContainerID, "")
}

func describeItem(l layout.Layout, id string, styles treeStyles) string {
	item, ok := layout.GetItem(l, id)
	if !ok {
		return styles.unknown.Render(id + " (unknown component)")
	}
	var b strings.Builder
	if item.ItemType() == layout.ItemTypeContainer {
		b.WriteString(styles.container.Render(id))
	} else {
		b.WriteString(styles.component.Render(id))
	}
	b.WriteString(" ")
	b.WriteString(styles.kind.Render("[" + item.ItemComponentType() + "]"))
	if page := item.ItemPageIndex(); page != nil {
		b.WriteString(" ")
		b.WriteString(styles.page.Render(fmt.Sprintf("page %d", *page)))
	}
	return b.String()
}
