package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/arvek/bnrg/codec"
	"github.com/arvek/bnrg/internal/fileio"
	"github.com/arvek/bnrg/record"
)

// keyMap is the inspector's key binding table. Bindings double as their own
// help text via ShortHelp, rendered in the footer.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Follow key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Follow, k.Top, k.Bottom, k.Quit}
}

var defaultKeyMap = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move")),
	Top:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "top")),
	Bottom: key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
	Follow: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "follow reference")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Browse a decoded graph's records interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func runInspect(cmd *cobra.Command, args []string) error {
	mapped, err := fileio.Open(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	defer mapped.Close()
	graph, err := codec.Decode(mapped.Bytes())
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	ids := make([]int32, 0, len(graph.Records))
	for id := range graph.Records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	model := &inspectModel{graph: graph, ids: ids, keys: defaultKeyMap}
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

type inspectModel struct {
	graph  *record.Graph
	ids    []int32
	cursor int
	width  int
	height int
	keys   keyMap
}

func (m *inspectModel) Init() tea.Cmd { return nil }

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.ids)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
		case key.Matches(msg, m.keys.Bottom):
			m.cursor = len(m.ids) - 1
		case key.Matches(msg, m.keys.Follow):
			m.followReference()
		}
	}
	return m, nil
}

// followReference jumps the cursor to the first Reference member of the
// currently selected record, if it has one — a quick way to walk the graph
// by hand.
func (m *inspectModel) followReference() {
	if len(m.ids) == 0 {
		return
	}
	rec := m.graph.Records[m.ids[m.cursor]]
	var target int32
	found := false
	switch r := rec.(type) {
	case *record.Class:
		for _, mem := range r.Members {
			if mem.Kind == record.MemberReference {
				target, found = mem.Ref, true
				break
			}
		}
	case *record.BinaryArray:
		for _, mem := range r.Elements {
			if mem.Kind == record.MemberReference {
				target, found = mem.Ref, true
				break
			}
		}
	}
	if !found {
		return
	}
	for i, id := range m.ids {
		if id == target {
			m.cursor = i
			return
		}
	}
}

func (m *inspectModel) View() string {
	if len(m.ids) == 0 {
		return "graph has no records\n"
	}

	var list strings.Builder
	list.WriteString(headerStyle.Render(fmt.Sprintf("records (%d)", len(m.ids))) + "\n")
	for i, id := range m.ids {
		line := fmt.Sprintf("%6d  %s", id, m.graph.Records[id].Kind())
		if i == m.cursor {
			list.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			list.WriteString("  " + line + "\n")
		}
	}

	detail := m.renderDetail()
	help := borderStyle.Render(renderHelp(m.keys.ShortHelp()))

	return lipgloss.JoinVertical(lipgloss.Left, list.String(), "", detail, "", help)
}

func (m *inspectModel) renderDetail() string {
	id := m.ids[m.cursor]
	rec := m.graph.Records[id]
	var b strings.Builder
	fmt.Fprintf(&b, "id %d: %s\n", id, rec.Kind())
	switch r := rec.(type) {
	case *record.LibraryRecord:
		fmt.Fprintf(&b, "  name: %q\n", r.Name)
	case *record.StringRecord:
		fmt.Fprintf(&b, "  value: %q\n", r.Value)
	case *record.Class:
		ct := m.graph.ClassTypes[r.ClassTypeID]
		fmt.Fprintf(&b, "  type: %s (system=%v, library=%d)\n", ct.Name, ct.SystemClass, ct.LibraryID)
		for i, name := range ct.MemberNames {
			fmt.Fprintf(&b, "  .%s = %s\n", name, describeMember(r.Members[i]))
		}
	case *record.BinaryArray:
		fmt.Fprintf(&b, "  element type: %s, length %d\n", r.ElementType, len(r.Elements))
		for i, e := range r.Elements {
			fmt.Fprintf(&b, "  [%d] = %s\n", i, describeMember(e))
		}
	case *record.PrimitiveArray:
		fmt.Fprintf(&b, "  element type: %s, length %d\n", r.ElementType, len(r.Elements))
	}
	return b.String()
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, " · ")
}

func describeMember(m record.Member) string {
	switch m.Kind {
	case record.MemberPrimitive:
		return fmt.Sprintf("%v", m.Prim.Type)
	case record.MemberReference:
		return fmt.Sprintf("-> %d", m.Ref)
	case record.MemberNull:
		return "null"
	case record.MemberNullMultiple:
		return fmt.Sprintf("null x%d", m.Count)
	default:
		return "?"
	}
}
