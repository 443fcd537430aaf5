package textractor

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/aliok/repo-textractor/internal/seltree"
)

// ExitState indicates how the picker is exiting.
type ExitState int

const (
	ExitStateNone    ExitState = iota // Not exiting
	ExitStateAbort                    // Exiting without a selection (ESC, Ctrl+C)
	ExitStateConfirm                  // Exiting with confirmation (Enter)
)

// pickerModel is the Bubble Tea model for interactive file selection. The
// selection semantics live entirely in seltree; this model only renders the
// tree and translates key presses into toggles.
type pickerModel struct {
	title string
	tree  *seltree.Tree
	sizes map[string]int64 // blob sizes by path, for the token estimate

	textInput  textinput.Model
	searchTerm string

	rows      []seltree.Row // currently visible rows
	cursor    int
	exitState ExitState

	viewport viewport.Model
	ready    bool
}

// PickPaths runs the TUI over the fetched tree entries and returns the
// reduced inclusion set. The second return is false when the user aborted.
// The inclusion set is snapshotted synchronously on confirm.
func PickPaths(entries []TreeEntry, title string) ([]string, bool, error) {
	paths := make([]string, 0, len(entries))
	sizes := make(map[string]int64, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
		sizes[e.Path] = e.Size
	}

	tree, err := seltree.Build(paths)
	if err != nil {
		return nil, false, err
	}
	tree.ExpandAll()

	ti := textinput.New()
	ti.Placeholder = "Type to fuzzy-search..."
	ti.Prompt = "> "
	ti.Focus()

	m := pickerModel{
		title:     title,
		tree:      tree,
		sizes:     sizes,
		textInput: ti,
		viewport:  viewport.New(0, 0),
	}
	m.refreshRows()

	// TUI goes to stderr so the digest can be piped from stdout.
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return nil, false, err
	}

	finalM, ok := finalModel.(pickerModel)
	if !ok {
		return nil, false, fmt.Errorf("could not get final picker state")
	}
	if finalM.exitState != ExitStateConfirm {
		return nil, false, nil
	}
	return finalM.tree.Reduce(), true, nil
}

func (m pickerModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.exitState != ExitStateNone {
		return m, tea.Quit
	}

	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := 3
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight
		m.viewport.YPosition = headerHeight
		if !m.ready {
			m.updateViewportContent()
			m.ready = true
		}

	case tea.KeyMsg:
		switch msg.String() {

		case "ctrl+c", "esc":
			m.exitState = ExitStateAbort
			return m, tea.Quit

		case "enter":
			m.exitState = ExitStateConfirm
			return m, tea.Quit

		case "up":
			if m.cursor > 0 {
				m.cursor--
				m.updateViewportContent()
				m.ensureCursorVisible()
			}
			return m, nil

		case "down":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.updateViewportContent()
				m.ensureCursorVisible()
			}
			return m, nil

		case " ":
			if len(m.rows) > 0 {
				node := m.rows[m.cursor].Node
				// Checked goes to unchecked; unchecked and indeterminate
				// both go to checked.
				if err := m.tree.Toggle(node, node.State != seltree.Checked); err == nil {
					m.refreshRows()
					m.updateViewportContent()
				}
			}
			return m, nil

		case "left":
			if len(m.rows) > 0 {
				m.rows[m.cursor].Node.SetExpanded(false)
				m.refreshRows()
				m.updateViewportContent()
			}
			return m, nil

		case "right":
			if len(m.rows) > 0 {
				m.rows[m.cursor].Node.SetExpanded(true)
				m.refreshRows()
				m.updateViewportContent()
			}
			return m, nil

		case "ctrl+a":
			if err := m.tree.Toggle(m.tree.Root, true); err == nil {
				m.updateViewportContent()
			}
			return m, nil

		case "ctrl+q":
			if err := m.tree.Toggle(m.tree.Root, false); err == nil {
				m.updateViewportContent()
			}
			return m, nil

		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil

		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil

		case "home":
			if len(m.rows) > 0 {
				m.cursor = 0
				m.viewport.GotoTop()
				m.updateViewportContent()
			}
			return m, nil

		case "end":
			if len(m.rows) > 0 {
				m.cursor = len(m.rows) - 1
				m.viewport.GotoBottom()
				m.updateViewportContent()
			}
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	if term := m.textInput.Value(); term != m.searchTerm {
		m.searchTerm = term
		m.refreshRows()
		m.updateViewportContent()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m pickerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	included, tokens := m.selectionTotals()
	statusLine := fmt.Sprintf("%d rows, %d files selected, ~%d tokens", len(m.rows), included, tokens)
	usageHint := "(↑/↓ navigate, Space toggle, ←/→ collapse/expand, Enter confirm, Esc abort, Ctrl+A all, Ctrl+Q none)"

	return fmt.Sprintf("%s%s\n%s\n%s", m.headerView(), m.viewport.View(), statusLine, usageHint)
}

func (m pickerModel) headerView() string {
	return m.title + "\n" + m.textInput.View() + "\n"
}

// refreshRows rebuilds the visible row list: the expanded tree normally, or
// a flat fuzzy-filtered path list while searching.
func (m *pickerModel) refreshRows() {
	if m.searchTerm == "" {
		m.rows = m.tree.VisibleRows()
	} else {
		all := m.allRows()
		paths := make([]string, len(all))
		for i, row := range all {
			paths[i] = row.Node.FullPath
		}
		var filtered []seltree.Row
		for _, match := range fuzzy.Find(m.searchTerm, paths) {
			filtered = append(filtered, seltree.Row{Node: all[match.Index].Node})
		}
		m.rows = filtered
	}

	if len(m.rows) == 0 {
		m.cursor = 0
	} else if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

// allRows walks every node regardless of the expand flags, for searching.
func (m *pickerModel) allRows() []seltree.Row {
	var rows []seltree.Row
	var walk func(n *seltree.Node, depth int)
	walk = func(n *seltree.Node, depth int) {
		for _, c := range n.Children() {
			rows = append(rows, seltree.Row{Node: c, Depth: depth})
			walk(c, depth+1)
		}
	}
	walk(m.tree.Root, 0)
	return rows
}

func checkboxGlyph(state seltree.State) string {
	switch state {
	case seltree.Checked:
		return "[x]"
	case seltree.Indeterminate:
		return "[~]"
	default:
		return "[ ]"
	}
}

func (m *pickerModel) updateViewportContent() {
	var sb strings.Builder

	searching := m.searchTerm != ""
	for i, row := range m.rows {
		node := row.Node

		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		name := node.Name
		if searching {
			name = node.FullPath
		}
		if node.Kind == seltree.KindDir {
			name += "/"
		}

		indent := strings.Repeat("  ", row.Depth)
		line := fmt.Sprintf("%s %s %s%s", cursor, checkboxGlyph(node.State), indent, name)
		if i == m.cursor {
			line = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Render(line)
		}
		sb.WriteString(line + "\n")
	}

	m.viewport.SetContent(sb.String())
}

func (m *pickerModel) ensureCursorVisible() {
	top := m.viewport.YOffset
	bottom := m.viewport.YOffset + m.viewport.Height - 1
	if m.cursor < top {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// selectionTotals reports how many files are currently checked and a rough
// token estimate from the blob sizes (contents are not fetched until
// generation).
func (m *pickerModel) selectionTotals() (int, int64) {
	var files int
	var tokens int64
	var walk func(n *seltree.Node)
	walk = func(n *seltree.Node) {
		if n.State == seltree.Unchecked {
			return
		}
		if n.Kind == seltree.KindFile {
			if n.State == seltree.Checked {
				files++
				tokens += m.sizes[n.FullPath] / 4
			}
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(m.tree.Root)
	return files, tokens
}
