package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

type screen int

const (
	screenTree screen = iota
	screenGrid
)

const maxColumnWidth = 30

// catalogMsg carries the result of loading or refreshing the catalog.
type catalogMsg struct {
	catalog *core.Catalog
	err     error
}

// viewMsg carries the result of fetching a table view.
type viewMsg struct {
	link core.Link
	view *core.TableView
	err  error
	push bool
}

// frame is one entry of the back stack.
type frame struct {
	link core.Link
	view *core.TableView
}

// Model is the bubbletea model of the explorer.
type Model struct {
	ctx context.Context
	src Source

	screen screen
	tree   *tree

	grid    table.Model
	link    core.Link
	view    *core.TableView
	linkIdx int
	back    []frame

	status  string
	err     error
	loading bool

	width  int
	height int
	styles Styles
}

// New creates an explorer model reading from src.
func New(ctx context.Context, src Source) Model {
	return Model{
		ctx:    ctx,
		src:    src,
		tree:   newTree(),
		grid:   table.New(table.WithFocused(true), table.WithHeight(15)),
		styles: DefaultStyles(),
	}
}

// Init loads the catalog.
func (m Model) Init() tea.Cmd {
	return m.loadCatalog(false)
}

func (m Model) loadCatalog(refresh bool) tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		var cat *core.Catalog
		var err error
		if refresh {
			cat, err = src.Refresh(ctx)
		} else {
			cat, err = src.Snapshot(ctx)
		}
		return catalogMsg{catalog: cat, err: err}
	}
}

func (m Model) loadView(link core.Link, push bool) tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		view, err := src.GetTableData(ctx, link)
		return viewMsg{link: link, view: view, err: err, push: push}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.SetHeight(max(msg.Height-6, 3))
		return m, nil

	case catalogMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.tree.setCatalog(msg.catalog)
		m.status = fmt.Sprintf("%d databases", len(msg.catalog.Databases))
		return m, nil

	case viewMsg:
		m.loading = false
		if errors.Is(msg.err, tabledata.ErrNoColumns) {
			m.err = nil
			m.status = msg.err.Error()
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.push && m.view != nil {
			m.back = append(m.back, frame{link: m.link, view: m.view})
		}
		m.showView(msg.link, msg.view)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.status = "refreshing catalog"
			m.screen = screenTree
			m.view = nil
			m.back = nil
			return m, m.loadCatalog(true)
		}
		if m.screen == screenGrid {
			return m.updateGrid(msg)
		}
		return m.updateTree(msg)
	}

	return m, nil
}

func (m Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.tree.move(-1)
	case "down", "j":
		m.tree.move(1)
	case " ", "space", "right", "l":
		m.tree.toggle()
	case "enter":
		n, ok := m.tree.selected()
		if !ok {
			return m, nil
		}
		if n.kind == nodeTable {
			m.loading = true
			m.err = nil
			return m, m.loadView(core.Link{Database: n.database, Table: n.table}, false)
		}
		m.tree.toggle()
	}
	return m, nil
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if links := m.view.LinkColumns(); len(links) > 0 {
			m.linkIdx = (m.linkIdx + 1) % len(links)
		}
		return m, nil
	case "shift+tab":
		if links := m.view.LinkColumns(); len(links) > 0 {
			m.linkIdx = (m.linkIdx - 1 + len(links)) % len(links)
		}
		return m, nil
	case "enter":
		link, err := m.selectedLink()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.loadView(link, true)
	case "esc":
		m.err = nil
		if n := len(m.back); n > 0 {
			prev := m.back[n-1]
			m.back = m.back[:n-1]
			m.showView(prev.link, prev.view)
			return m, nil
		}
		m.screen = screenTree
		m.view = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

// selectedLink returns the link that follows the selected link column from
// the selected row.
func (m Model) selectedLink() (core.Link, error) {
	links := m.view.LinkColumns()
	if len(links) == 0 {
		return core.Link{}, fmt.Errorf("%s has no links", m.view.Table)
	}
	row := m.grid.Cursor()
	if row < 0 || row >= len(m.view.Rows) {
		return core.Link{}, fmt.Errorf("no row selected")
	}
	return m.view.Follow(m.view.Rows[row], links[m.linkIdx%len(links)].Key)
}

func (m *Model) showView(link core.Link, view *core.TableView) {
	m.screen = screenGrid
	m.link = link
	m.view = view
	m.linkIdx = 0

	headers := tabledata.Headers(view)
	cells := tabledata.Cells(view)

	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		w := len(h)
		for _, row := range cells {
			w = max(w, len(row[i]))
		}
		cols[i] = table.Column{Title: h, Width: min(w, maxColumnWidth)}
	}
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}

	// Rows must be cleared before the column count changes.
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	m.grid.SetCursor(0)
	m.status = fmt.Sprintf("%s: %d rows", view.Database+"."+view.Table, len(view.Rows))
}

// View renders the explorer.
func (m Model) View() string {
	var b strings.Builder

	switch m.screen {
	case screenGrid:
		b.WriteString(m.styles.Title.Render(m.breadcrumb()))
		b.WriteString("\n")
		b.WriteString(m.grid.View())
		b.WriteString("\n")
		if links := m.view.LinkColumns(); len(links) > 0 {
			b.WriteString(m.styles.Link.Render("follow " + links[m.linkIdx%len(links)].Name))
			b.WriteString("\n")
		}
		b.WriteString(m.styles.Help.Render("↑/↓ row • tab link • enter follow • esc back • r refresh • q quit"))
	default:
		b.WriteString(m.styles.Title.Render("catalog"))
		b.WriteString("\n")
		b.WriteString(m.renderTree())
		b.WriteString(m.styles.Help.Render("↑/↓ move • space expand • enter open table • r refresh • q quit"))
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) breadcrumb() string {
	parts := make([]string, 0, len(m.back)+1)
	for _, f := range m.back {
		parts = append(parts, f.view.Table)
	}
	if m.view != nil {
		parts = append(parts, m.view.Table)
	}
	return m.link.Database + ": " + strings.Join(parts, " › ")
}

func (m Model) renderTree() string {
	var b strings.Builder
	for i, n := range m.tree.nodes {
		marker := "  "
		if n.key != "" {
			marker = "▸ "
			if m.tree.expanded[n.key] {
				marker = "▾ "
			}
		}
		line := strings.Repeat("  ", n.depth) + marker + n.label

		style := m.styles.Item
		switch n.kind {
		case nodeField:
			style = m.styles.Field
		case nodeRelationship:
			style = m.styles.Link
		}
		if i == m.tree.cursor {
			style = m.styles.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("Error: " + m.err.Error())
	case m.loading:
		return m.styles.Status.Render("loading…")
	default:
		return m.styles.Status.Render(m.status)
	}
}

// Run starts the explorer and blocks until the user quits.
func Run(ctx context.Context, src Source, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, src), opts...).Run()
	return err
}
