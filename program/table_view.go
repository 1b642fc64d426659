package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/pipeline"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

// tableView is the sortable, filterable table tab.
type tableView struct {
	table     table.Model
	columns   []record.Column
	dates     dateRange
	search    textinput.Model
	searching bool

	criteria pipeline.FilterCriteria
	sort     pipeline.SortSpec
	view     pipeline.View
}

func newTableView(bounds pipeline.Bounds) tableView {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(styles.NormalBorder()).
		BorderForeground(borderColor).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(selectedColor).
		Bold(false)

	search := textinput.New()
	search.Prompt = "country "
	search.Placeholder = "search"
	search.CharLimit = 64
	search.Width = 24
	search.ShowSuggestions = true

	v := tableView{
		table: table.New(
			table.WithFocused(true),
			table.WithStyles(s),
		),
		columns:  record.TableColumns,
		dates:    newDateRange(),
		search:   search,
		criteria: pipeline.FilterCriteria{Bounds: bounds},
	}
	v.setSize(80, 10)
	return v
}

func (v *tableView) isEditing() bool { return v.searching || v.dates.isEditing() }

// setSize spreads width over the columns, giving the country column the
// remainder.
func (v *tableView) setSize(width, height int) {
	const padding = 2
	n := len(v.columns)
	colW := max(8, width/n-padding)
	first := max(colW, width-(n-1)*(colW+padding)-padding)

	cols := make([]table.Column, n)
	for i, c := range v.columns {
		w := colW
		if i == 0 {
			w = first
		}
		cols[i] = table.Column{Title: v.header(c), Width: w}
	}
	v.table.SetColumns(cols)
	v.table.SetWidth(width)
	v.table.SetHeight(max(2, height))
}

func (v *tableView) header(c record.Column) string {
	title := c.Title()
	if v.sort.Column != c {
		return title
	}
	if v.sort.Direction == pipeline.Desc {
		return title + " ▼"
	}
	return title + " ▲"
}

func (v *tableView) refreshHeaders() {
	cols := v.table.Columns()
	for i := range cols {
		cols[i].Title = v.header(v.columns[i])
	}
	v.table.SetColumns(cols)
}

// apply re-runs the pipeline and replaces the table rows.
func (v *tableView) apply(records []record.Record) {
	v.view = pipeline.Apply(records, v.criteria, v.sort)
	projected := pipeline.TableRows(v.view.Records, v.columns)
	rows := make([]table.Row, len(projected))
	for i, r := range projected {
		rows[i] = table.Row(r)
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(0, len(rows)-1))
	}
}

func (v *tableView) setCountries(countries []string, latest string) {
	v.search.SetSuggestions(countries)
	v.dates.setLatest(latest)
}

// handleKey returns whether the criteria or sort changed and the pipeline
// needs to run again.
func (v *tableView) handleKey(msg tui.KeyMsg) (changed bool, cmd tui.Cmd) {
	if v.searching {
		return v.updateSearch(msg)
	}
	if v.dates.isEditing() {
		changed, cmd = v.dates.update(msg, &v.criteria)
		v.endEdit()
		return changed, cmd
	}

	switch {
	case key.Matches(msg, keys.StartDate):
		v.table.Blur()
		return false, v.dates.begin(fieldStart, v.criteria)
	case key.Matches(msg, keys.EndDate):
		v.table.Blur()
		return false, v.dates.begin(fieldEnd, v.criteria)
	case key.Matches(msg, keys.Search):
		v.table.Blur()
		v.searching = true
		v.search.CursorEnd()
		return false, v.search.Focus()
	case key.Matches(msg, keys.ShowAll):
		if !v.criteria.HasDateRange() {
			return false, nil
		}
		v.dates.clear(&v.criteria)
		return true, nil
	case key.Matches(msg, keys.SortBy):
		i, ok := sortColumnForKey(msg.String())
		if !ok || i >= len(v.columns) {
			return false, nil
		}
		v.sort = v.sort.Toggle(v.columns[i])
		v.refreshHeaders()
		return true, nil
	}
	v.table, cmd = v.table.Update(msg)
	return false, cmd
}

// updateSearch filters live on every keystroke. Enter keeps the text, esc
// clears it.
func (v *tableView) updateSearch(msg tui.KeyMsg) (bool, tui.Cmd) {
	switch {
	case key.Matches(msg, keys.Apply):
		v.endSearch()
		return false, nil
	case key.Matches(msg, keys.Cancel):
		v.search.Reset()
		v.endSearch()
		changed := v.criteria.Country != ""
		v.criteria.Country = ""
		return changed, nil
	}
	var cmd tui.Cmd
	v.search, cmd = v.search.Update(msg)
	if v.search.Value() == v.criteria.Country {
		return false, cmd
	}
	v.criteria.Country = v.search.Value()
	return true, cmd
}

func (v *tableView) endSearch() {
	v.search.Blur()
	v.searching = false
	v.table.Focus()
}

// endEdit refocuses the table once a date edit finished.
func (v *tableView) endEdit() {
	if !v.isEditing() {
		v.table.Focus()
	}
}

func (v *tableView) filterBar() string {
	bar := styles.JoinHorizontal(styles.Top, v.dates.View(), "  ", v.search.View())
	if v.dates.edited {
		bar = styles.JoinHorizontal(styles.Top, bar, "  ", borderFg.Render("(a: show all)"))
	}
	return bar
}

func (v *tableView) View() string {
	return v.table.View()
}
