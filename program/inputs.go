package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/pipeline"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

type dateField int

const (
	fieldNone dateField = iota
	fieldStart
	fieldEnd
)

// dateRange is the start/end input pair of one view. Edits are committed
// into the view's criteria on enter and discarded on esc.
type dateRange struct {
	start   textinput.Model
	end     textinput.Model
	editing dateField
	// edited is set once a bound was committed and cleared by show-all.
	edited bool
}

func newDateInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = record.DateLayout
	in.CharLimit = len("2006-01-02T15:04:05Z07:00")
	in.Width = len(record.DateLayout)
	return in
}

func newDateRange() dateRange {
	return dateRange{
		start: newDateInput("from "),
		end:   newDateInput("to "),
	}
}

func (d *dateRange) isEditing() bool { return d.editing != fieldNone }

// setLatest shows the newest report date as the placeholder of both inputs.
func (d *dateRange) setLatest(date string) {
	if date == "" {
		date = record.DateLayout
	}
	d.start.Placeholder = date
	d.end.Placeholder = date
}

func (d *dateRange) input(f dateField) *textinput.Model {
	if f == fieldEnd {
		return &d.end
	}
	return &d.start
}

func (d *dateRange) begin(f dateField, c pipeline.FilterCriteria) tui.Cmd {
	d.editing = f
	in := d.input(f)
	if f == fieldEnd {
		in.SetValue(c.EndDate)
	} else {
		in.SetValue(c.StartDate)
	}
	in.CursorEnd()
	return in.Focus()
}

// update feeds a key to the input being edited. changed reports whether c was
// modified.
func (d *dateRange) update(msg tui.KeyMsg, c *pipeline.FilterCriteria) (changed bool, cmd tui.Cmd) {
	in := d.input(d.editing)
	switch {
	case key.Matches(msg, keys.Apply):
		value := strings.TrimSpace(in.Value())
		if norm := record.NormalizeDate(value); norm != "" {
			value = norm
		}
		if d.editing == fieldEnd {
			c.EndDate = value
		} else {
			c.StartDate = value
		}
		in.SetValue(value)
		in.Blur()
		d.editing = fieldNone
		d.edited = c.HasDateRange()
		return true, nil
	case key.Matches(msg, keys.Cancel):
		if d.editing == fieldEnd {
			in.SetValue(c.EndDate)
		} else {
			in.SetValue(c.StartDate)
		}
		in.Blur()
		d.editing = fieldNone
		return false, nil
	}
	*in, cmd = in.Update(msg)
	return false, cmd
}

// clear drops both bounds from c.
func (d *dateRange) clear(c *pipeline.FilterCriteria) {
	*c = c.ClearDates()
	d.start.Reset()
	d.end.Reset()
	d.edited = false
}

func (d *dateRange) View() string {
	return styles.JoinHorizontal(styles.Top, d.start.View(), "  ", d.end.View())
}
