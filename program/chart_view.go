package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
	"github.com/dustin/go-humanize"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/pipeline"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/rank"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

const allCountries = "All Countries"

// chartOrder plots points oldest first. Undated records sort first.
var chartOrder = pipeline.SortSpec{Column: record.ColumnReportDate, Direction: pipeline.Asc}

type countryItem struct {
	Country string
	Ranked  bool
	Entry   rank.Entry
	Window  int
}

func (i countryItem) Title() string {
	if i.Country == "" {
		return allCountries
	}
	if i.Ranked {
		return fmt.Sprintf("#%-3d %s", i.Entry.Rank, i.Country)
	}
	return "     " + i.Country
}

func (i countryItem) Description() string {
	if i.Country == "" {
		return "     every country"
	}
	if i.Ranked {
		return fmt.Sprintf("     %s cases / %dd", humanize.Comma(int64(i.Entry.Cases)), i.Window)
	}
	return "     -"
}

func (i countryItem) FilterValue() string { return i.Country }

// chartView is the time-series tab: a country selector beside the plot. It
// keeps its own date range and always uses open bounds.
type chartView struct {
	list      list.Model
	listStyle styles.Style
	plot      *plot.Canvas
	dates     dateRange
	logScale  bool

	plotWidth, plotHeight int

	criteria pipeline.FilterCriteria
	view     pipeline.View
	series   pipeline.TimeSeries
	board    rank.Leaderboard
}

func newChartView(logScale bool) chartView {
	const (
		defaultWidth  = 80
		defaultHeight = 20
	)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = styles.NewStyle().
		Border(styles.NormalBorder(), false, false, false, true).
		BorderForeground(borderColor).
		Foreground(selectedColor).
		Bold(false).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Foreground(selectedColor)
	d.ShowDescription = true

	l := list.New([]list.Item{countryItem{}}, d, defaultWidth/2-2, defaultHeight)
	l.Styles.NoItems = l.Styles.NoItems.
		Padding(0, 2)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	// l toggles the y scale
	l.KeyMap.NextPage.SetKeys("right", "pgdown", "f", "d")

	p := plot.NewCanvas(defaultWidth, defaultHeight)
	p.ShowAxis = false

	return chartView{
		list:       l,
		plot:       &p,
		dates:      newDateRange(),
		logScale:   logScale,
		plotWidth:  defaultWidth,
		plotHeight: defaultHeight,
		criteria:   pipeline.FilterCriteria{Bounds: pipeline.BoundsOpen},
	}
}

func (v *chartView) isEditing() bool { return v.dates.isEditing() }

func (v *chartView) setSize(listWidth, plotWidth, height int) {
	v.list.SetSize(listWidth, height)
	v.list.Styles.Title = styles.NewStyle()
	v.list.Styles.PaginationStyle = styles.NewStyle()
	v.list.Styles.HelpStyle = styles.NewStyle()
	v.listStyle = styles.NewStyle().Width(listWidth).Height(height)

	// plot canvas + 1 label line, wrapped in a border (adds 2 lines).
	v.plotHeight = max(1, height-3)
	v.plotWidth = max(1, plotWidth-2)
	v.resizePlot()
	v.fill()
}

func (v *chartView) resizePlot() {
	p := plot.NewCanvas(v.plotWidth, v.plotHeight)
	p.NumDataPoints = v.plot.NumDataPoints
	p.ShowAxis = v.plot.ShowAxis
	p.LineColors = v.plot.LineColors
	v.plot = &p
}

// setCountries lists "All Countries", then the ranked countries, then the
// rest in dataset order. The current selection is kept if still present.
func (v *chartView) setCountries(countries []string, board rank.Leaderboard, latest string) tui.Cmd {
	v.dates.setLatest(latest)
	v.board = board

	items := make([]list.Item, 0, len(countries)+1)
	items = append(items, countryItem{})
	ranked := make(map[string]struct{}, len(board.Entries))
	for _, e := range board.Entries {
		ranked[e.Country] = struct{}{}
		items = append(items, countryItem{Country: e.Country, Ranked: true, Entry: e, Window: board.WindowDays})
	}
	for _, c := range countries {
		if _, ok := ranked[c]; ok {
			continue
		}
		items = append(items, countryItem{Country: c})
	}

	cmd := v.list.SetItems(items)
	selected := 0
	for i, it := range items {
		if it.(countryItem).Country == v.criteria.SelectedCountry {
			selected = i
			break
		}
	}
	if selected == 0 {
		v.criteria.SelectedCountry = ""
	}
	v.list.Select(selected)
	return cmd
}

func (v *chartView) apply(records []record.Record) {
	v.view = pipeline.Apply(records, v.criteria, chartOrder)
	v.series = pipeline.Project(v.view.Records)
	v.fill()
}

func (v *chartView) handleKey(msg tui.KeyMsg) (changed bool, cmd tui.Cmd) {
	if v.dates.isEditing() {
		return v.dates.update(msg, &v.criteria)
	}
	switch {
	case key.Matches(msg, keys.StartDate):
		return false, v.dates.begin(fieldStart, v.criteria)
	case key.Matches(msg, keys.EndDate):
		return false, v.dates.begin(fieldEnd, v.criteria)
	case key.Matches(msg, keys.ShowAll):
		if !v.criteria.HasDateRange() {
			return false, nil
		}
		v.dates.clear(&v.criteria)
		return true, nil
	case key.Matches(msg, keys.Select):
		item, ok := v.list.SelectedItem().(countryItem)
		if !ok || item.Country == v.criteria.SelectedCountry {
			return false, nil
		}
		v.criteria.SelectedCountry = item.Country
		return true, nil
	case key.Matches(msg, keys.AllCtry):
		v.list.Select(0)
		if v.criteria.SelectedCountry == "" {
			return false, nil
		}
		v.criteria.SelectedCountry = ""
		return true, nil
	case key.Matches(msg, keys.Scale):
		v.logScale = !v.logScale
		v.fill()
		return false, nil
	}
	v.list, cmd = v.list.Update(msg)
	return false, cmd
}

// fill redraws the canvas from the current projection. A zero series anchors
// the y axis at YMin.
func (v *chartView) fill() {
	n := v.series.Len()
	if n == 0 {
		v.plot.NumDataPoints = 0
		return
	}
	// a single point is drawn as a flat segment
	points := max(2, n)

	data := make([][]float64, 3)
	for i := range data {
		data[i] = make([]float64, points)
	}
	for s, series := range v.series.Series {
		for j := 0; j < points; j++ {
			value := series.Values[min(j, n-1)]
			if v.logScale {
				value = math.Log(max(1, value))
			}
			data[s][j] = value
		}
	}
	for j := range data[2] {
		data[2][j] = v.series.YMin
	}

	var cases, deaths, baseline plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		cases, deaths, baseline = plot.Red, plot.LightGray, plot.DimGray
	} else {
		cases, deaths, baseline = plot.Red, plot.Black, plot.LightGray
	}
	v.plot.LineColors = []plot.Color{cases, deaths, baseline}
	v.plot.NumDataPoints = points
	v.plot.Fill(data)
}

// selectedName is the chart title for the current country selection, with
// its leaderboard rank when it has one.
func (v *chartView) selectedName() string {
	country := v.criteria.SelectedCountry
	if country == "" {
		return allCountries
	}
	if e, ok := v.board.Lookup(country); ok {
		return fmt.Sprintf("%s #%d", country, e.Rank)
	}
	return country
}

func (v *chartView) filterBar() string {
	bar := styles.JoinHorizontal(styles.Top, v.dates.View(), "  ", selectedFg.Render(v.selectedName()))
	if v.dates.edited {
		bar = styles.JoinHorizontal(styles.Top, bar, "  ", borderFg.Render("(a: show all)"))
	}
	return bar
}

func (v *chartView) View() string {
	left := v.listStyle.Render(v.list.View())

	canvas := ""
	if v.series.Len() > 0 {
		canvas = v.plot.String()
	}
	if canvas == "" {
		canvas = emptyPlot(v.plotWidth, v.plotHeight)
	}

	right := plotStyle.Render(styles.JoinVertical(styles.Top, canvas, v.labels()))
	return styles.JoinHorizontal(styles.Top, left, right)
}

// labels renders the first and last category around the legend and the
// scale hint, dropping the categories when the pane is too narrow.
func (v *chartView) labels() string {
	linColor := borderFg
	logColor := borderFg
	if v.logScale {
		logColor = selectedFg
	} else {
		linColor = selectedFg
	}
	linLog := linColor.Render("LIN") + " " + logColor.Render("LOG")

	legend := fmt.Sprintf("%s/%s max %s",
		pipeline.SeriesCases, pipeline.SeriesDeaths,
		humanize.Comma(int64(v.series.YMax())))
	middle := legend + "  " + "LIN LOG"
	styledMiddle := borderFg.Render(legend) + "  " + linLog

	w := v.plotWidth
	n := v.series.Len()
	if n == 0 {
		return " " + linLog
	}
	leftLabel, rightLabel := v.series.Labels[0], v.series.Labels[n-1]
	minWidth := len(leftLabel) + len(rightLabel) + len(middle) + 4
	if w < minWidth {
		return " " + linLog
	}
	spaceTotal := max(2, w-(len(leftLabel)+len(rightLabel)+len(middle)))
	leftGap := spaceTotal / 2
	rightGap := spaceTotal - leftGap
	return leftLabel +
		strings.Repeat(" ", leftGap) +
		styledMiddle +
		strings.Repeat(" ", rightGap) +
		borderFg.Render(rightLabel)
}

func emptyPlot(w, h int) string {
	var sb strings.Builder
	line := strings.Repeat(" ", max(0, w))
	for i := 0; i < max(1, h); i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	return sb.String()
}
