package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/keilerkonzept/covid-dashboard-tui/internal/ingest"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/pipeline"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/rank"
	"github.com/keilerkonzept/covid-dashboard-tui/internal/record"
)

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	errorColor    = styles.AdaptiveColor{Light: "1", Dark: "9"}
	selectedFg    = styles.NewStyle().Foreground(selectedColor)
	borderFg      = styles.NewStyle().Foreground(borderColor)
	errorFg       = styles.NewStyle().Foreground(errorColor)
	plotStyle     = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

type fetcher interface {
	Fetch(ctx context.Context) ([]record.Record, ingest.Report, error)
	Source() string
}

type recordsMsg struct {
	records []record.Record
	report  ingest.Report
}

type errMsg struct{ err error }

type tab int

const (
	tabTable tab = iota
	tabChart
)

func (t tab) String() string {
	if t == tabChart {
		return "Chart"
	}
	return "Table"
}

type modelConfig struct {
	bounds       pipeline.Bounds
	rank         rank.Config
	viewSplit    int
	statsEnabled bool
	statsWindow  int
	logScale     bool
}

type model struct {
	width, height int
	cfg           modelConfig

	ctx     context.Context
	fetcher fetcher
	logger  *zap.Logger
	metrics *dashMetrics
	help    help.Model

	tab     tab
	loading bool
	err     error

	// dataset of the last successful fetch; replaced wholesale on reload
	records []record.Record
	report  ingest.Report
	board   rank.Leaderboard

	table tableView
	chart chartView
}

func newModel(ctx context.Context, f fetcher, logger *zap.Logger, cfg modelConfig) *model {
	metrics := newDashMetrics(cfg.statsWindow)
	metrics.setEnabled(cfg.statsEnabled)

	m := &model{
		cfg:     cfg,
		ctx:     ctx,
		fetcher: f,
		logger:  logger,
		metrics: metrics,
		help:    help.New(),
		loading: true,
		table:   newTableView(cfg.bounds),
		chart:   newChartView(cfg.logScale),
	}
	m.resize(80, 24)
	return m
}

func (m *model) Init() tui.Cmd {
	return m.fetchCmd()
}

// fetchCmd runs one ingestion on bubbletea's command goroutine.
func (m *model) fetchCmd() tui.Cmd {
	return func() tui.Msg {
		start := time.Now()
		records, report, err := m.fetcher.Fetch(m.ctx)
		m.metrics.observeFetch(time.Since(start), report.Kept, len(report.Skipped), err)
		if err != nil {
			return errMsg{err}
		}
		return recordsMsg{records: records, report: report}
	}
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case recordsMsg:
		return m, m.load(msg)
	case errMsg:
		m.loading = false
		m.err = msg.err
		m.logger.Error("fetch failed, keeping last dataset",
			zap.String("kind", ingest.KindName(msg.err)),
			zap.Int("records", len(m.records)),
			zap.Error(msg.err))
		return m, nil
	case tui.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tui.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) load(msg recordsMsg) tui.Cmd {
	m.loading = false
	m.err = nil
	m.records = msg.records
	m.report = msg.report
	m.board = rank.Build(m.records, m.cfg.rank)

	countries := pipeline.Countries(m.records)
	latest, _ := pipeline.LatestDate(m.records)
	m.table.setCountries(countries, latest)
	cmd := m.chart.setCountries(countries, m.board, latest)
	m.logger.Info("dataset loaded",
		zap.Int("records", len(m.records)),
		zap.Int("countries", len(countries)),
		zap.Int("ranked", len(m.board.Entries)),
		zap.String("latest", latest))
	m.refresh()
	return cmd
}

func (m *model) handleKey(msg tui.KeyMsg) tui.Cmd {
	if msg.Type == tui.KeyCtrlC {
		return tui.Quit
	}

	if !m.isEditing() {
		switch {
		case key.Matches(msg, keys.Quit):
			return tui.Quit
		case key.Matches(msg, keys.SwitchTab):
			if m.tab == tabTable {
				m.tab = tabChart
			} else {
				m.tab = tabTable
			}
			return nil
		case key.Matches(msg, keys.Reload):
			if m.loading {
				m.logger.Debug("reload ignored, fetch in flight")
				return nil
			}
			m.loading = true
			m.logger.Info("reloading", zap.String("source", m.fetcher.Source()))
			return m.fetchCmd()
		}
	}

	var (
		changed bool
		cmd     tui.Cmd
	)
	if m.tab == tabChart {
		changed, cmd = m.chart.handleKey(msg)
	} else {
		changed, cmd = m.table.handleKey(msg)
	}
	if changed {
		m.refresh()
	}
	return cmd
}

func (m *model) isEditing() bool {
	if m.tab == tabChart {
		return m.chart.isEditing()
	}
	return m.table.isEditing()
}

// refresh re-runs the pipeline for both views from the current state.
func (m *model) refresh() {
	start := time.Now()
	m.table.apply(m.records)
	m.chart.apply(m.records)
	m.metrics.observePipeline(time.Since(start))
	m.logger.Debug("pipeline",
		zap.Stringer("sort", m.table.sort),
		zap.Stringer("bounds", m.table.criteria.Bounds),
		zap.Int("table_rows", len(m.table.view.Records)),
		zap.Int("chart_points", m.chart.series.Len()))
}

func (m *model) statsLines() int {
	if !m.cfg.statsEnabled {
		return 0
	}
	// title + 5 metric lines
	return 6
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	// tab bar, filter bar, status line, help line
	const chromeLines = 4
	available := max(1, m.height-chromeLines-m.statsLines())

	m.table.setSize(max(1, width), available)
	left, right := computePaneWidths(width, m.cfg.viewSplit)
	m.chart.setSize(max(1, left), max(1, right), available)
}

func (m *model) View() string {
	var body, bar string
	if m.tab == tabChart {
		body, bar = m.chart.View(), m.chart.filterBar()
	} else {
		body, bar = m.table.View(), m.table.filterBar()
	}

	parts := []string{m.tabBar(), bar, body, m.statusLine()}
	if m.cfg.statsEnabled {
		parts = append(parts, m.statsBlock())
	}
	parts = append(parts, m.help.View(keys))
	return styles.JoinVertical(styles.Left, parts...)
}

func (m *model) tabBar() string {
	var tabs []string
	for _, t := range []tab{tabTable, tabChart} {
		if t == m.tab {
			tabs = append(tabs, selectedFg.Render("["+t.String()+"]"))
		} else {
			tabs = append(tabs, borderFg.Render(" "+t.String()+" "))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *model) statusLine() string {
	if m.err != nil {
		return errorFg.Render("ERROR: " + m.err.Error())
	}
	if m.loading {
		return borderFg.Render("loading " + m.fetcher.Source() + " ...")
	}
	rows := len(m.table.view.Records)
	if m.tab == tabChart {
		rows = m.chart.series.Len()
	}
	return borderFg.Render(fmt.Sprintf("%s of %s records  sort %s",
		humanize.Comma(int64(rows)),
		humanize.Comma(int64(len(m.records))),
		m.table.sort))
}

func (m *model) statsBlock() string {
	snap := m.metrics.snapshot()
	title := "RUNTIME STATS"
	if m.loading {
		title = "RUNTIME STATS (FETCHING)"
	}
	lines := []string{
		title,
		fmt.Sprintf("records: %s loaded, %s skipped",
			humanize.Comma(int64(snap.records)), humanize.Comma(int64(snap.skipped))),
		fmt.Sprintf("fetches: %d (%d failed), last took %s",
			snap.fetches, snap.fetchFailures, formatMetricDuration(snap.lastFetch)),
		fmt.Sprintf("pipeline: %d runs, last %s avg %s max %s (n=%d)",
			snap.pipelineRuns,
			formatMetricDuration(snap.pipeline.last),
			formatMetricDuration(snap.pipeline.avg),
			formatMetricDuration(snap.pipeline.max),
			snap.pipeline.n),
		fmt.Sprintf("leaderboard: top %d over %d days ending %s",
			len(m.board.Entries), m.board.WindowDays, orDash(m.board.WindowEnd)),
		fmt.Sprintf("source: %s", m.fetcher.Source()),
	}
	return errorFg.Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return d.Round(10 * time.Microsecond).String()
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	left = totalWidth * splitPercent / 100
	left = max(1, min(totalWidth-1, left))

	// country names need room once the terminal allows it
	const minPane = 18
	if totalWidth >= minPane*2 {
		left = max(minPane, min(totalWidth-minPane, left))
	}
	return left, totalWidth - left
}
