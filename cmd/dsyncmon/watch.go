package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dantesync/dsyncmon/internal/sugar"
	"github.com/dantesync/dsyncmon/internal/ui"
	"github.com/dantesync/dsyncmon/pkg/dsync"
)

const pollPeriod = 2 * time.Second

func runWatch(poller *dsync.Poller, reference string, sampleRateHz int) error {
	m := watchModel{
		poller:     poller,
		reference:  reference,
		sampleRate: sampleRateHz,
		table:      setupWatchTable(),
	}
	return sugar.RunProgram(m)
}

type watchModel struct {
	poller     *dsync.Poller
	reference  string
	sampleRate int

	table   table.Model
	verdict dsync.FleetVerdict
	rounds  int
	err     error
}

type pollResultMessage []dsync.QueryOutcome
type tickMessage time.Time

func pollCommand(poller *dsync.Poller) tea.Cmd {
	return func() tea.Msg {
		return pollResultMessage(poller.Poll())
	}
}

func tickCommand() tea.Cmd {
	return tea.Tick(pollPeriod, func(t time.Time) tea.Msg {
		return tickMessage(t)
	})
}

func setupWatchTable() table.Model {
	columns := []table.Column{
		{Title: "Host", Width: 15},
		{Title: "Mode", Width: 8},
		{Title: "Lock", Width: 5},
		{Title: "Drift us/s", Width: 11},
		{Title: "Samp/sec", Width: 9},
		{Title: "RTT us", Width: 8},
		{Title: "Quality", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(styles)
	return t
}

func (m watchModel) Init() tea.Cmd {
	return pollCommand(m.poller)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tickMessage:
		return m, pollCommand(m.poller)
	case pollResultMessage:
		outcomes := []dsync.QueryOutcome(msg)
		m.verdict = dsync.Aggregate(outcomes, m.reference, m.sampleRate)
		m.rounds++

		rows := make([]table.Row, 0, len(outcomes))
		for _, outcome := range outcomes {
			if !outcome.Online() {
				rows = append(rows, table.Row{
					outcome.Target.Name, "--", "--", "--", "--", "--", "OFFLINE",
				})
				continue
			}
			sample := outcome.Sample
			tier, metrics := dsync.Classify(sample, m.sampleRate)
			lock := "no"
			if sample.IsLocked {
				lock = "YES"
			}
			rows = append(rows, table.Row{
				outcome.Target.Name,
				sample.Mode.String(),
				lock,
				fmt.Sprintf("%+.2f", sample.DriftRateUsPerSec),
				fmt.Sprintf("%.3f", metrics.DriftSamplesPerSec),
				fmt.Sprintf("%.0f", outcome.RTTUs),
				tier.String(),
			})
		}
		m.table.SetRows(rows)
		return m, tickCommand()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	s := ui.TitleStyle("dsyncmon - live fleet sync") + "\n\n"
	s += m.table.View() + "\n\n"
	if m.rounds == 0 {
		s += ui.HelpStyle("polling...") + "\n"
	} else {
		s += verdictLine(m.verdict) + "\n"
		s += ui.HelpStyle(fmt.Sprintf("round %d - every %s - q: exit", m.rounds, pollPeriod)) + "\n"
	}
	return s
}

func (m watchModel) Err() error {
	return m.err
}
