package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/burrow/pkg/search"
	"github.com/matzehuels/burrow/pkg/solver"
)

var watchHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// progressMsg carries a search snapshot.
type progressMsg search.Stats

// doneMsg ends the watch.
type doneMsg struct {
	res *solver.Result
	err error
}

// WatchModel is the bubbletea model for live search counters.
type WatchModel struct {
	Title    string
	Stats    search.Stats
	Result   *solver.Result
	Err      error
	Quitting bool

	cancel context.CancelFunc
}

// NewWatchModel creates a watch model. cancel stops the search when the
// user quits.
func NewWatchModel(title string, cancel context.CancelFunc) WatchModel {
	return WatchModel{Title: title, cancel: cancel}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case progressMsg:
		m.Stats = search.Stats(msg)
	case doneMsg:
		m.Result, m.Err = msg.res, msg.err
		if msg.res != nil && !msg.res.Cached {
			m.Stats = msg.res.Stats
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cost bound", "Expanded", "Generated", "Frontier", "Peak", "Compactions", "Elapsed").
		Rows([]string{
			fmt.Sprintf("%d", m.Stats.Cost),
			fmt.Sprintf("%d", m.Stats.Expanded),
			fmt.Sprintf("%d", m.Stats.Generated),
			fmt.Sprintf("%d", m.Stats.Frontier),
			fmt.Sprintf("%d", m.Stats.PeakFrontier),
			fmt.Sprintf("%d", m.Stats.Compactions),
			m.Stats.Elapsed.Round(10 * time.Millisecond).String(),
		}).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return watchHeaderStyle.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.Err.Error() + "\n")
	case m.Result != nil && m.Result.Cached:
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " Minimum cost " +
			StyleNumber.Render(fmt.Sprintf("%d", m.Result.Cost)) + " " + styleCached.Render(iconCached) + "\n")
	case m.Result != nil:
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " Minimum cost " +
			StyleNumber.Render(fmt.Sprintf("%d", m.Result.Cost)) + "\n")
	case m.Quitting:
		b.WriteString(StyleDim.Render("Stopping...") + "\n")
	}
	return b.String()
}

// watchSolve runs the search under a live progress view on stderr.
func watchSolve(ctx context.Context, runner *solver.Runner, opts solver.Options) (*solver.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	topo, _, err := solver.Prepare(opts)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Searching %d slots, %d rooms of depth %d", topo.Len(), topo.TypeCount(), topo.Depth())

	p := tea.NewProgram(NewWatchModel(title, cancel),
		tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	opts.Search.Progress = func(s search.Stats) { p.Send(progressMsg(s)) }

	type outcome struct {
		res *solver.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := runner.Execute(ctx, opts)
		done <- outcome{res, err}
		p.Send(doneMsg{res: res, err: err})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-done
		return nil, fmt.Errorf("watch: %w", err)
	}
	cancel()
	o := <-done
	return o.res, o.err
}
