package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/burrow/pkg/search"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates one status line on a terminal. While a search runs, the
// engine feeds it statistics through track and the line shows the latest
// counts.
type spinner struct {
	out   io.Writer
	label string
	tick  time.Duration

	mu      sync.Mutex
	stats   search.Stats
	tracked bool
	drawn   int // width of the last line drawn

	started bool
	once    sync.Once
	quit    chan struct{}
	stopped chan struct{}
}

func newSpinner(out io.Writer, label string) *spinner {
	return &spinner{
		out:     out,
		label:   label,
		tick:    80 * time.Millisecond,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// start draws until stop is called or ctx ends.
func (s *spinner) start(ctx context.Context) {
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				s.clear()
				return
			case <-s.quit:
				s.clear()
				return
			case <-ticker.C:
				s.draw(i)
			}
		}
	}()
}

// track records the latest search statistics. It has the shape of
// search.Options.Progress.
func (s *spinner) track(st search.Stats) {
	s.mu.Lock()
	s.stats, s.tracked = st, true
	s.mu.Unlock()
}

// stop halts the animation and clears the line. Only the first call waits,
// and a spinner that never started returns at once.
func (s *spinner) stop() {
	s.once.Do(func() {
		close(s.quit)
		if s.started {
			<-s.stopped
		}
	})
}

func (s *spinner) draw(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]) + " " + StyleDim.Render(s.status())
	pad := max(s.drawn-lipgloss.Width(line), 0)
	fmt.Fprintf(s.out, "\r%s%s", line, strings.Repeat(" ", pad))
	s.drawn = lipgloss.Width(line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
}

// status is the text after the frame. Callers hold s.mu.
func (s *spinner) status() string {
	if !s.tracked {
		return s.label + "..."
	}
	return fmt.Sprintf("%s... %s expanded, frontier %s, cost bound %s",
		s.label,
		humanize.Comma(int64(s.stats.Expanded)),
		humanize.Comma(int64(s.stats.Frontier)),
		humanize.Comma(int64(s.stats.Cost)))
}

// isTerminal reports whether w is a terminal. Spinners only draw on one.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
