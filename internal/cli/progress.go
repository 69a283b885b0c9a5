package cli

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/burrow/pkg/search"
)

const heartbeatEvery = 10 * time.Second

// searchReporter logs search progress. Each rise of the cost bound is logged
// at debug level and a heartbeat at info level shows a long search is alive.
//
// The reporter is not safe for concurrent use; the engine calls it from the
// searching goroutine only.
type searchReporter struct {
	logger   *log.Logger
	every    time.Duration
	lastCost uint64
	lastLog  time.Time
}

func newSearchReporter(logger *log.Logger) *searchReporter {
	return &searchReporter{logger: logger, every: heartbeatEvery, lastLog: time.Now()}
}

func (r *searchReporter) onProgress(s search.Stats) {
	if s.Cost > r.lastCost {
		r.logger.Debugf("Cost bound %d (expanded: %d, frontier: %d)", s.Cost, s.Expanded, s.Frontier)
		r.lastCost = s.Cost
	}
	if time.Since(r.lastLog) >= r.every {
		r.logger.Infof("Searching... %v elapsed, cost bound %d (expanded: %d, frontier: %d)",
			s.Elapsed.Truncate(time.Second), s.Cost, s.Expanded, s.Frontier)
		r.lastLog = time.Now()
	}
}
