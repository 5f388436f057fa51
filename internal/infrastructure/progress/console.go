// Package progress fans claim status events out to the operator and to
// optional external subscribers.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
)

// ConsoleReporter prints one status line per claim event. Writes are
// serialized so concurrent reporters never interleave lines.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) ClaimStarted(claimID string) {
	r.printf("sinistro %s: iniciando\n", claimID)
}

func (r *ConsoleReporter) ClaimStage(claimID, stage string) {
	r.printf("sinistro %s: %s\n", claimID, stage)
}

func (r *ConsoleReporter) ClaimFinished(outcome domain.ClaimOutcome) {
	if outcome.Problem {
		r.printf("sinistro %s: PROBLEMA (%s), %d documento(s) baixado(s)\n",
			outcome.ClaimID, outcome.Reason, outcome.DocumentsDownloaded)
		return
	}
	r.printf("sinistro %s: concluído, %d documento(s) baixado(s)\n",
		outcome.ClaimID, outcome.DocumentsDownloaded)
}

func (r *ConsoleReporter) BatchFinished(report domain.RunReport) {
	problems := report.ProblemClaims()
	r.printf("lote %s: %d sinistro(s), %d com problema, duração %s\n",
		report.RunID, len(report.Outcomes), len(problems),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
}

func (r *ConsoleReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// MultiReporter forwards every event to each wrapped reporter in order.
type MultiReporter []ports.ProgressReporter

func (m MultiReporter) ClaimStarted(claimID string) {
	for _, r := range m {
		r.ClaimStarted(claimID)
	}
}

func (m MultiReporter) ClaimStage(claimID, stage string) {
	for _, r := range m {
		r.ClaimStage(claimID, stage)
	}
}

func (m MultiReporter) ClaimFinished(outcome domain.ClaimOutcome) {
	for _, r := range m {
		r.ClaimFinished(outcome)
	}
}

func (m MultiReporter) BatchFinished(report domain.RunReport) {
	for _, r := range m {
		r.BatchFinished(report)
	}
}
