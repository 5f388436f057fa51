package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

func TestConsoleReporterLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.ClaimStarted("12345")
	r.ClaimStage("12345", "descobrindo documentos")
	r.ClaimFinished(domain.ClaimOutcome{ClaimID: "12345", DocumentsDownloaded: 3})
	r.ClaimFinished(domain.ClaimOutcome{ClaimID: "777", Problem: true, Reason: "falha de autenticação"})

	started := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	r.BatchFinished(domain.RunReport{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Outcomes: []domain.ClaimOutcome{
			{ClaimID: "12345", DocumentsDownloaded: 3},
			{ClaimID: "777", Problem: true},
		},
	})

	out := buf.String()
	for _, want := range []string{
		"sinistro 12345: iniciando",
		"descobrindo documentos",
		"sinistro 12345: concluído, 3 documento(s)",
		"sinistro 777: PROBLEMA (falha de autenticação)",
		"lote run-1: 2 sinistro(s), 1 com problema",
		"1m30s",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiReporterFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := MultiReporter{NewConsoleReporter(&a), NewConsoleReporter(&b)}

	m.ClaimStarted("42")

	if a.Len() == 0 || b.Len() == 0 {
		t.Fatalf("both reporters should receive the event: a=%q b=%q", a.String(), b.String())
	}
}
