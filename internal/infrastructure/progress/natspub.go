package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

// Publisher mirrors claim progress events onto a NATS subject so dashboards
// can follow long batches without tailing the operator console. Publishing is
// best-effort: a failed publish is logged, never surfaced to the pipeline.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

type PublisherOptions struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
}

func NewPublisher(url, subject string) (*Publisher, error) {
	return NewPublisherWithOptions(url, subject, PublisherOptions{})
}

func NewPublisherWithOptions(url, subject string, options PublisherOptions) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("claimfetch"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type claimEvent struct {
	Event      string `json:"event"`
	ClaimID    string `json:"claim_id,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Downloaded int    `json:"downloaded,omitempty"`
	Problem    bool   `json:"problem,omitempty"`
	Reason     string `json:"reason,omitempty"`
	RunID      string `json:"run_id,omitempty"`
	Claims     int    `json:"claims,omitempty"`
	Problems   int    `json:"problems,omitempty"`
}

func (p *Publisher) ClaimStarted(claimID string) {
	p.publish(claimEvent{Event: "claim_started", ClaimID: claimID})
}

func (p *Publisher) ClaimStage(claimID, stage string) {
	p.publish(claimEvent{Event: "claim_stage", ClaimID: claimID, Stage: stage})
}

func (p *Publisher) ClaimFinished(outcome domain.ClaimOutcome) {
	p.publish(claimEvent{
		Event:      "claim_finished",
		ClaimID:    outcome.ClaimID,
		Downloaded: outcome.DocumentsDownloaded,
		Problem:    outcome.Problem,
		Reason:     outcome.Reason,
	})
}

func (p *Publisher) BatchFinished(report domain.RunReport) {
	p.publish(claimEvent{
		Event:    "batch_finished",
		RunID:    report.RunID,
		Claims:   len(report.Outcomes),
		Problems: len(report.ProblemClaims()),
	})
}

func (p *Publisher) publish(event claimEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal progress event: %v", err)
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		log.Printf("nats publish progress event: %v", err)
	}
}
