package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// MatchesStreamName carries match reports published by recognizer nodes.
	MatchesStreamName  = "MATCHES"
	MatchesSubjectBase = "matches"

	// ControlSubject is the plain-NATS subject recognizer nodes subscribe to
	// for search start/stop commands. Delivery is fire-and-forget.
	ControlSubject = "recognizer.control"
)

// SearchStatusCommand tells the recognizer to stop or resume searching a case.
type SearchStatusCommand struct {
	CaseID string `json:"case_id"`
	Action string `json:"action"` // accept, research
}

type Producer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewProducer(natsURL string) (*Producer, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Producer{nc: nc, js: js}, nil
}

// EnsureStreams creates the MATCHES stream if it doesn't exist.
// Retries up to 30 times (1s apart) to handle NATS startup delay.
func (p *Producer) EnsureStreams(ctx context.Context) error {
	cfg := jetstream.StreamConfig{
		Name:        MatchesStreamName,
		Subjects:    []string{MatchesSubjectBase + ".>"},
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     100000,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		Duplicates:  30 * time.Second,
		Description: "Match reports from recognizer nodes",
	}

	const maxAttempts = 30
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := p.js.CreateOrUpdateStream(opCtx, cfg)
		cancel()
		if err == nil {
			slog.Info("ensured NATS stream", "name", cfg.Name)
			return nil
		}
		if attempt == maxAttempts {
			return fmt.Errorf("create stream %s: %w (after %d attempts)", cfg.Name, err, maxAttempts)
		}
		slog.Warn("ensure NATS stream (retrying...)", "name", cfg.Name, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return nil
}

// PublishMatchReport publishes a match report for ingestion. Exists for
// recognizer-side tooling and tests; the API process only consumes.
func (p *Producer) PublishMatchReport(ctx context.Context, caseID string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal match report: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", MatchesSubjectBase, caseID)
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish match report: %w", err)
	}
	return nil
}

// SetSearchStatus tells the recognizer to stop ("accept") or resume
// ("research") searching for the case. Plain NATS publish, no delivery
// guarantee: callers treat failures as best-effort.
func (p *Producer) SetSearchStatus(ctx context.Context, caseID, action string) error {
	payload, err := json.Marshal(SearchStatusCommand{CaseID: caseID, Action: action})
	if err != nil {
		return fmt.Errorf("marshal search status: %w", err)
	}
	if err := p.nc.Publish(ControlSubject, payload); err != nil {
		return fmt.Errorf("publish search status: %w", err)
	}
	return nil
}

func (p *Producer) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Producer) Close() {
	p.nc.Close()
}
