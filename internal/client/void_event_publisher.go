package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EventVoidRecorded is published after a void batch is saved.
const EventVoidRecorded = "void.recorded"

// VoidEventPublisher publishes void events for downstream consumers such as
// the kitchen display and reporting.
//
// Subject convention: <prefix>.void.recorded
//
// Publishing is non-fatal. Errors are logged and never returned, so a broker
// outage never fails a void that is already saved.
type VoidEventPublisher struct {
	publisher Publisher
	prefix    string
	log       zerolog.Logger
}

// VoidRecordedEvent is the JSON schema of a void event.
type VoidRecordedEvent struct {
	EventType   string             `json:"event_type"`
	Invoice     string             `json:"invoice"`
	POSProfile  string             `json:"pos_profile"`
	Branch      string             `json:"branch,omitempty"`
	VoidedBy    string             `json:"voided_by"`
	SessionUser string             `json:"session_user"`
	Items       []VoidedItemRecord `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// VoidedItemRecord is one voided line in an event.
type VoidedItemRecord struct {
	Item           string          `json:"item"`
	Rate           decimal.Decimal `json:"rate"`
	Quantity       decimal.Decimal `json:"quantity"`
	Amount         decimal.Decimal `json:"amount"`
	Accountability string          `json:"accountability"`
	Notes          string          `json:"notes,omitempty"`
}

// NewVoidEventPublisher creates a publisher. A nil publisher drops events.
func NewVoidEventPublisher(publisher Publisher, prefix string, log zerolog.Logger) *VoidEventPublisher {
	return &VoidEventPublisher{publisher: publisher, prefix: prefix, log: log}
}

// Subject returns the subject void events are published on.
func (p *VoidEventPublisher) Subject() string {
	if p.prefix == "" {
		return EventVoidRecorded
	}
	return p.prefix + "." + EventVoidRecorded
}

// PublishVoidRecorded publishes event, stamping its type.
func (p *VoidEventPublisher) PublishVoidRecorded(ctx context.Context, event *VoidRecordedEvent) {
	if p.publisher == nil || event == nil {
		return
	}

	subject := p.Subject()
	event.EventType = subject

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("invoice", event.Invoice).Msg("void event: failed to marshal event")
		return
	}

	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		p.log.Warn().Err(err).
			Str("subject", subject).
			Str("invoice", event.Invoice).
			Msg("void event: failed to publish (non-fatal)")
		return
	}

	p.log.Debug().
		Str("subject", subject).
		Str("invoice", event.Invoice).
		Int("items", len(event.Items)).
		Msg("void event: published")
}
