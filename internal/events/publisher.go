package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Publisher emits pipeline lifecycle events to Kafka so downstream
// consumers (dashboards, notification bots) can react to extraction
// outcomes. A Publisher built with an empty broker is a no-op, and a
// failed publish is logged, never escalated.
type Publisher struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

func NewPublisher(broker, topic string, log *logrus.Logger) *Publisher {
	p := &Publisher{log: log}
	if broker == "" {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return p
}

type submissionEvent struct {
	Type         string    `json:"type"`
	SubmissionID uuid.UUID `json:"submission_id"`
	Clips        int       `json:"clips,omitempty"`
	Stage        string    `json:"stage,omitempty"`
	Cause        string    `json:"cause,omitempty"`
	At           time.Time `json:"at"`
}

// SubmissionFinalized reports a job that reached the finalized state.
func (p *Publisher) SubmissionFinalized(submissionID uuid.UUID, clips int) {
	p.publish(submissionEvent{
		Type:         "submission.finalized",
		SubmissionID: submissionID,
		Clips:        clips,
		At:           time.Now(),
	})
}

// SubmissionFailed reports a job that ended in the failed state.
func (p *Publisher) SubmissionFailed(submissionID uuid.UUID, stage string, cause error) {
	p.publish(submissionEvent{
		Type:         "submission.failed",
		SubmissionID: submissionID,
		Stage:        stage,
		Cause:        cause.Error(),
		At:           time.Now(),
	})
}

func (p *Publisher) publish(event submissionEvent) {
	if p.writer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.WithField("error", err.Error()).Error("Failed to marshal pipeline event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SubmissionID.String()),
		Value: payload,
	})
	if err != nil {
		p.log.WithFields(logrus.Fields{"type": event.Type, "error": err.Error()}).Error("Failed to publish pipeline event")
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
