// Package kafka publishes committed spin deletions to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type deletionMessage struct {
	ActorID     string   `json:"actorId"`
	Chunk       int      `json:"chunk"`
	IDs         []string `json:"ids"`
	CommittedAt int64    `json:"committedAt"`
}

// AuditPublisher writes one message per committed delete chunk, keyed by
// actor so an actor's chunks stay ordered within a partition.
type AuditPublisher struct {
	writer messageWriter
	Topic  string
}

func NewAuditPublisher(brokers []string, topic string) *AuditPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &AuditPublisher{writer: writer, Topic: topic}
}

func (p *AuditPublisher) RecordDeletion(ctx context.Context, rec domain.DeletionRecord) error {
	msg, err := encodeDeletion(rec)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}

func encodeDeletion(rec domain.DeletionRecord) (kafka.Message, error) {
	ids := rec.IDs
	if ids == nil {
		ids = []string{}
	}
	value, err := json.Marshal(deletionMessage{
		ActorID:     rec.ActorID,
		Chunk:       rec.Chunk,
		IDs:         ids,
		CommittedAt: rec.CommittedAt.UnixMilli(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal deletion record: %w", err)
	}
	return kafka.Message{
		Key:   []byte(rec.ActorID),
		Value: value,
		Time:  rec.CommittedAt,
	}, nil
}

var _ domain.DeletionAuditor = (*AuditPublisher)(nil)
