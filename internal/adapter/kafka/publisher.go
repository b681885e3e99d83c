// Package kafka publishes computed risk rows to a Kafka topic so
// downstream consumers (alerting, archival) see every fresh computation.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/divergentwx/outage-risk-service/internal/config"
	"github.com/divergentwx/outage-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces risk rows to a Kafka topic.
// It implements risk.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured risk topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaRiskTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishRows serializes and publishes a computed result set in a single
// WriteMessages call.
func (p *Publisher) PublishRows(ctx context.Context, rows []domain.RiskRow) error {
	if len(rows) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeRow(rows[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeRow marshals a RiskRow into a Kafka message keyed by county and
// state, so per-county ordering is preserved across computations.
func serializeRow(row domain.RiskRow) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize risk row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.County + "|" + row.State),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(strconv.Itoa(row.Severity))},
			{Key: "generated_at", Value: []byte(row.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
