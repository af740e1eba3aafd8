package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// LocationStream appends every sample to a Kafka topic keyed by user id, so one
// driver's samples stay ordered within a partition.
type LocationStream struct {
	writer *kafka.Writer
}

func NewLocationStream(brokers []string, topic string, logger *slog.Logger) *LocationStream {
	log := logger.With("component", "kafka")
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Warn("location batch failed", "messages", len(messages), "error", err)
			}
		},
	}
	return &LocationStream{writer: w}
}

func (s *LocationStream) Name() string { return "kafka" }

func (s *LocationStream) WriteLocation(ctx context.Context, sample models.LocationSample) error {
	msg, err := locationMessage(sample)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, msg)
}

func locationMessage(sample models.LocationSample) (kafka.Message, error) {
	b, err := json.Marshal(sample)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(sample.UserID), Value: b, Time: sample.Timestamp}, nil
}

func (s *LocationStream) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
