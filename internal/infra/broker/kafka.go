package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"acharam/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// 注文イベントをKafkaへ送る
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 2 * time.Second,
		ReadTimeout:  2 * time.Second,
	}

	return &Producer{writer: writer}
}

// keyは注文ID。同じ注文のイベントは同じパーティションに入る
func (p *Producer) PublishEvent(ctx context.Context, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("broker: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("broker: write message: %w", err)
	}

	util.GetLogger().Debug("published event", zap.String("key", key), zap.String("topic", p.writer.Topic))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// KAFKA_BROKERS未設定のとき
type NopProducer struct{}

func (NopProducer) PublishEvent(ctx context.Context, key string, event interface{}) error {
	return nil
}

func (NopProducer) Close() error { return nil }
