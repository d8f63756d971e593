package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"github.com/workhubhq/presence-gateway/internal/delivery/kafka"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

type Producer interface {
	PublishPresenceChanged(ctx context.Context, userID int64, online bool) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishPresenceChanged(ctx context.Context, userID int64, online bool) error {
	event := kafka.PresenceChangedEvent{
		UserID:    userID,
		Online:    online,
		Timestamp: time.Now(),
	}

	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishPresenceChanged: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: kafka.TopicPresenceChanged,
		Key:   sarama.StringEncoder(strconv.FormatInt(userID, 10)), // Partition by user for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
