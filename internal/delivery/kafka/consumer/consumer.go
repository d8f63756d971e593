package consumer

import (
	"context"
	"errors"
	"sync"

	"github.com/IBM/sarama"

	"github.com/workhubhq/presence-gateway/internal/delivery/kafka"
	"github.com/workhubhq/presence-gateway/pkg/logger"
)

// Pusher is the gateway primitive the bridge forwards events through.
type Pusher interface {
	PushToUser(userID int64, event string, payload any) error
}

// Consumer bridges workforce events from Kafka to live connections: the
// surrounding CRUD services publish, the bridge forwards to the named
// user. Users without a connection miss the push by design.
type Consumer struct {
	consGr sarama.ConsumerGroup
	pusher Pusher
	l      logger.Logger
	wg     sync.WaitGroup
}

func NewConsumer(consGr sarama.ConsumerGroup, pusher Pusher, l logger.Logger) *Consumer {
	return &Consumer{
		consGr: consGr,
		pusher: pusher,
		l:      l,
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	switch msg.Topic {
	case kafka.TopicTaskAssigned:
		return c.HandleTaskAssigned(ctx, msg)
	case kafka.TopicShiftUpdated:
		return c.HandleShiftUpdated(ctx, msg)
	case kafka.TopicReportSubmitted:
		return c.HandleReportSubmitted(ctx, msg)
	default:
		c.l.Warnf(ctx, "unknown topic: %s", msg.Topic)
		return nil
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	topics := []string{kafka.TopicTaskAssigned, kafka.TopicShiftUpdated, kafka.TopicReportSubmitted}
	c.wg.Go(func() {
		for {
			if err := c.consGr.Consume(ctx, topics, c); err != nil {
				// A closed group never becomes consumable again; retrying
				// would spin.
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.l.Errorf(ctx, "delivery.kafka.consumer.Start: %v", err)
			}

			if ctx.Err() != nil {
				c.l.Infof(ctx, "delivery.kafka.consumer.Start: %v", ctx.Err())
				return
			}
		}
	})

	c.wg.Go(func() {
		for err := range c.consGr.Errors() {
			c.l.Errorf(ctx, "delivery.kafka.consumer.Start: %v", err)
		}
	})

	c.l.Infof(ctx, "Consumer is consuming topics: %v", topics)
	return nil
}

func (c *Consumer) Close() error {
	if err := c.consGr.Close(); err != nil {
		return err
	}

	c.wg.Wait()
	return nil
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	c.l.Debug(context.Background(), "Consumer group session started")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	c.l.Debug(context.Background(), "Consumer group session ended")
	return nil
}

func (c *Consumer) ConsumeClaim(ss sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			if err := c.processMessage(ss.Context(), message); err != nil {
				c.l.Errorf(ss.Context(), "delivery.kafka.consumer.ConsumeClaim: topic=%s offset=%d: %v",
					message.Topic, message.Offset, err)
				continue
			}

			ss.MarkMessage(message, "")

		case <-ss.Context().Done():
			return nil
		}
	}
}
