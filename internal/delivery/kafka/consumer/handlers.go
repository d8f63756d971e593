package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/workhubhq/presence-gateway/internal/delivery/kafka"
)

func (c *Consumer) HandleTaskAssigned(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.TaskAssignedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandleTaskAssigned: %v", err)
		return err
	}

	if err := c.pusher.PushToUser(e.AssigneeID, kafka.EventTaskAssigned, e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandleTaskAssigned: %v", err)
		return err
	}

	return nil
}

func (c *Consumer) HandleShiftUpdated(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.ShiftUpdatedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandleShiftUpdated: %v", err)
		return err
	}

	if err := c.pusher.PushToUser(e.UserID, kafka.EventShiftUpdated, e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandleShiftUpdated: %v", err)
		return err
	}

	return nil
}

func (c *Consumer) HandleReportSubmitted(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.ReportSubmittedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandleReportSubmitted: %v", err)
		return err
	}

	if err := c.pusher.PushToUser(e.ReviewerID, kafka.EventReportSubmitted, e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.HandleReportSubmitted: %v", err)
		return err
	}

	return nil
}
