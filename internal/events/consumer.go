package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/civicdesk/notification-service/internal/dispatch"
	"github.com/civicdesk/notification-service/internal/models"
)

// ComplaintEvent is the wire shape the complaint CRUD service publishes on
// the events topic. This consumer is the path by which complaint lifecycle
// changes enter the dispatch pipeline.
type ComplaintEvent struct {
	Type       string                  `json:"type"` // assigned, status_changed, resolved, created
	Recipients []models.RecipientRef   `json:"recipients"`
	Kind       models.NotificationKind `json:"kind"`
	Message    string                  `json:"message"`
	Subject    string                  `json:"subject,omitempty"`
}

type Consumer struct {
	reader *kafka.Reader
	engine *dispatch.Engine
	log    *zap.SugaredLogger
}

func NewConsumer(brokers []string, topic, groupID string, engine *dispatch.Engine, log *zap.SugaredLogger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, engine: engine, log: log}
}

// Start consumes until the context is cancelled. Malformed events are logged
// and skipped; a notify failure for one recipient never blocks the stream.
func (c *Consumer) Start(ctx context.Context) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Errorw("kafka read failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		var ev ComplaintEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.log.Warnw("dropping malformed complaint event", "error", err)
			continue
		}
		if ev.Message == "" || len(ev.Recipients) == 0 {
			c.log.Warnw("dropping incomplete complaint event", "type", ev.Type)
			continue
		}
		kind := ev.Kind
		if kind == "" {
			kind = kindForEvent(ev.Type)
		}
		results := c.engine.NotifyMany(ctx, ev.Recipients, kind, ev.Message, ev.Subject)
		for _, res := range results {
			if res.Err != nil {
				c.log.Warnw("complaint event notify failed",
					"type", ev.Type, "recipient_id", res.RecipientID, "error", res.Err)
			}
		}
	}
}

func kindForEvent(eventType string) models.NotificationKind {
	switch eventType {
	case "created":
		return models.NotifNewComplaint
	case "resolved":
		return models.NotifSuccess
	default:
		return models.NotifUpdate
	}
}
