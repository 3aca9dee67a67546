package streams

import (
	"context"
	"encoding/json"
	"fmt"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
	apperrors "showcase-cms/internal/shared/errors"
	"showcase-cms/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NotificationStream is the stream a mail relay consumes.
const NotificationStream = "content:outbound:notifications"

var _ repository.Notifier = (*StreamNotifier)(nil)

// StreamNotifier hands notification requests to the relay through a Redis stream.
type StreamNotifier struct {
	client    redis.Cmdable
	logger    logger.Logger
	maxLength int64
}

func NewStreamNotifier(client redis.Cmdable, maxLength int64, log logger.Logger) *StreamNotifier {
	return &StreamNotifier{client: client, logger: log, maxLength: maxLength}
}

func (n *StreamNotifier) Enqueue(ctx context.Context, req *model.NotificationRequest) error {
	fields, err := json.Marshal(req.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode notification fields: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: NotificationStream,
		Values: map[string]interface{}{
			"id":        req.ID,
			"channel":   req.Channel,
			"subject":   req.Subject,
			"recipient": req.Recipient,
			"fields":    fields,
			"createdAt": req.CreatedAt.UnixNano(),
		},
	}
	if n.maxLength > 0 {
		args.MaxLen = n.maxLength
		args.Approx = true
	}
	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		n.logger.Error("Failed to enqueue notification",
			zap.String("notificationId", req.ID),
			zap.String("channel", req.Channel),
			zap.Error(err))
		return apperrors.NewInfrastructureError("failed to enqueue notification").WithCause(err).WithComponent("notification_stream")
	}
	n.logger.Info("Notification enqueued",
		zap.String("notificationId", req.ID),
		zap.String("channel", req.Channel))
	return nil
}
