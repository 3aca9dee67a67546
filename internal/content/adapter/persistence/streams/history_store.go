package streams

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
	apperrors "showcase-cms/internal/shared/errors"
	"showcase-cms/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const historyStreamPrefix = "content:history:"

var _ repository.ChangeHistory = (*HistoryStore)(nil)

// HistoryStore keeps one Redis stream per collection, one entry per whole replace.
type HistoryStore struct {
	client    redis.Cmdable
	logger    logger.Logger
	maxLength int64
}

// NewHistoryStore creates a history store; maxLength <= 0 disables trimming.
func NewHistoryStore(client redis.Cmdable, maxLength int64, log logger.Logger) *HistoryStore {
	return &HistoryStore{client: client, logger: log, maxLength: maxLength}
}

// HistoryStream is the stream name for a collection.
func HistoryStream(parentID string, key model.CollectionKey) string {
	return historyStreamPrefix + parentID + ":" + string(key)
}

func (h *HistoryStore) Append(ctx context.Context, change *model.CollectionChange) error {
	stream := HistoryStream(change.ParentID, change.Key)
	args := &redis.XAddArgs{
		Stream: stream,
		Values: changeValues(change),
	}
	if h.maxLength > 0 {
		args.MaxLen = h.maxLength
		args.Approx = true
	}

	id, err := h.client.XAdd(ctx, args).Result()
	if err != nil {
		h.logger.Error("Failed to append change history",
			zap.String("stream", stream),
			zap.Int64("version", change.Version),
			zap.Error(err))
		return apperrors.NewInfrastructureError("failed to append change history").WithCause(err).WithComponent("history_store")
	}
	change.StreamID = id

	h.logger.Debug("Change recorded",
		zap.String("stream", stream),
		zap.String("streamId", id),
		zap.Int64("version", change.Version))
	return nil
}

// List returns the newest changes first.
func (h *HistoryStore) List(ctx context.Context, parentID string, key model.CollectionKey, limit int64) ([]*model.CollectionChange, error) {
	stream := HistoryStream(parentID, key)
	msgs, err := h.client.XRevRangeN(ctx, stream, "+", "-", limit).Result()
	if err != nil {
		if err == redis.Nil {
			return []*model.CollectionChange{}, nil
		}
		h.logger.Error("Failed to read change history", zap.String("stream", stream), zap.Error(err))
		return nil, apperrors.NewInfrastructureError("failed to read change history").WithCause(err).WithComponent("history_store")
	}

	changes := make([]*model.CollectionChange, 0, len(msgs))
	for _, msg := range msgs {
		change, err := parseChange(msg)
		if err != nil {
			h.logger.Warn("Skipping malformed history entry",
				zap.String("stream", stream),
				zap.String("messageId", msg.ID),
				zap.Error(err))
			continue
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func changeValues(change *model.CollectionChange) map[string]interface{} {
	return map[string]interface{}{
		"parentId":  change.ParentID,
		"key":       string(change.Key),
		"version":   change.Version,
		"itemCount": change.ItemCount,
		"actor":     change.Actor,
		"at":        change.At.UnixNano(),
	}
}

func parseChange(msg redis.XMessage) (*model.CollectionChange, error) {
	str := func(field string) string {
		s, _ := msg.Values[field].(string)
		return s
	}
	version, err := strconv.ParseInt(str("version"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	count, err := strconv.Atoi(str("itemCount"))
	if err != nil {
		return nil, fmt.Errorf("invalid itemCount: %w", err)
	}
	at, err := strconv.ParseInt(str("at"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}
	return &model.CollectionChange{
		ParentID:  str("parentId"),
		Key:       model.CollectionKey(str("key")),
		Version:   version,
		ItemCount: count,
		Actor:     str("actor"),
		At:        time.Unix(0, at).UTC(),
		StreamID:  msg.ID,
	}, nil
}
