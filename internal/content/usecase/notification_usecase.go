package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
	apperrors "showcase-cms/internal/shared/errors"
	"showcase-cms/internal/shared/logger"

	"github.com/google/uuid"
)

const maxNotificationFields = 32

// NotificationUsecase submits records to the outbound notification channel.
type NotificationUsecase interface {
	Submit(ctx context.Context, req *model.NotificationRequest) (*model.NotificationReceipt, error)
}

type notificationUsecaseImpl struct {
	notifier repository.Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewNotificationUsecase(notifier repository.Notifier, log logger.Logger) NotificationUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &notificationUsecaseImpl{notifier: notifier, log: log.WithComponent("notification_usecase"), now: time.Now}
}

// Submit validates and enqueues req. A channel failure still returns a receipt, with
// Accepted false, alongside an upstream error.
func (uc *notificationUsecaseImpl) Submit(ctx context.Context, req *model.NotificationRequest) (*model.NotificationReceipt, error) {
	ve := apperrors.NewValidationErrors()
	if strings.TrimSpace(req.Channel) == "" {
		ve.Add("channel", "channel is required", req.Channel)
	}
	if strings.TrimSpace(req.Subject) == "" {
		ve.Add("subject", "subject is required", req.Subject)
	}
	if req.Recipient != "" {
		if _, err := mail.ParseAddress(req.Recipient); err != nil {
			ve.Add("recipient", "recipient must be an email address", req.Recipient)
		}
	}
	if len(req.Fields) > maxNotificationFields {
		ve.Add("fields", "too many fields", len(req.Fields))
	}
	if ve.HasErrors() {
		return nil, ve
	}

	req.ID = uuid.NewString()
	req.CreatedAt = uc.now().UTC()
	if err := uc.notifier.Enqueue(ctx, req); err != nil {
		uc.log.WithContext(ctx).Errorf("Notification %s not accepted: %v", req.ID, err)
		return &model.NotificationReceipt{ID: req.ID, Accepted: false},
			apperrors.NewUpstreamError("notification channel unavailable").WithCause(err)
	}
	return &model.NotificationReceipt{ID: req.ID, Accepted: true}, nil
}
