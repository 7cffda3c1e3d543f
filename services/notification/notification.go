package notification

import (
	"context"
	"fmt"

	"roomlift/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

var titles = map[string]string{
	KindApproved: "Booking approved",
	KindDeclined: "Booking declined",
	KindCanceled: "Booking canceled",
	KindNoShow:   "Booking marked as no-show",
}

// DefaultNotificationService is the production implementation, sending FCM
// pushes to one topic per recipient.
type DefaultNotificationService struct {
	client *messaging.Client
}

func NewDefaultNotificationService(client *messaging.Client) (*DefaultNotificationService, error) {
	if client == nil {
		return nil, fmt.Errorf("notification service initialization error: messaging client is nil")
	}
	return &DefaultNotificationService{client: client}, nil
}

// Send delivers the push for one lifecycle notification kind to every
// recipient topic. Partial failures are logged and the first error returned.
func (s *DefaultNotificationService) Send(ctx context.Context, kind string, recipients []string, payload map[string]string) error {
	title, ok := titles[kind]
	if !ok {
		return fmt.Errorf("unknown notification kind: %s", kind)
	}

	if payload == nil {
		payload = map[string]string{}
	}
	payload["kind"] = kind

	var firstErr error
	for _, topic := range recipients {
		msg := &messaging.Message{
			Topic: topic,
			Notification: &messaging.Notification{
				Title: title,
				Body:  payload["note"],
			},
			Data: payload,
		}
		if _, err := s.client.Send(ctx, msg); err != nil {
			utils.GetLogger().Warn("failed to send booking notification",
				zap.String("kind", kind),
				zap.String("topic", topic),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
