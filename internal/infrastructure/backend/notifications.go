package backend

import (
	"context"
	"net/http"
)

// NotificationRegistrar implements ports.NotificationRegistrar. Registration
// failures are reported to the caller but never break a login.
type NotificationRegistrar struct {
	client *Client
}

func NewNotificationRegistrar(client *Client) *NotificationRegistrar {
	return &NotificationRegistrar{client: client}
}

func (r *NotificationRegistrar) RegisterForUserNotifications(ctx context.Context, userID string) (bool, error) {
	env, err := r.client.do(ctx, http.MethodPost, "/api/notifications/register", "", map[string]string{
		"user_id": userID,
	})
	if err != nil {
		return false, err
	}
	return env.Success, nil
}
