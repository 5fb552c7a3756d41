package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, orgID, userID, ntype, title, body string) error
	UserEmail(ctx context.Context, orgID, userID string) (string, error)
	UserIDForEmployee(ctx context.Context, orgID, employeeID string) (string, error)
	ListNotifications(ctx context.Context, orgID, userID string, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, orgID, userID, notificationID string) error
}
