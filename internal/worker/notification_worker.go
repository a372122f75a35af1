package worker

import (
	"github.com/spec-kit/budget-service/internal/service"
)

// StartNotificationWorker wires the notification service into the event
// dispatcher. Delivery itself happens inline; only webhooks go async.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
