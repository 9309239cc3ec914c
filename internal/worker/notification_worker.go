package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/campus-market/internal/service"
)

// StartNotificationWorker wires the notification handlers onto the dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification worker started")
	}
}
