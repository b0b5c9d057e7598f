package contract

import (
	"context"

	"github.com/fasalsetu/agrilink/internal/interfaces"
)

type Notifier interface {
	Notify(ctx context.Context, userID string, message string) error
}

// LogNotifier only records notifications in the log
type LogNotifier struct {
	log interfaces.ILogger
}

func NewLogNotifier(log interfaces.ILogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, userID string, message string) error {
	n.log.Infow("notification", "user", userID, "message", message)
	return nil
}
