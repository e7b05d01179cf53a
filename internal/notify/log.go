package notify

import (
	"context"

	"go.uber.org/zap"
)

// Sink is the delivery contract shared by the SMTP and log implementations.
type Sink interface {
	Notify(ctx context.Context, staffID, message string) error
	NotifyCoordinator(ctx context.Context, message string) error
}

// LogSink writes notifications to the application log. It stands in for the
// SMTP sink in development and when notifications are disabled.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs a log-backed sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Notify logs the message addressed to the staff member.
func (s *LogSink) Notify(_ context.Context, staffID, message string) error {
	s.logger.Info("notification", zap.String("staff_id", staffID), zap.String("message", message))
	return nil
}

// NotifyCoordinator logs the coordinator summary.
func (s *LogSink) NotifyCoordinator(_ context.Context, message string) error {
	s.logger.Info("coordinator notification", zap.String("message", message))
	return nil
}
