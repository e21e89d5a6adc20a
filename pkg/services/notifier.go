package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangeNotifier receives a call-out after every committed workflow mutation
// so the presentation layer can refresh the approval panel, readiness bar
// and button state. This is a required post-condition of every operation,
// not a cosmetic hook.
type ChangeNotifier interface {
	ProductChanged(ctx context.Context, productID uuid.UUID)
}

// LoggingNotifier is the default ChangeNotifier: it records the render
// trigger in the log. A UI transport (SSE, websocket) can replace it.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier creates a LoggingNotifier.
func NewLoggingNotifier(logger *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{logger: logger.Named("render-trigger")}
}

var _ ChangeNotifier = (*LoggingNotifier)(nil)

func (n *LoggingNotifier) ProductChanged(ctx context.Context, productID uuid.UUID) {
	n.logger.Debug("product changed", zap.String("product_id", productID.String()))
}
