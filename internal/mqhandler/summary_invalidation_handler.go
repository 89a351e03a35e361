package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	contracts "habittracker/contracts/mq"
)

type SummaryInvalidator interface {
	Invalidate(ctx context.Context)
}

// SummaryInvalidationHandler drops the cached /summary ranges whenever a
// habit or task changes. The API already invalidates after its own
// commit; this covers reads that raced the write and repopulated the
// cache with pre-commit rows.
type SummaryInvalidationHandler struct {
	cache  SummaryInvalidator
	logger *zap.Logger
}

func NewSummaryInvalidationHandler(cache SummaryInvalidator, logger *zap.Logger) *SummaryInvalidationHandler {
	return &SummaryInvalidationHandler{cache: cache, logger: logger}
}

// Register binds the handler to every event that changes summary counts.
func (h *SummaryInvalidationHandler) Register(r *Router) {
	for _, key := range []string{
		contracts.RoutingKeyHabitCreated,
		contracts.RoutingKeyHabitDeleted,
		contracts.RoutingKeyHabitToggled,
		contracts.RoutingKeyTaskCreated,
		contracts.RoutingKeyTaskToggled,
		contracts.RoutingKeyTaskDeleted,
	} {
		r.Register(key, h.Handle)
	}
}

type eventEnvelope struct {
	TraceID string `json:"trace_id"`
}

func (h *SummaryInvalidationHandler) Handle(ctx context.Context, routingKey string, body []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode %s payload: %w", routingKey, err)
	}

	h.cache.Invalidate(ctx)
	h.logger.Debug("Summary cache invalidated",
		zap.String("routing_key", routingKey),
		zap.String("trace_id", env.TraceID))
	return nil
}
