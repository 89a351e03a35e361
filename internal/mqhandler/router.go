// Package mqhandler consumes events from the habits.events exchange.
package mqhandler

import (
	"context"

	"go.uber.org/zap"

	"habittracker/pkg/mq"
)

// Router dispatches deliveries by routing key. Unknown keys are acked and dropped.
type Router struct {
	routes map[string]mq.MessageHandler
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		routes: make(map[string]mq.MessageHandler),
		logger: logger,
	}
}

func (r *Router) Register(routingKey string, h mq.MessageHandler) {
	r.routes[routingKey] = h
}

// Keys returns the registered routing keys, for queue bindings.
func (r *Router) Keys() []string {
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	return keys
}

func (r *Router) Handle(ctx context.Context, routingKey string, body []byte) error {
	h, ok := r.routes[routingKey]
	if !ok {
		r.logger.Debug("No handler for event", zap.String("routing_key", routingKey))
		return nil
	}
	return h(ctx, routingKey, body)
}
