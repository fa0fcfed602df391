package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// Middleware wraps query handlers
type Middleware func(next QueryHandler) QueryHandler

// ErrHandlerNotFound is returned when no handler is registered for a query type
var ErrHandlerNotFound = errors.New("query handler not found")

// QueryBus validates queries and routes them by concrete type. Handlers are
// wrapped once, at registration.
type QueryBus struct {
	mu          sync.RWMutex
	handlers    map[reflect.Type]QueryHandler
	middlewares []Middleware
}

// NewQueryBus creates a query bus; middlewares run outermost first
func NewQueryBus(middlewares ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:    make(map[reflect.Type]QueryHandler),
		middlewares: middlewares,
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates query and returns its handler's result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrHandlerNotFound, query)
	}

	return handler.Handle(ctx, query)
}

// Logger is the subset of a key/value logger the query middleware needs
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SlowQueryMiddleware logs every query at debug and warns when one takes
// longer than threshold.
func SlowQueryMiddleware(logger Logger, threshold time.Duration) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, query)
			elapsed := time.Since(start)

			queryType := reflect.TypeOf(query).Name()
			if elapsed > threshold {
				logger.Warn("Slow query", "type", queryType, "duration", elapsed, "threshold", threshold)
			} else {
				logger.Debug("Query handled", "type", queryType, "duration", elapsed, "failed", err != nil)
			}
			return result, err
		})
	}
}
