package toolserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/domain/entity"
	"solana_liquidity/internal/pkg/metrics"

	"go.uber.org/zap"
)

// JSON-RPC error codes used at the tool boundary.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ProtocolError is the boundary classification of a failed tool call.
type ProtocolError struct {
	Code    int
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	return e.Message
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Envelope wraps every successful tool result.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Count     *int   `json:"count,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Dispatcher validates tool calls, runs them against the liquidity service and
// serializes the result.
type Dispatcher struct {
	registry *Registry
	svc      port.LiquidityService
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewDispatcher creates a dispatcher over the tools in registry.
func NewDispatcher(registry *Registry, svc port.LiquidityService, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		svc:      svc,
		logger:   logger.Named("Dispatcher"),
		metrics:  m,
		now:      time.Now,
	}
}

// Registry returns the tool registry served by the dispatcher.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Call runs the named tool and returns the 2-space indented JSON envelope.
// Failures are always *ProtocolError. Nil arguments are treated as an empty object.
func (d *Dispatcher) Call(ctx context.Context, name string, arguments map[string]any) (string, error) {
	start := time.Now()

	tool, ok := d.registry.Lookup(name)
	if !ok {
		d.metrics.ObserveToolCall(name, "method_not_found", time.Since(start))
		d.logger.Warn("Unknown tool requested", zap.String("tool", name))
		return "", &ProtocolError{Code: CodeMethodNotFound, Message: "Unknown tool: " + name}
	}
	if arguments == nil {
		arguments = map[string]any{}
	}

	res, err := tool.call(ctx, d.svc, arguments)
	if err != nil {
		perr := classify(err)
		d.metrics.ObserveToolCall(name, outcomeFor(perr.Code), time.Since(start))
		d.logger.Error("Tool call failed",
			zap.String("tool", name),
			zap.Int("code", perr.Code),
			zap.Error(err),
		)
		return "", perr
	}

	text, err := json.MarshalIndent(Envelope{
		Success:   true,
		Data:      res.data,
		Count:     res.count,
		Timestamp: d.now().UTC().Format(entity.TimestampLayout),
	}, "", "  ")
	if err != nil {
		d.metrics.ObserveToolCall(name, "internal_error", time.Since(start))
		d.logger.Error("Failed to encode tool result", zap.String("tool", name), zap.Error(err))
		return "", &ProtocolError{
			Code:    CodeInternalError,
			Message: fmt.Sprintf("Tool execution failed: %v", err),
			Err:     err,
		}
	}

	d.metrics.ObserveToolCall(name, "ok", time.Since(start))
	d.logger.Debug("Tool call succeeded", zap.String("tool", name), zap.Duration("elapsed", time.Since(start)))
	return string(text), nil
}

// classify maps argument errors to invalid params and everything else to internal error.
func classify(err error) *ProtocolError {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return &ProtocolError{
			Code:    CodeInvalidParams,
			Message: "Invalid parameters: " + argErr.Error(),
			Err:     err,
		}
	}
	return &ProtocolError{
		Code:    CodeInternalError,
		Message: "Tool execution failed: " + err.Error(),
		Err:     err,
	}
}

func outcomeFor(code int) string {
	switch code {
	case CodeMethodNotFound:
		return "method_not_found"
	case CodeInvalidParams:
		return "invalid_params"
	default:
		return "internal_error"
	}
}
