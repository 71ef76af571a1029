package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

// LoggerTagProcessor handles fabric:"logger" and fabric:"logger:<name>" tags
// for automatic logger injection with optional named loggers.
//
// Supported tag formats:
//   - `fabric:"logger"` - Injects the base logger service
//   - `fabric:"logger:<name>"` - Injects a named logger (e.g., logger.Named("reconcile"))
type LoggerTagProcessor struct{}

func NewLoggerTagProcessor() *LoggerTagProcessor {
	return &LoggerTagProcessor{}
}

// GetPriority runs this processor before the default inject processor.
func (ltp *LoggerTagProcessor) GetPriority() int {
	return 50
}

// CanProcess matches "logger" and "logger:<name>", case-insensitively.
func (ltp *LoggerTagProcessor) CanProcess(value string) bool {
	return strings.EqualFold(value, "logger") || strings.HasPrefix(strings.ToLower(value), "logger:")
}

// Process resolves the registered LoggerService and, for "logger:<name>"
// tags, returns the named child.
func (ltp *LoggerTagProcessor) Process(ctx context.Context, sc *container.ServiceContainer, field reflect.StructField, value string) (any, error) {
	ok, resolved := sc.ResolveByType(ctx, reflect.TypeOf((*LoggerService)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("failed to resolve LoggerService for field '%s': no logger service registered", field.Name)
	}

	baseLogger, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved logger is not a LoggerService for field '%s'", field.Name)
	}

	if name := loggerName(value); name != "" {
		return baseLogger.Named(name), nil
	}
	return baseLogger, nil
}

// ResolveNamed returns the container's logger named after component, the
// same value a `fabric:"logger:<component>"` field would receive.
func ResolveNamed(ctx context.Context, sc *container.ServiceContainer, component string) (LoggerService, error) {
	ltp := NewLoggerTagProcessor()
	tag := "logger:" + component

	resolved, err := ltp.Process(ctx, sc, reflect.StructField{Name: component}, tag)
	if err != nil {
		return nil, err
	}
	return resolved.(LoggerService), nil
}

func loggerName(value string) string {
	if _, name, found := strings.Cut(value, ":"); found {
		return strings.TrimSpace(name)
	}
	return ""
}
