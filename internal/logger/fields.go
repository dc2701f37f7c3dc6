package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSource is the structured log field key for the job source name.
	FieldSource = "source"
	// FieldCycle is the structured log field key for the search cycle id.
	FieldCycle = "cycle_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CycleFields returns standard zap fields that identify a search cycle and,
// when set, the source it concerns. Empty values are ignored to keep log
// entries compact.
func CycleFields(cycleID, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCycle, Value: cycleID},
		StringField{Key: FieldSource, Value: source},
	)
}

// WithCycleFields attaches the cycle fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithCycleFields(logger *zap.Logger, cycleID, source string) *zap.Logger {
	return WithFields(logger, CycleFields(cycleID, source)...)
}
