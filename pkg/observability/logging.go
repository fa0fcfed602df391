package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLevel returns a runtime-adjustable level set to level
func NewLevel(level string) (zap.AtomicLevel, error) {
	atomic := zap.NewAtomicLevel()
	if err := SetLevel(atomic, level); err != nil {
		return atomic, err
	}
	return atomic, nil
}

// NewLogger builds a zap logger for the environment. Changing level later
// changes what the logger emits.
func NewLogger(environment string, level zap.AtomicLevel) (*zap.Logger, error) {
	var config zap.Config
	if environment == "production" {
		config = zap.NewProductionConfig()
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = level
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// SetLevel parses level and applies it. An empty level means info.
func SetLevel(atomic zap.AtomicLevel, level string) error {
	if level == "" {
		level = "info"
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	atomic.SetLevel(parsed)
	return nil
}

// KVLogger adapts a zap.Logger to the key/value logger interfaces used by the
// command bus and orchestrators.
type KVLogger struct {
	logger *zap.Logger
}

// NewKVLogger wraps logger
func NewKVLogger(logger *zap.Logger) *KVLogger {
	return &KVLogger{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (a *KVLogger) Debug(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, toFields(keysAndValues)...)
}

func (a *KVLogger) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, toFields(keysAndValues)...)
}

func (a *KVLogger) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, toFields(keysAndValues)...)
}

func (a *KVLogger) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, toFields(keysAndValues)...)
}

func toFields(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		if err, ok := keysAndValues[i+1].(error); ok && key == "error" {
			fields = append(fields, zap.Error(err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
