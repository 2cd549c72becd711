package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App is attached to every entry as the "app" field.
const App = "cc6api"

// New builds a JSON zap logger.
// Debug mode keeps JSON output but lowers the level to debug.
func New(debug bool) (*zap.Logger, error) {
	return config(debug).Build()
}

func config(debug bool) zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]interface{}{"app": App}
	return cfg
}
