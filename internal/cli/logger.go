package cli

import "go.uber.org/zap"

// appLogger wraps zap for verbose debug output across commands.
type appLogger struct {
	sugared *zap.SugaredLogger
}

func newAppLogger(verbose bool) *appLogger {
	if !verbose {
		return &appLogger{}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	logger, _ := cfg.Build()
	return &appLogger{sugared: logger.Sugar()}
}

func (l *appLogger) Debug(format string, args ...interface{}) {
	if l.sugared == nil {
		return
	}
	l.sugared.Debugf(format, args...)
}

// Sugared hands components a usable logger; silent unless verbose.
func (l *appLogger) Sugared() *zap.SugaredLogger {
	if l.sugared == nil {
		return zap.NewNop().Sugar()
	}
	return l.sugared
}
