package logging

import "go.uber.org/zap"

// LeveledZap adapts a zap logger to retryablehttp.LeveledLogger.
type LeveledZap struct {
	inner *zap.SugaredLogger
}

func NewLeveledZap(logger *zap.Logger) LeveledZap {
	return LeveledZap{inner: logger.Sugar()}
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l LeveledZap) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l LeveledZap) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l LeveledZap) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Infow(msg, keysAndValues...)
}

// retry attempts are logged at DEBUG by the client
func (l LeveledZap) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Debugw(msg, keysAndValues...)
}
