package logger

import "go.uber.org/zap"

var Log *zap.SugaredLogger = zap.NewNop().Sugar()

// Init replaces the no-op default with a production logger. Called once
// from the process entry point; tests keep the no-op.
func Init() error {
	l, err := zap.NewProduction()
	if err != nil {
		return err
	}

	Log = l.Sugar()
	return nil
}

// Sync flushes buffered log entries. Safe to call on the no-op logger.
func Sync() {
	_ = Log.Sync()
}
