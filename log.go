package pgmplay

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Trace verbosity. Level 1 is zap's debug level, deeper levels sit below it,
// so a logger at zapcore.Level(-n) shows everything up to verbosity n.
const (
	TraceFrames  = 1 // files, headers, frames shown
	TraceReads   = 2 // underlying reads
	TraceSamples = 3 // every byte handed out
)

// TraceLevel returns the zap level matching a trace verbosity. Anything
// past TraceSamples traces everything.
func TraceLevel(verbosity int) zapcore.Level {
	if verbosity <= 0 {
		return zapcore.InfoLevel
	}
	if verbosity > TraceSamples {
		verbosity = TraceSamples
	}
	return zapcore.DebugLevel - zapcore.Level(verbosity-1)
}

func trace(l *zap.Logger, verbosity int, msg string, fields ...zap.Field) {
	if ce := l.Check(TraceLevel(verbosity), msg); ce != nil {
		ce.Write(fields...)
	}
}
