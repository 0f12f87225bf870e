// ABOUTME: Adapter routing Badger's internal logging into zap
// ABOUTME: Keeps storage chatter at debug level except for warnings and errors

package settings

import (
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

type badgerLogger struct {
	s *zap.SugaredLogger
}

// newBadgerLogger returns nil (Badger's "no logging") when logger is nil.
func newBadgerLogger(logger *zap.Logger) badger.Logger {
	if logger == nil {
		return nil
	}
	return &badgerLogger{s: logger.Named("badger").Sugar()}
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
