package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	instance *zap.SugaredLogger
	once     sync.Once
)

type Config struct {
	Development bool
	Level       string
}

// New builds the process-wide sugared logger. Subsequent calls return the
// same instance regardless of config.
func New(cfg Config) (*zap.SugaredLogger, error) {
	var err error
	once.Do(func() {
		var c zap.Config
		if cfg.Development {
			c = zap.NewDevelopmentConfig()
		} else {
			c = zap.NewProductionConfig()
		}
		if cfg.Level != "" {
			var lvl zap.AtomicLevel
			lvl, err = zap.ParseAtomicLevel(cfg.Level)
			if err != nil {
				return
			}
			c.Level = lvl
		}
		var l *zap.Logger
		l, err = c.Build()
		if err != nil {
			return
		}
		instance = l.Sugar()
	})
	return instance, err
}

// Nop returns a no-op logger for tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
