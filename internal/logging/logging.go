// Package logging constrói o logr.Logger do processo sobre o zap.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Development usa saída de console colorida e stack traces em warnings.
	Development bool
	// Level é a verbosidade do logr: V(n) aparece quando n <= Level.
	Level int
}

// New devolve o logger e uma função que descarrega o buffer do zap.
func New(opts Options) (logr.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	if opts.Level < 0 {
		opts.Level = 0
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-opts.Level))

	z, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return zapr.NewLogger(z), func() { _ = z.Sync() }, nil
}
