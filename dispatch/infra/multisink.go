package infra

import (
	"context"
	"errors"

	"scheduler-sim/dispatch/domain"
)

// MultiSink repassa o Record a todos os destinos, na ordem, e junta os erros.
type MultiSink []domain.RecordSink

func (m MultiSink) Record(ctx context.Context, rec domain.Record) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
