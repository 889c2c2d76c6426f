package repository

import (
	"context"

	"AlertPulse/internal/domain/models"
	"AlertPulse/internal/domain/repository"
)

// NoopSignalArchive is used when ClickHouse is disabled. Appends vanish and
// reads return nothing, which also disables the anomaly scan.
type NoopSignalArchive struct{}

func NewNoopSignalArchive() repository.SignalArchive { return NoopSignalArchive{} }

func (NoopSignalArchive) Append(context.Context, *models.Signal) error { return nil }

func (NoopSignalArchive) Recent(context.Context, string, string, int) ([]models.Signal, error) {
	return nil, nil
}

func (NoopSignalArchive) Close() error { return nil }
