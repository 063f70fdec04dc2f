package repository

import (
	"context"

	"homesentry-data/internal/domain"
)

// DevicesRepository reads the device registries. Rows are created and
// updated exclusively by the telemetry write path.
type DevicesRepository interface {
	ListSensors(ctx context.Context) ([]*domain.Sensor, error)
	GetSensor(ctx context.Context, mac string) (*domain.Sensor, error) // ErrNotFound when absent
	ListBridges(ctx context.Context) ([]*domain.Bridge, error)
}
