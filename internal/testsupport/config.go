package testsupport

import (
	"path/filepath"
	"testing"

	"waitline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The seed describes three stations: station 1 stands alone, stations 2 and 3
// share queue group "G" with station 2 as the canonical holder.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Stations = []config.StationSeed{
		{ID: 1, Name: "Registration", Description: "walk-in registration"},
		{ID: 2, Name: "Service A", QueueGroupID: "G"},
		{ID: 3, Name: "Service B", QueueGroupID: "G"},
	}
	cfgVal.Operators = []config.OperatorSeed{
		{ID: 1, Code: "op-1", StationID: 1, Name: "Desk One"},
		{ID: 2, Code: "op-2", StationID: 2, Name: "Desk Two"},
		{ID: 3, Code: "op-3", StationID: 3, Name: "Desk Three"},
		{ID: 4, Code: "op-exit", Name: "Exit Desk", FinishOperator: true},
	}

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithStations replaces the seeded stations on the test config.
func WithStations(stations ...config.StationSeed) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stations = stations
	}
}

// WithOperators replaces the seeded operators on the test config.
func WithOperators(operators ...config.OperatorSeed) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Operators = operators
	}
}

// WithAdminToken sets the admin bearer token on the test config.
func WithAdminToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.AdminToken = token
	}
}
