//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/platemenu/platemenu/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		TelemetrySet,
		PlatformSet,
		RepositorySet,
		ServiceSet,
		HTTPSet,
		provideApp,
	))
}

func InitializeMigrationRunner() (*MigrationRunner, error) {
	panic(wire.Build(
		ConfigSet,
		provideOpenDB,
		NewMigrationRunner,
	))
}
