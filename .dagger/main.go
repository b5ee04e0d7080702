// Dossier CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/dossier/internal/dagger"
)

const (
	postgresPassword = "dossier"
	testPostgresDSN  = "postgres://postgres:" + postgresPassword + "@postgres:5432/postgres?sslmode=disable"
	testRedisAddr    = "redis:6379"
)

// Dossier is the main module for the Dossier CI/CD pipeline
type Dossier struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Dossier CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", ".dossier"]
	source *dagger.Directory,
) *Dossier {
	return &Dossier{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted.
//
// It is the shared foundation for tests and tidy checks.
func (d *Dossier) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", d.Source)
}

// Test runs the dossier unit tests via "go test". PostgreSQL and Redis
// service containers are bound so the storage driver suites run against
// real servers instead of skipping.
func (d *Dossier) Test(ctx context.Context) (string, error) {
	postgres := dag.Container().
		From("postgres:16-alpine").
		WithEnvVariable("POSTGRES_PASSWORD", postgresPassword).
		WithExposedPort(5432).
		AsService()

	redis := dag.Container().
		From("redis:7-alpine").
		WithExposedPort(6379).
		AsService()

	return d.goContainer().
		WithServiceBinding("postgres", postgres).
		WithServiceBinding("redis", redis).
		WithEnvVariable("DOSSIER_TEST_POSTGRES_DSN", testPostgresDSN).
		WithEnvVariable("DOSSIER_TEST_REDIS_ADDR", testRedisAddr).
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
