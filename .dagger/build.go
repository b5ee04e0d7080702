package main

import (
	"fmt"
	"strings"
	"time"

	"context"

	"dagger/dossier/internal/dagger"
)

// Build and return directory of go binaries
func (d *Dossier) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// go-sqlite3 needs cgo, so only linux targets are built, each with its
	// own cross compiler.
	compilers := map[string]string{
		"amd64": "x86_64-linux-gnu-gcc",
		"arm64": "aarch64-linux-gnu-gcc",
	}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	golang := dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc-x86-64-linux-gnu", "gcc-aarch64-linux-gnu"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("GOOS", "linux").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithDirectory("/src", d.Source).
		WithWorkdir("/src")

	for _, goarch := range []string{"amd64", "arm64"} {
		// create directory for each architecture
		path := fmt.Sprintf("linux/%s/", goarch)

		// build artifact
		build := golang.
			WithEnvVariable("GOARCH", goarch).
			WithEnvVariable("CC", compilers[goarch]).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/dossier"})

		// add build to outputs
		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	// return build directory
	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (d *Dossier) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/dossier/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/dossier/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/dossier/pkg/utils.Buildtime=%s'", buildtime),
	}

	return d.Build(ctx, strings.Join(ldflags, " "))
}
