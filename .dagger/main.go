// figsearch CI
//
// Package main runs the figsearch tests and builds in reproducible containers,
// locally and in GitHub actions.
package main

import (
	"context"

	"dagger/figsearch/internal/dagger"
)

// Figsearch is the CI module for figsearch.
type Figsearch struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Figsearch {
	return &Figsearch{
		Source: source,
	}
}

// goContainer returns a Go container with the module caches and the project
// source mounted. figsearch is pure Go, so cgo stays off.
func (f *Figsearch) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", f.Source)
}

// Test runs "go test" over every package.
//
// +check
func (f *Figsearch) Test(ctx context.Context) (string, error) {
	return f.goContainer().
		WithExec([]string{"go", "test", "./..."}).
		Stdout(ctx)
}

// Vet runs "go vet" over every package.
//
// +check
func (f *Figsearch) Vet(ctx context.Context) (string, error) {
	return f.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
