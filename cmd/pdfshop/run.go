package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

// lifecycle is the part of *fx.App that run drives.
type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan os.Signal
}

// run starts the shop, blocks until ctx is cancelled or the app asks to shut
// down, and then stops it. It returns the process exit code.
func run(ctx context.Context, app lifecycle, stderr io.Writer) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "pdfshop: start: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		fmt.Fprintf(stderr, "pdfshop: stop: %v\n", err)
		return 1
	}
	return 0
}
