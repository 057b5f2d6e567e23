// Command lifepp opens the interactive breeding window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/demmel/life-plus-plus/internal/platform"
	"github.com/demmel/life-plus-plus/internal/storage"
	"github.com/demmel/life-plus-plus/internal/viewer"
	api "github.com/demmel/life-plus-plus/pkg/lifeplusplus"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lifepp", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "lifepp.db", "sqlite database path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	population := fs.Int("pop", 8, "population size")
	kernel := fs.Int("kernel", 3, "odd convolution kernel size")
	layers := fs.Int("layers", 1, "convolution layers per rule")
	seed := fs.Int64("seed", 1, "rng seed")
	selection := fs.String("selection", "uniform", "parent sampler: uniform|rank")
	seedMode := fs.String("seed-mode", "noise", "first frame: noise|perlin")
	workers := fs.Int("workers", 0, "simulation workers (0 uses GOMAXPROCS)")
	size := fs.Int("size", platform.DefaultViewWidth, "view width and height in cells")
	scale := fs.Int("scale", 2, "screen pixels per cell")
	speed := fs.Int("speed", 1, "simulation steps per frame")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	arena, err := client.NewArena(ctx, api.SessionRequest{
		RunID:      *runID,
		Population: *population,
		KernelSize: *kernel,
		Layers:     *layers,
		Seed:       *seed,
		Selection:  *selection,
		SeedMode:   *seedMode,
		Workers:    *workers,
		ViewWidth:  *size,
		ViewHeight: *size,
	}, platform.ModePlay)
	if err != nil {
		return err
	}
	fmt.Printf("run_id=%s store=%s\n", arena.RunID(), *storeKind)

	return viewer.Run(ctx, arena, viewer.Options{
		Scale:         *scale,
		StepsPerFrame: *speed,
		Title:         fmt.Sprintf("life++ %dx%d k=%d", *size, *size, *kernel),
	})
}
