package lifeplusplus

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/demmel/life-plus-plus/internal/evo"
	"github.com/demmel/life-plus-plus/internal/model"
	"github.com/demmel/life-plus-plus/internal/platform"
	"github.com/demmel/life-plus-plus/internal/sim"
	"github.com/demmel/life-plus-plus/internal/storage"
)

const (
	defaultDBPath     = "lifepp.db"
	defaultExportsDir = "exports"
)

var ErrRunNotFound = errors.New("run not found")

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

type Client struct {
	store      storage.Store
	exportsDir string
}

// SessionRequest fixes the dimensions of a breeding session.
type SessionRequest struct {
	RunID      string
	Population int
	KernelSize int
	Layers     int
	Seed       int64
	Selection  string
	SeedMode   string
	Workers    int
	ViewWidth  int
	ViewHeight int
}

type SimulateRequest struct {
	SessionRequest
	Generations int
	// JudgeSteps is how many frames each rule runs before it is scored.
	JudgeSteps  int
	JudgeWidth  int
	JudgeHeight int
}

type SimulateSummary struct {
	RunID       string
	Comparisons int
	Generations int
	EliteIDs    []string
}

type RunsRequest struct {
	Limit int
}

type JournalRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ExportRequest struct {
	SessionRequest
	Steps  int
	OutDir string
}

type ExportSummary struct {
	Directory string
	Files     []string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, exportsDir: exportsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// NewArena builds and initialises an arena journalled to the client's store.
func (c *Client) NewArena(ctx context.Context, req SessionRequest, mode string) (*platform.Arena, error) {
	cfg, err := arenaConfig(req)
	if err != nil {
		return nil, err
	}
	cfg.Store = c.store
	cfg.Mode = mode

	arena, err := platform.NewArena(cfg)
	if err != nil {
		return nil, err
	}
	if err := arena.Init(ctx); err != nil {
		return nil, err
	}
	return arena, nil
}

// Simulate breeds headlessly, letting an activity judge answer every
// comparison.
func (c *Client) Simulate(ctx context.Context, req SimulateRequest) (SimulateSummary, error) {
	if req.Generations <= 0 {
		req.Generations = 1
	}
	if req.ViewWidth <= 0 {
		req.ViewWidth = 32
	}
	if req.ViewHeight <= 0 {
		req.ViewHeight = 32
	}
	arena, err := c.NewArena(ctx, req.SessionRequest, platform.ModeSimulate)
	if err != nil {
		return SimulateSummary{}, err
	}
	seedMode, err := sim.ParseSeedMode(req.SeedMode)
	if err != nil {
		return SimulateSummary{}, err
	}

	judge := platform.ActivityJudge{
		Width:    req.JudgeWidth,
		Height:   req.JudgeHeight,
		Steps:    req.JudgeSteps,
		Workers:  req.Workers,
		Seed:     req.Seed,
		SeedMode: seedMode,
	}
	result, err := arena.RunAuto(ctx, judge, req.Generations)
	if err != nil {
		return SimulateSummary{}, err
	}
	return SimulateSummary{
		RunID:       arena.RunID(),
		Comparisons: result.Comparisons,
		Generations: result.Generations,
		EliteIDs:    result.EliteIDs,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	return runs, nil
}

func (c *Client) Generations(ctx context.Context, req JournalRequest) ([]model.GenerationRecord, error) {
	runID, err := c.resolveRunID(ctx, req)
	if err != nil {
		return nil, err
	}
	records, _, err := c.store.GetGenerations(ctx, runID)
	if err != nil {
		return nil, err
	}
	return limitTail(records, req.Limit), nil
}

func (c *Client) Lineage(ctx context.Context, req JournalRequest) ([]model.LineageRecord, error) {
	runID, err := c.resolveRunID(ctx, req)
	if err != nil {
		return nil, err
	}
	records, _, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	return limitTail(records, req.Limit), nil
}

func (c *Client) Comparisons(ctx context.Context, req JournalRequest) ([]model.ComparisonRecord, error) {
	runID, err := c.resolveRunID(ctx, req)
	if err != nil {
		return nil, err
	}
	records, _, err := c.store.GetComparisons(ctx, runID)
	if err != nil {
		return nil, err
	}
	return limitTail(records, req.Limit), nil
}

// Export renders every rule of a freshly seeded population to PNG after a
// number of simulation steps.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	cfg, err := arenaConfig(req.SessionRequest)
	if err != nil {
		return ExportSummary{}, err
	}
	if req.Steps < 0 {
		return ExportSummary{}, fmt.Errorf("steps must be >= 0, got %d", req.Steps)
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = filepath.Join(c.exportsDir, fmt.Sprintf("seed-%d", cfg.Engine.Seed))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return ExportSummary{}, err
	}

	engine, err := evo.NewEngine(cfg.Engine, evo.EngineOptions{})
	if err != nil {
		return ExportSummary{}, err
	}
	world, err := sim.NewWorld(cfg.ViewWidth, cfg.ViewHeight, cfg.Workers)
	if err != nil {
		return ExportSummary{}, err
	}

	summary := ExportSummary{Directory: outDir}
	for i, r := range engine.Snapshot() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		world.Seed(rand.New(rand.NewSource(cfg.Engine.Seed)), cfg.SeedMode)
		for s := 0; s < req.Steps; s++ {
			if err := world.Step(r); err != nil {
				return summary, err
			}
		}
		path := filepath.Join(outDir, fmt.Sprintf("%02d_%s.png", i, r.ID()))
		if err := writePNG(path, world); err != nil {
			return summary, err
		}
		summary.Files = append(summary.Files, path)
	}
	return summary, nil
}

func (c *Client) resolveRunID(ctx context.Context, req JournalRequest) (string, error) {
	if err := c.store.Init(ctx); err != nil {
		return "", err
	}
	if req.RunID != "" && req.Latest {
		return "", errors.New("use either run id or latest, not both")
	}
	if req.RunID != "" {
		if _, ok, err := c.store.GetRun(ctx, req.RunID); err != nil {
			return "", err
		} else if !ok {
			return "", fmt.Errorf("%w: %s", ErrRunNotFound, req.RunID)
		}
		return req.RunID, nil
	}
	if !req.Latest {
		return "", errors.New("run id or latest is required")
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[0].ID, nil
}

func arenaConfig(req SessionRequest) (platform.Config, error) {
	engineCfg := evo.DefaultConfig()
	if req.Population > 0 {
		engineCfg.PopulationSize = req.Population
	}
	if req.KernelSize > 0 {
		engineCfg.Shape.KernelSize = req.KernelSize
	}
	if req.Layers > 0 {
		engineCfg.Shape.Layers = req.Layers
	}
	if req.Seed != 0 {
		engineCfg.Seed = req.Seed
	}
	if req.Selection != "" {
		engineCfg.Selection = req.Selection
	}
	if err := engineCfg.Validate(); err != nil {
		return platform.Config{}, err
	}
	seedMode, err := sim.ParseSeedMode(req.SeedMode)
	if err != nil {
		return platform.Config{}, err
	}
	width, height := req.ViewWidth, req.ViewHeight
	if width <= 0 {
		width = platform.DefaultViewWidth
	}
	if height <= 0 {
		height = platform.DefaultViewHeight
	}
	return platform.Config{
		Engine:     engineCfg,
		RunID:      req.RunID,
		ViewWidth:  width,
		ViewHeight: height,
		Workers:    req.Workers,
		SeedMode:   seedMode,
	}, nil
}

func writePNG(path string, world *sim.World) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := world.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func limitTail[T any](records []T, limit int) []T {
	if limit <= 0 || len(records) <= limit {
		return records
	}
	return records[len(records)-limit:]
}
