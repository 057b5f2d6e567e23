package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/demmel/life-plus-plus/internal/storage"
	api "github.com/demmel/life-plus-plus/pkg/lifeplusplus"
)

const defaultDBPath = "lifepp.db"

var stdout io.Writer = os.Stdout

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "simulate":
		return runSimulate(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "generations":
		return runGenerations(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "comparisons":
		return runComparisons(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: lifeppctl <simulate|runs|generations|lineage|comparisons|export> [flags]", msg)
}

type storeFlags struct {
	kind   *string
	dbPath *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:   fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath: fs.String("db-path", defaultDBPath, "sqlite database path"),
	}
}

func (s storeFlags) client() (*api.Client, error) {
	return api.New(api.Options{StoreKind: *s.kind, DBPath: *s.dbPath})
}

// addSessionFlags registers the flags shared by every command that breeds a
// population.
func addSessionFlags(fs *flag.FlagSet) map[string]any {
	return map[string]any{
		"run-id":      fs.String("run-id", "", "explicit run id (optional)"),
		"pop":         fs.Int("pop", 8, "population size"),
		"kernel":      fs.Int("kernel", 3, "odd convolution kernel size"),
		"layers":      fs.Int("layers", 1, "convolution layers per rule"),
		"seed":        fs.Int64("seed", 1, "rng seed"),
		"selection":   fs.String("selection", "uniform", "parent sampler: uniform|rank"),
		"seed-mode":   fs.String("seed-mode", "noise", "first frame: noise|perlin"),
		"workers":     fs.Int("workers", 0, "simulation workers (0 uses GOMAXPROCS)"),
		"view-width":  fs.Int("view-width", 0, "view width in cells"),
		"view-height": fs.Int("view-height", 0, "view height in cells"),
	}
}

func sessionFromFlags(fs *flag.FlagSet, configPath string, values map[string]any) (api.SessionRequest, error) {
	req, err := loadOrDefaultSession(configPath)
	if err != nil {
		return api.SessionRequest{}, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	// With a config file only explicitly given flags override it.
	for name, v := range values {
		if !set[name] && configPath != "" {
			continue
		}
		applySessionFlag(&req, name, v)
	}
	return req, nil
}

func runSimulate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional session config JSON path")
	generations := fs.Int("gens", 5, "ranking passes to complete")
	judgeSteps := fs.Int("judge-steps", 8, "frames each rule runs before it is scored")
	judgeSize := fs.Int("judge-size", 32, "judge world width and height")
	stores := addStoreFlags(fs)
	session := addSessionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *generations <= 0 {
		return errors.New("gens must be > 0")
	}
	req, err := sessionFromFlags(fs, *configPath, session)
	if err != nil {
		return err
	}

	client, err := stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Simulate(ctx, api.SimulateRequest{
		SessionRequest: req,
		Generations:    *generations,
		JudgeSteps:     *judgeSteps,
		JudgeWidth:     *judgeSize,
		JudgeHeight:    *judgeSize,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "run_id=%s generations=%s comparisons=%s\n",
		summary.RunID,
		humanize.Comma(int64(summary.Generations)),
		humanize.Comma(int64(summary.Comparisons)),
	)
	for i, id := range summary.EliteIDs {
		fmt.Fprintf(stdout, "gen=%d elite=%s\n", i+1, id)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, api.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs found")
		return nil
	}

	t := newTable(stdout, "run_id", "created_at", "mode", "pop", "kernel", "layers", "selection", "seed")
	for _, r := range runs {
		t.row(r.ID, r.CreatedAtUTC, r.Mode, r.PopulationSize, r.KernelSize, r.Layers, r.Selection, r.Seed)
	}
	return t.flush()
}

type journalFlags struct {
	runID  *string
	latest *bool
	limit  *int
	stores storeFlags
}

func addJournalFlags(fs *flag.FlagSet) journalFlags {
	return journalFlags{
		runID:  fs.String("run-id", "", "run id"),
		latest: fs.Bool("latest", false, "use the most recent run"),
		limit:  fs.Int("limit", 0, "show only the newest N rows (<=0 for all)"),
		stores: addStoreFlags(fs),
	}
}

func (j journalFlags) request() (api.JournalRequest, error) {
	if *j.runID != "" && *j.latest {
		return api.JournalRequest{}, errors.New("use either --run-id or --latest, not both")
	}
	if *j.runID == "" && !*j.latest {
		return api.JournalRequest{}, errors.New("requires --run-id or --latest")
	}
	return api.JournalRequest{RunID: *j.runID, Latest: *j.latest, Limit: *j.limit}, nil
}

func runGenerations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generations", flag.ContinueOnError)
	jf := addJournalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := jf.request()
	if err != nil {
		return err
	}
	client, err := jf.stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Generations(ctx, req)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "no generation records")
		return nil
	}
	t := newTable(stdout, "gen", "comparisons", "elite", "ranked")
	for _, g := range records {
		t.row(g.Generation, g.Comparisons, g.EliteID, strings.Join(g.RankedIDs, ","))
	}
	return t.flush()
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	jf := addJournalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := jf.request()
	if err != nil {
		return err
	}
	client, err := jf.stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Lineage(ctx, req)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "no lineage records")
		return nil
	}
	t := newTable(stdout, "gen", "rule_id", "op", "parents")
	for _, l := range records {
		t.row(l.Generation, l.RuleID, l.Operation, strings.Join(l.ParentIDs, ","))
	}
	return t.flush()
}

func runComparisons(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comparisons", flag.ContinueOnError)
	jf := addJournalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := jf.request()
	if err != nil {
		return err
	}
	client, err := jf.stores.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Comparisons(ctx, req)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "no comparison records")
		return nil
	}
	t := newTable(stdout, "gen", "step", "left", "right", "outcome", "left_rule", "right_rule")
	for _, c := range records {
		t.row(c.Generation, c.Step, c.Left, c.Right, c.Outcome, c.LeftRuleID, c.RightRuleID)
	}
	return t.flush()
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional session config JSON path")
	outDir := fs.String("out", "", "output directory (defaults to exports/seed-<seed>)")
	steps := fs.Int("steps", 64, "simulation steps before each snapshot")
	session := addSessionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	req, err := sessionFromFlags(fs, *configPath, session)
	if err != nil {
		return err
	}

	client, err := api.New(api.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, api.ExportRequest{
		SessionRequest: req,
		Steps:          *steps,
		OutDir:         *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "exported %s to %s\n", humanize.Comma(int64(len(summary.Files))), summary.Directory)
	return nil
}
