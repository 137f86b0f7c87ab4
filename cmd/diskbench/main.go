// Command diskbench is the caller-facing CLI, grounded on cmd/jolt's
// subcommand dispatch (`os.Args[1]` switch feeding dedicated run*Cmd
// functions) but narrowed to the subcommands SPEC_FULL.md's CLI section
// names: run, prepare, devices, serve, plus the bare `--quick
// <drive-root>` flag from spec.md §6.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diskbench/diskbench/internal/agent"
	"github.com/diskbench/diskbench/internal/config"
	"github.com/diskbench/diskbench/internal/model"
	"github.com/diskbench/diskbench/internal/report"
	"github.com/diskbench/diskbench/internal/result"
	"github.com/diskbench/diskbench/internal/sessionstats"
	"github.com/diskbench/diskbench/pkg/diskbench"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			runPlanCmd(os.Args[2:])
			return
		case "prepare":
			runPrepareCmd(os.Args[2:])
			return
		case "devices":
			runDevicesCmd(os.Args[2:])
			return
		case "serve":
			runServeCmd(os.Args[2:])
			return
		}
	}
	runQuickCmd(os.Args[1:])
}

// runQuickCmd implements the bare `--quick <drive-root>` default flag
// from spec.md §6: 3 trials, 30s measured, 5s warmup, block sizes
// {4KiB, 64KiB, 1MiB}, queue depth 32, targeting
// <drive-root>/DiskBench.tmp.
func runQuickCmd(args []string) {
	fs := flag.NewFlagSet("diskbench", flag.ExitOnError)
	quick := fs.String("quick", "", "drive root to run the default quick benchmark against")
	direct := fs.Bool("direct", true, "use O_DIRECT for the quick benchmark")
	fs.Parse(args)

	if *quick == "" {
		fs.Usage()
		os.Exit(2)
	}

	plan := defaultQuickPlan(*quick)
	results, err := runPlan(plan, 5*time.Second, 30*time.Second, *direct, "")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	report.WriteTable(os.Stdout, results)
	printSessionSummary(results)
}

func defaultQuickPlan(driveRoot string) model.Plan {
	path := filepath.Join(driveRoot, "DiskBench.tmp")
	blockSizes := []int64{4 * 1024, 64 * 1024, 1024 * 1024}
	workloads := make([]model.WorkloadSpec, 0, len(blockSizes))
	for _, bs := range blockSizes {
		workloads = append(workloads, model.WorkloadSpec{
			Pattern:      model.Random,
			WritePercent: 30,
			BlockSize:    bs,
			QueueDepth:   32,
			FilePath:     path,
			FileSize:     1 << 30, // 1GiB default quick-test footprint
			Seed:         1,
		})
	}
	return model.Plan{
		Workloads:                  workloads,
		TrialsPerWorkload:          3,
		BootstrapIterations:        2000,
		ComputeConfidenceIntervals: true,
		ReuseExistingFiles:         true,
		DeleteOnComplete:           true,
		Seed:                       1,
	}
}

// runPlanCmd implements `diskbench run -plan plan.yaml`. With -remote,
// every trial is dispatched to a running `diskbench serve` agent instead
// of run against the local engine (D6's client half); the remote host is
// expected to already own the target file (its own `diskbench prepare`
// or a plan with reuse_existing_files), since no prepare step runs, local
// or remote, when -remote is set.
func runPlanCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	planPath := fs.String("plan", "", "path to a YAML Plan document")
	direct := fs.Bool("direct", true, "use O_DIRECT for trial I/O")
	jsonOut := fs.Bool("json", false, "emit JSON instead of a table")
	remote := fs.String("remote", "", "run trials against a diskbench serve agent at this address instead of locally")
	fs.Parse(args)

	if *planPath == "" {
		fmt.Println("Error: -plan is required")
		os.Exit(2)
	}

	file, err := config.LoadFile(*planPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	plan, err := file.ToPlan()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	warmup, measured := file.Durations()

	results, err := runPlan(*plan, warmup, measured, *direct, *remote)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		report.WriteJSON(os.Stdout, results)
	} else {
		report.WriteTable(os.Stdout, results)
		printSessionSummary(results)
	}
}

// runPlan executes every workload in plan for TrialsPerWorkload trials
// each, using the given warmup/measured durations for every trial. When
// remoteAddr is non-empty, trials run via agent.RunRemoteTrial against
// that address instead of the local engine, and no local file is
// prepared (the remote host owns the target path).
func runPlan(plan model.Plan, warmup, measured time.Duration, direct bool, remoteAddr string) ([]model.WorkloadResult, error) {
	eng := diskbench.New(direct)
	defer eng.Dispose()

	results := make([]model.WorkloadResult, 0, len(plan.Workloads))
	for _, w := range plan.Workloads {
		if remoteAddr == "" {
			if _, err := eng.Prepare(model.PrepareSpec{
				Path:          w.FilePath,
				Size:          w.FileSize,
				ReuseIfExists: plan.ReuseExistingFiles,
			}, nil); err != nil {
				return nil, fmt.Errorf("prepare %s: %w", w.FilePath, err)
			}
		}

		trials := make([]model.TrialResult, 0, plan.TrialsPerWorkload)
		for i := 0; i < plan.TrialsPerWorkload; i++ {
			spec := model.TrialSpec{
				Workload:          w,
				WarmupDuration:    warmup,
				MeasuredDuration:  measured,
				TrialIndex:        i,
				CollectTimeSeries: true,
			}

			var tr model.TrialResult
			var err error
			if remoteAddr != "" {
				tr, err = agent.RunRemoteTrial(context.Background(), remoteAddr, spec)
			} else {
				tr, err = eng.RunTrial(context.Background(), spec, progressLogger(w, i))
			}
			if err != nil {
				return nil, fmt.Errorf("run_trial %s trial %d: %w", w.FilePath, i, err)
			}
			trials = append(trials, tr)
		}

		results = append(results, result.Assemble(w, trials, plan.BootstrapIterations, plan.ComputeConfidenceIntervals, plan.Seed))

		if plan.DeleteOnComplete && remoteAddr == "" {
			os.Remove(w.FilePath)
		}
	}
	return results, nil
}

func progressLogger(w model.WorkloadSpec, trialIdx int) func(model.Progress) {
	return func(p model.Progress) {
		fmt.Printf("\r%s trial %d: %s %6.0f IOPS  ", w.Pattern, trialIdx, p.Phase, p.IOPS)
	}
}

// printSessionSummary folds every workload's trials into one run-wide
// HdrHistogram rollup (D2) and prints it beneath the per-workload table.
func printSessionSummary(results []model.WorkloadResult) {
	roll := sessionstats.New()
	for _, r := range results {
		roll.AddWorkload(r)
	}
	report.WriteSessionSummary(os.Stdout, roll)
}

// runPrepareCmd implements `diskbench prepare -path ... -size ...`.
func runPrepareCmd(args []string) {
	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	path := fs.String("path", "", "file to prepare")
	size := fs.Int64("size", 0, "target size in bytes")
	reuse := fs.Bool("reuse", true, "reuse an existing correctly-sized file")
	fs.Parse(args)

	if *path == "" || *size <= 0 {
		fmt.Println("Error: -path and -size are required")
		os.Exit(2)
	}

	eng := diskbench.New(false)
	res, err := eng.Prepare(model.PrepareSpec{Path: *path, Size: *size, ReuseIfExists: *reuse}, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Prepared %s: %d bytes (fast_path=%v reused=%v logical_sector=%d physical_sector=%d)\n",
		res.Path, res.FinalSize, res.UsedFastPath, res.WasReused, res.LogicalSectorSize, res.PhysicalSectorSize)
}

// runDevicesCmd implements `diskbench devices [-path ...]`: with -path,
// reports drive_details for that one path; without, lists all_drives.
func runDevicesCmd(args []string) {
	fs := flag.NewFlagSet("devices", flag.ExitOnError)
	path := fs.String("path", "", "report details for this path only")
	fs.Parse(args)

	eng := diskbench.New(false)
	if *path != "" {
		d, err := eng.DriveDetails(*path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if d == nil {
			fmt.Println("no drive details available for that path")
			return
		}
		fmt.Printf("%+v\n", *d)
		return
	}

	drives, err := eng.AllDrives()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, d := range drives {
		fmt.Printf("%+v\n", d)
	}
}

// runServeCmd implements `diskbench serve -port ...`, starting the
// optional remote-trial HTTP agent (D6).
func runServeCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 9090, "listen port")
	direct := fs.Bool("direct", true, "use O_DIRECT for served trials")
	fs.Parse(args)

	eng := diskbench.New(*direct)
	defer eng.Dispose()

	srv := agent.NewServer(eng)
	if err := srv.ListenAndServe(*port); err != nil {
		fmt.Printf("Agent failed: %v\n", err)
		os.Exit(1)
	}
}
