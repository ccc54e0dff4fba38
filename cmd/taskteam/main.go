// Command taskteam runs the multi-worker task execution coordinator
// described in this module: the "run" subcommand spawns and supervises
// N worker subprocesses, and the "worker" subcommand is the re-exec
// target each child runs as (not meant to be invoked directly by users).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/tailored-agentic-units/taskteam/coordinator"
	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/queue"
	"github.com/tailored-agentic-units/taskteam/replay"
	"github.com/tailored-agentic-units/taskteam/worker"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runCoordinator(os.Args[2:]))
	case "worker":
		os.Exit(runWorker(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: taskteam <run|worker> [flags]")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runCoordinator(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var (
		configFile  = fs.String("config", "", "Path to team config JSON file")
		team        = fs.String("team", "", "Team identifier")
		projectDir  = fs.String("project-dir", ".", "Working directory for workers")
		model       = fs.String("model", "", "Model name workers drive")
		numWorkers  = fs.Int("num-workers", 0, "Number of worker subprocesses (overrides config)")
		maxTasks    = fs.Int("max-tasks", 0, "Per-worker task cap, 0 for unbounded (overrides config)")
		pollSeconds = fs.Float64("poll-interval", 0, "Seconds between empty-queue polls (overrides config)")
		trackerURL  = fs.String("tracker-url", "", "Task tracker base URL")
		trackerKey  = fs.String("tracker-key", "", "Task tracker bearer token")
		providerURL = fs.String("provider-url", "", "Model provider base URL")
		dashPort    = fs.Int("dashboard-port", 0, "Replay API / health listen port (overrides config)")
		noDashboard = fs.Bool("no-dashboard", false, "Disable the Replay API / health server")
		verbose     = fs.Bool("verbose", false, "Enable debug logging")
	)
	fs.Parse(args)

	logger := newLogger(*verbose)

	cfg, err := domain.LoadTeamConfig(*configFile)
	if err != nil {
		log.Fatalf("taskteam: %v", err)
	}

	overrides := domain.TeamConfig{
		Team:          *team,
		ProjectDir:    *projectDir,
		Model:         *model,
		NumWorkers:    *numWorkers,
		MaxTasks:      *maxTasks,
		PollInterval:  secondsToDuration(*pollSeconds),
		DashboardPort: *dashPort,
		NoDashboard:   *noDashboard,
	}
	cfg.Merge(&overrides)

	if cfg.Team == "" {
		fmt.Fprintln(os.Stderr, "taskteam run: -team is required")
		return 1
	}

	extraArgs := reexecArgs(*trackerURL, *trackerKey, *providerURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !cfg.NoDashboard {
		startReplayServer(cfg, *trackerURL, *trackerKey, logger)
	}

	result, err := coordinator.Run(ctx, cfg, extraArgs, logger)
	if err != nil {
		log.Fatalf("taskteam: coordinator run failed: %v", err)
	}

	if result.Failed > 0 && result.Completed == 0 {
		return 1
	}
	return 0
}

func runWorker(args []string) int {
	fs := flag.NewFlagSet("worker", flag.ExitOnError)
	var (
		workerID    = fs.Int("worker-id", -1, "Numeric worker identifier")
		team        = fs.String("team", "", "Team identifier")
		model       = fs.String("model", "", "Model name to drive")
		projectDir  = fs.String("project-dir", ".", "Working directory")
		numWorkers  = fs.Int("num-workers", 1, "Total workers in this run")
		maxTasks    = fs.Int("max-tasks", 0, "Per-worker task cap, 0 for unbounded")
		pollSeconds = fs.Float64("poll-interval", 10, "Seconds between empty-queue polls")
		trackerURL  = fs.String("tracker-url", "", "Task tracker base URL")
		trackerKey  = fs.String("tracker-key", "", "Task tracker bearer token")
		providerURL = fs.String("provider-url", "", "Model provider base URL")
		providerKey = fs.String("provider-key", "", "Model provider API key")
		maxTokens   = fs.Int("max-tokens", 0, "Context budget in estimated tokens, 0 for default")
	)
	fs.Parse(args)

	if *workerID < 0 || *team == "" || *model == "" {
		fmt.Fprintln(os.Stderr, "taskteam worker: -worker-id, -team, and -model are required")
		return 1
	}

	logger := newLogger(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	status, err := worker.Run(ctx, worker.Config{
		WorkerID: *workerID,
		Team: domain.TeamConfig{
			Team:         *team,
			Model:        *model,
			ProjectDir:   *projectDir,
			NumWorkers:   *numWorkers,
			MaxTasks:     *maxTasks,
			PollInterval: secondsToDuration(*pollSeconds),
		},
		TrackerURL:  *trackerURL,
		TrackerKey:  *trackerKey,
		ProviderURL: *providerURL,
		ProviderKey: *providerKey,
		MaxTokens:   *maxTokens,
		Logger:      logger,
		EventsOut:   os.Stdout,
	})

	if ctx.Err() != nil {
		return 130
	}
	if err != nil {
		return 1
	}
	if status.TasksFailed > 0 && status.TasksCompleted == 0 {
		return 1
	}
	return 0
}

// reexecArgs threads connection flags that belong to argv but not to the
// persisted TeamConfig onto every spawned worker's command line.
func reexecArgs(trackerURL, trackerKey, providerURL string) []string {
	var args []string
	if trackerURL != "" {
		args = append(args, "--tracker-url", trackerURL)
	}
	if trackerKey != "" {
		args = append(args, "--tracker-key", trackerKey)
	}
	if providerURL != "" {
		args = append(args, "--provider-url", providerURL)
	}
	return args
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// startReplayServer launches the Replay API / health endpoint in the
// background; failures are logged, not fatal, since the coordinator run
// itself does not depend on it.
func startReplayServer(cfg domain.TeamConfig, trackerURL, trackerKey string, logger *slog.Logger) {
	store := replayStore(cfg, trackerURL, trackerKey, logger)
	addr := fmt.Sprintf(":%d", cfg.DashboardPort)
	go func() {
		if err := http.ListenAndServe(addr, replay.NewHandler(store)); err != nil {
			logger.Error("taskteam: replay server exited", "error", err)
		}
	}()
}

func replayStore(cfg domain.TeamConfig, trackerURL, trackerKey string, logger *slog.Logger) *replay.Store {
	store := replay.New(cfg.ProjectDir, logger)
	if trackerURL == "" {
		return store
	}
	tracker := queue.New(cfg.Team, trackerURL, trackerKey, logger)
	if err := tracker.Connect(); err != nil {
		logger.Warn("taskteam: replay tracker probe unavailable", "error", err)
		return store
	}
	return store.WithTracker(tracker)
}
