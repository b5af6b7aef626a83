package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/liftplan/internal/backend"
	"github.com/claude/liftplan/internal/config"
	"github.com/claude/liftplan/internal/editor"
	lpmcp "github.com/claude/liftplan/internal/mcp"
	"github.com/claude/liftplan/internal/program"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "LiftPlan server URL; sends the batch over the REST API instead of opening the database")
	apiKey := flag.String("api-key", os.Getenv("LIFTPLAN_API_KEY"), "API key for -server")
	programArg := flag.String("program", "", "program UUID")
	file := flag.String("file", "-", "JSON array of operations, - for stdin")
	jsonOut := flag.Bool("json", false, "print the full result as JSON")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftplan-apply", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *programArg == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftplan-apply -program <UUID> [-file ops.json] [-server URL -api-key KEY | -config config.yaml]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	programID, err := uuid.Parse(*programArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -program must be a UUID\n")
		os.Exit(1)
	}

	raw, err := readOperations(*file)
	if err != nil {
		log.Error("failed to read operations", "file", *file, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var result *program.Result
	if *serverURL != "" {
		client := lpmcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"), *apiKey)
		result, err = client.ApplyEdits(ctx, 0, programID, raw)
	} else {
		result, err = applyLocal(ctx, *configPath, programID, raw, log)
	}
	if err != nil {
		log.Error("apply failed", "program_id", programID, "error", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	} else {
		printResult(result)
	}
	if result.Failed > 0 {
		os.Exit(2)
	}
}

func applyLocal(ctx context.Context, configPath string, programID uuid.UUID, raw []byte, log *slog.Logger) (*program.Result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := backend.Open(ctx, cfg.Database, "migrations", log)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	uid, err := backend.DevUser(ctx, store)
	if err != nil {
		return nil, err
	}
	return backend.NewService(store, nil, log).ApplyJSON(ctx, uid, programID, editor.SourceCLI, raw)
}

func readOperations(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printResult(r *program.Result) {
	fmt.Println()
	fmt.Println("=== Edit Summary ===")
	fmt.Printf("  Applied:  %d\n", r.Applied)
	fmt.Printf("  Skipped:  %d\n", r.Skipped)
	fmt.Printf("  Failed:   %d\n", r.Failed)

	for _, o := range r.Outcomes {
		if o.Status == program.StatusApplied {
			continue
		}
		fmt.Printf("    #%d %s %s: %s (%s)\n", o.Index, o.Op, o.Target, o.Status, o.Reason)
	}
	for _, d := range r.Reconciled {
		for _, e := range d.Errors {
			fmt.Printf("  Renumber error on day %s: %s\n", d.DayID, e)
		}
	}
	fmt.Println()
}
