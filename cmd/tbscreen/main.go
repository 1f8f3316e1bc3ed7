package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard"
	"github.com/karuna-health/tbscreen/internal/diagnose"
	"github.com/karuna-health/tbscreen/internal/logging"
	"github.com/karuna-health/tbscreen/internal/session"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Local .env keeps the token out of shell history. Absence is fine.
	_ = godotenv.Load()

	server := flag.String("server", "", "Diagnosis service base URL (default: http://localhost:8000)")
	token := flag.String("token", "", "Bearer token for the diagnosis service")
	configFile := flag.String("config", "", "Load connection settings from YAML file")
	patientID := flag.Int("patient-id", 0, "Start the session with this registry patient, skipping selection")
	reportFile := flag.String("report", "", "Render a saved diagnosis result (JSON file) instead of running a session")
	logFile := flag.String("log", "", "Write structured logs to this file (terminal stays clean)")
	timeout := flag.Int("timeout", 0, "Request timeout in seconds (default: 60)")
	showVersion := flag.Bool("version", false, "Show version")

	flag.Parse()

	if *showVersion {
		fmt.Printf("tbscreen %s\n", version)
		os.Exit(0)
	}

	cfg := wizard.DefaultConfig()
	if *configFile != "" {
		loaded, err := wizard.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	// Flags win over config file and environment.
	if *server != "" {
		cfg.Server = *server
	}
	if *token != "" {
		cfg.Token = *token
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *timeout > 0 {
		cfg.TimeoutSeconds = *timeout
	}

	opts := wizard.Options{Config: cfg}

	if *reportFile != "" {
		result, err := loadSavedResult(*reportFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Result = result
	}

	if *patientID > 0 {
		patient, err := fetchCarriedPatient(cfg, *patientID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching patient %d: %v\n", *patientID, err)
			os.Exit(1)
		}
		opts.Carried = patient
	}

	if err := wizard.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSavedResult reads a diagnosis result saved as JSON.
func loadSavedResult(path string) (*diagnose.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}

	var result diagnose.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &result, nil
}

// fetchCarriedPatient resolves --patient-id against the registry before the
// wizard starts.
func fetchCarriedPatient(cfg wizard.Config, id int) (*session.PatientRef, error) {
	log, err := logging.New(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	client := diagnose.NewClient(cfg.Server, cfg.Token,
		time.Duration(cfg.TimeoutSeconds)*time.Second, log)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	return client.GetPatient(ctx, id)
}
