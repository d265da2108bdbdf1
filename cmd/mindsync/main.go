package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"mindsync/internal/analyze"
	"mindsync/internal/config"
	"mindsync/internal/ics"
	appLog "mindsync/internal/log"
	"mindsync/internal/model"
	"mindsync/internal/web"
)

type flagConfig struct {
	configPath string
	input      string
	date       string
	prevScore  float64
	hasPrev    bool
	forecast   int
	serve      bool
	listen     string
	pretty     bool
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	analyzer := analyze.New(conf.Scoring, conf.Location())

	if flags.serve {
		if err := serve(conf, analyzer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("server exited", err)
			os.Exit(1)
		}
		return
	}

	if err := analyzeOnce(conf, analyzer, flags); err != nil {
		appLog.Error("analysis failed", err, "input", flags.input)
		os.Exit(1)
	}
}

// analyzeOnce loads one calendar file (JSON export or .ics), analyzes the
// target date (or a multi-day forecast), and prints the JSON report to
// stdout.
func analyzeOnce(conf *config.Config, analyzer *analyze.Analyzer, flags flagConfig) error {
	if flags.input == "" {
		return errors.New("no input file; use -input or -serve")
	}

	data, err := os.ReadFile(flags.input)
	if err != nil {
		return err
	}

	date := time.Now().In(conf.Location())
	if flags.date != "" {
		date, err = time.ParseInLocation("2006-01-02", flags.date, conf.Location())
		if err != nil {
			return fmt.Errorf("invalid -date %q, want YYYY-MM-DD: %w", flags.date, err)
		}
	}

	events, err := loadEvents(conf, analyzer, flags.input, data, date)
	if err != nil {
		return err
	}

	var out any
	if flags.forecast > 1 {
		out = analyzer.Forecast(events, date, flags.forecast)
	} else {
		var prev *float64
		if flags.hasPrev {
			prev = &flags.prevScore
		}
		out = analyzer.Day(events, date, prev)
	}

	enc := json.NewEncoder(os.Stdout)
	if flags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func loadEvents(conf *config.Config, analyzer *analyze.Analyzer, path string, data []byte, date time.Time) ([]model.Event, error) {
	if strings.EqualFold(filepath.Ext(path), ".ics") {
		entries, err := ics.Parse(ics.Source{ID: filepath.Base(path)}, data, analyzer.Normalizer)
		if err != nil {
			return nil, err
		}
		return ics.Expand(entries, ics.ExpandConfig{
			Location:   conf.Location(),
			RangeStart: date.AddDate(0, 0, -1),
			RangeEnd:   date.AddDate(0, 0, 31),
		})
	}
	return analyzer.Normalizer.Parse(data)
}

// serve runs the HTTP API with cron-scheduled ICS refresh until SIGINT or
// SIGTERM.
func serve(conf *config.Config, analyzer *analyze.Analyzer) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	server := web.NewServer(conf, analyzer)

	// Periodic feed refresh keeps the events cache warm between requests.
	var scheduler *cron.Cron
	if len(conf.ICS) > 0 {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(conf.RefreshCron, func() {
			if _, err := server.Refresh(ctx); err != nil {
				appLog.Error("scheduled refresh failed", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", conf.RefreshCron, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("shutdown failed", err)
		}
		cancel()
	}()

	appLog.Info("mindsync serving", "listen", "http://"+conf.Listen, "ics_sources", len(conf.ICS))
	return httpServer.ListenAndServe()
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.input, "input", "", "Calendar file to analyze (JSON export or .ics)")
	flag.StringVar(&cfg.date, "date", "", "Target date (YYYY-MM-DD, default today)")
	flag.IntVar(&cfg.forecast, "forecast", 1, "Number of days to analyze starting at -date")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the HTTP API server")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.pretty, "pretty", false, "Pretty-print JSON output")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.Float64Var(&cfg.prevScore, "previous-score", 0, "Previous day's stress score for carryover")

	flag.Parse()

	cfg.hasPrev = flagWasSet("previous-score")
	return cfg
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mindsync", "config.yaml")
	}
	return "./config.yaml"
}
