package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dantesync/dsyncmon/internal/exporter"
	"github.com/dantesync/dsyncmon/pkg/dsync"
)

const defaultConfigPath = "/etc/dsyncmon.yaml"

func main() {
	var configPath string
	var reference string
	var timeout time.Duration
	var sampleRate int
	var brief bool
	var jsonOutput bool
	var watch bool
	var serve string
	flag.StringVar(&configPath, "config", defaultConfigPath, "Path to the targets config file.")
	flag.StringVar(&reference, "reference", "", "Reference host name.")
	flag.StringVar(&reference, "r", reference, "Reference host name.")
	flag.DurationVar(&timeout, "timeout", 0, "Per-host query timeout.")
	flag.IntVar(&sampleRate, "sample-rate", 0, "Audio sample rate in Hz.")
	flag.BoolVar(&brief, "brief", false, "Show brief status only.")
	flag.BoolVar(&jsonOutput, "json", false, "Output as JSON.")
	flag.BoolVar(&watch, "watch", false, "Live table, re-polling continuously.")
	flag.StringVar(&serve, "serve", "", "Serve prometheus metrics on this address instead of reporting.")
	flag.Parse()

	if env := os.Getenv("DSYNCMON_CONFIG"); env != "" && configPath == defaultConfigPath {
		configPath = env
	}

	cfg, err := dsync.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if reference != "" {
		cfg.Reference = reference
	}
	if sampleRate != 0 {
		cfg.SampleRateHz = sampleRate
	}
	if timeout != 0 {
		cfg.TimeoutMs = int(timeout / time.Millisecond)
	}

	// Positional arguments narrow or replace the configured table.
	targets := cfg.Targets
	if args := flag.Args(); len(args) > 0 {
		targets, err = dsync.ResolveHosts(args, cfg.Targets)
		if err != nil {
			log.Fatal(err)
		}
	}
	if len(targets) == 0 {
		log.Fatal("no targets: provide a config file or host arguments")
	}

	poller := dsync.NewPoller(targets, cfg.Timeout())

	switch {
	case serve != "":
		log.Println("serving metrics on", serve)
		log.Fatal(exporter.New(poller, cfg.Reference, cfg.SampleRateHz).ListenAndServe(serve))
	case watch:
		if err := runWatch(poller, cfg.Reference, cfg.SampleRateHz); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	default:
		outcomes := poller.Poll()
		verdict := dsync.Aggregate(outcomes, cfg.Reference, cfg.SampleRateHz)
		switch {
		case jsonOutput:
			printJSON(outcomes, verdict, cfg)
		case brief:
			printBrief(outcomes, verdict, cfg)
		default:
			printReport(outcomes, verdict, cfg)
		}
		os.Exit(verdict.ExitCode())
	}
}
