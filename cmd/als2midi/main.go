package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

var (
	inFlag      = flag.String("i", "", "Input live set (.als)")
	listFlag    = flag.String("l", "", "The path to the list of live sets,\nfind . -type f -name \"*.als\" > als_list.txt")
	outFlag     = flag.String("o", "", "Output directory, defaults to the directory of each input")
	maxFlag     = flag.Int("p", maxGoroutines, "Number of files processed in parallel, must be > 0")
	configFlag  = flag.String("c", "", "The path to a YAML config file")
	verboseFlag = flag.Bool("v", false, "Debug logging")
	checkFlag   = flag.Bool("check", false, "Read every written file back and compare")
	dumpFlag    = flag.Bool("dump", false, "Write a text listing next to every MIDI file")
	presetFlag  = flag.Bool("presets", false, "Write hosted plugin presets")
	channelFlag = flag.Int("channel", 0, "First MIDI channel, 1..15; 0 starts at channel 0")
	programFlag = flag.Int("program", 0, "Program change sent on note tracks")
	ccFlag      = flag.Int("cc", 0, "Controller number of automation streams")
	gridFlag    = flag.Int64("grid", 0, "Automation interpolation step in ticks")
	curveFlag   = flag.String("curve", "", "Automation curve, linear or log")
)

// applyFlags overrides config values with the flags given on the command line.
func applyFlags(cfg *config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.OutDir = *outFlag
		case "p":
			cfg.Workers = *maxFlag
		case "check":
			cfg.Check = *checkFlag
		case "dump":
			cfg.Dump = *dumpFlag
		case "presets":
			cfg.Presets = *presetFlag
		case "channel":
			cfg.FirstChannel = *channelFlag
		case "program":
			cfg.Program = uint8(*programFlag & 0x7f)
		case "cc":
			cfg.Controller = uint8(*ccFlag & 0x7f)
		case "grid":
			cfg.GridTicks = *gridFlag
		case "curve":
			cfg.Curve = *curveFlag
		}
	})
}

func printResult(w io.Writer, r *result) {
	if r.err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", color.RedString("FAIL"), r.name, r.err)
		return
	}
	if len(r.files) == 0 {
		fmt.Fprintf(w, "%s %s: nothing to convert\n", color.YellowString("SKIP"), r.name)
		return
	}
	fmt.Fprintf(w, "%s %s: %d tracks, %d automated parameters, %d presets, %d files\n",
		color.GreenString("OK"), r.name, r.tracks, r.params, r.presets, len(r.files))
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i song.als | -l list.txt\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if (*inFlag == "") == (*listFlag == "") {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(*verboseFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() // nolint:errcheck
	enableLogging(logger)

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	applyFlags(&cfg)
	if err := cfg.validate(); err != nil {
		flag.Usage()
		logger.Fatal("invalid options", zap.Error(err))
	}

	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			logger.Fatal("output directory", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var paths <-chan string
	if *listFlag != "" {
		f, err := os.Open(*listFlag)
		if err != nil {
			logger.Fatal("list", zap.Error(err))
		}
		defer f.Close()
		paths = readList(ctx, f)
	} else {
		single := make(chan string, 1)
		single <- *inFlag
		close(single)
		paths = single
	}

	s := convertAll(ctx, paths, cfg, func(r *result) {
		printResult(os.Stdout, r)
	})

	logger.Info("done",
		zap.Int("files", s.files),
		zap.Int("failed", s.failed),
		zap.Int("written", s.output))

	if s.failed > 0 {
		logger.Sync() // nolint:errcheck
		os.Exit(1)
	}
}
