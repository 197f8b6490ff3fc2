package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/invex/pkg/config"
	"github.com/yurifrl/invex/pkg/service"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "invex",
	})

	var outputPath string
	flag.StringVar(&outputPath, "o", "", "Output directory (default: same as input file)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		logger.Error("invalid usage", "args", args)
		fmt.Fprintf(os.Stderr, "Usage: invex [-o output_dir] <directory>\n")
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	if outputPath != "" {
		cfg.Output.Dir = outputPath
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	processor, err := service.NewProcessor(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build processor", "error", err)
	}

	dir := args[0]
	if err := processor.ProcessDirectory(dir); err != nil {
		logger.Fatal("processing failed", "error", err)
	}
}
