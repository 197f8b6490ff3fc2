package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/invex/pkg/config"
	"github.com/yurifrl/invex/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "invex",
	})

	var (
		port   = flag.String("port", "", "Server port (overrides server.addr)")
		output = flag.String("o", "", "Output directory")
	)
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	if *output != "" {
		cfg.Output.Dir = *output
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build server", "err", err)
	}

	addr := cfg.Server.Addr
	if *port != "" {
		addr = fmt.Sprintf("0.0.0.0:%s", *port)
	}
	logger.Info("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
