// Command pipeline collects the configured public data sources and
// writes the canonical snapshots. Errors are logged, never fatal: the
// process always exits 0 so partial collections still publish what
// they gathered.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ciciatech/projeto-bruno/internal/config"
	"github.com/ciciatech/projeto-bruno/internal/infrastructure"
	"github.com/ciciatech/projeto-bruno/internal/pipeline"
)

func main() {
	modulesFlag := flag.String("modules", "", "comma-separated modules to run (default: all)")
	apiKey := flag.String("api-key", "", "Portal da Transparência API key (overrides env)")
	fast := flag.Bool("fast", false, "run only the BACEN module (quick check)")
	configFile := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Warning: failed to load config, using defaults: %v\n", err)
		cfg, _ = config.Load("")
		if cfg == nil {
			// Even defaults failed; nothing sensible left to do.
			fmt.Println("Error: unable to build configuration")
			return
		}
	}
	if *apiKey != "" {
		cfg.Portal.APIKey = *apiKey
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Printf("Error: failed to create data directories: %v\n", err)
		return
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.LogPath("coleta.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: failed to initialize logger: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	var modules []string
	switch {
	case *fast:
		modules = []string{pipeline.ModuleBacen}
	case *modulesFlag != "":
		for _, m := range strings.Split(*modulesFlag, ",") {
			if m = strings.TrimSpace(m); m != "" {
				modules = append(modules, m)
			}
		}
	}

	runner, err := pipeline.NewRunner(cfg, paths, logger)
	if err != nil {
		logger.Error("failed to build pipeline", slog.String("error", err.Error()))
		return
	}

	meta := runner.Run(context.Background(), modules)
	for module, count := range meta.Counts {
		logger.Info("module summary",
			slog.String("module", module),
			slog.Int("records", count))
	}

	_ = os.Stdout.Sync()
}
