package main

import (
	"context"
	"log"
	"net"
	"strconv"

	"github.com/joho/godotenv"

	"clinichat/internal/app"
	"clinichat/pkg/config"
	"clinichat/pkg/logger"
	"clinichat/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	// config path: flag wins over env
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// explicit flags win over env/config
	if setFlags["addr"] {
		if h, p, err := net.SplitHostPort(addrVal); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = addrVal
		}
	}
	if setFlags["db"] || cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = dbVal
	}

	logger.Init(cfg.Logging.Level)

	source := "defaults"
	switch {
	case len(setFlags) > 0:
		source = "flags"
	case envUsed:
		source = "env"
	default:
		if _, err := config.Load(cfgPath); err == nil {
			source = "config"
		}
	}

	a, err := app.New(cfg, source, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, cfg.Storage.DBPath)
	}

	ctx, stop := shutdown.SetupSignalHandler(context.Background())
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
