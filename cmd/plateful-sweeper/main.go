package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"plateful/internal/modkit"
	"plateful/internal/modkit/module"
	"plateful/internal/platform/config"
	"plateful/internal/platform/logger"
	"plateful/internal/platform/store"

	ondemandmod "plateful/internal/services/ondemand/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var (
		fConc  = flag.Int("concurrency", 2, "concurrent collection cycles per tick")
		fBatch = flag.Int("batch", 10, "pending rows pulled per sweep tick")
		fTick  = flag.String("tick", "15s", "sweep tick interval")
		fURL   = flag.String("collection_url", "", "collection service base URL (overrides env)")
	)
	flag.Parse()

	// Export as env so the module reads the same values via FromConfig
	mustSetEnv("CORE_ONDEMAND_CONCURRENCY", fmt.Sprintf("%d", *fConc))
	mustSetEnv("CORE_ONDEMAND_SWEEP_BATCH", fmt.Sprintf("%d", *fBatch))
	mustSetEnv("CORE_ONDEMAND_TICK_EVERY", *fTick)
	mustSetEnv("CORE_ONDEMAND_COLLECTION_URL", *fURL)

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	mod := ondemandmod.New(deps)
	module.Register(mod.Name(), mod.Ports())

	ports := module.MustPortsOf[ondemandmod.Ports](mod)

	if err := ports.Worker.Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("ondemand sweeper failed")
	}
}
