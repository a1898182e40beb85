package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/cardpack/api/rest"
	"github.com/kasuganosora/cardpack/api/sse"
	"github.com/kasuganosora/cardpack/audit"
	"github.com/kasuganosora/cardpack/cache"
	"github.com/kasuganosora/cardpack/config"
	dbadapter "github.com/kasuganosora/cardpack/db"
	"github.com/kasuganosora/cardpack/game/accrual"
	"github.com/kasuganosora/cardpack/game/catalog"
	"github.com/kasuganosora/cardpack/game/loot"
	"github.com/kasuganosora/cardpack/game/player"
	mw "github.com/kasuganosora/cardpack/middleware"
	"github.com/kasuganosora/cardpack/model"
	"github.com/kasuganosora/cardpack/persist"
	"github.com/kasuganosora/cardpack/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer c.Close()
	pubsub, err := cache.NewPubSub(cfg.Cache)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	store, err := persist.NewStore(cfg.Storage.Backend, db, c)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// ---- Catalog / Loot ----
	order, err := catalog.ParseRarityOrder(cfg.Game.RarityNames())
	if err != nil {
		log.Fatalf("rarities: %v", err)
	}
	var cat *catalog.Catalog
	if cfg.Game.CatalogPath != "" {
		cat, err = catalog.Load(cfg.Game.CatalogPath, order)
	} else {
		cat, err = catalog.Default(order)
	}
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	logger.Info("Catalog loaded", zap.Int("cards", cat.Len()))

	weights := make([]loot.Weight, len(cfg.Game.Rarities))
	for i, r := range cfg.Game.Rarities {
		weights[i] = loot.Weight{Rarity: catalog.Rarity(r.Name), Weight: r.Weight}
	}
	roller, err := loot.NewRoller(cat, weights, cfg.Game.CardsPerPack, loot.DefaultRNG())
	if err != nil {
		log.Fatalf("loot: %v", err)
	}

	// ---- Player ----
	econ := cfg.Game.Economy
	ctl, err := player.Open(ctx, player.Options{
		Store: store,
		Key:   cfg.Storage.ProfileKey,
		Rules: accrual.Rules{MaxPacks: cfg.Game.MaxPacks, Cooldown: cfg.Game.PackCooldown},
		Economy: player.Economy{
			PerPackReward: econ.PerPackReward,
			CardPrice:     econ.CardPrice,
			PackPrice:     econ.PackPrice,
			BulkPackPrice: econ.BulkPackPrice,
			BulkPackCount: econ.BulkPackCount,
		},
		Roller: roller,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("player: %v", err)
	}

	publisher := sse.NewPublisher(pubsub, sse.StateChannel, logger)
	go publisher.Run(ctx)
	ctl.OnChange(func(st player.State) {
		publisher.Notify(ctl.ViewOf(st))
	})

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("pack_accrual", cfg.Game.TickInterval, func(ctx context.Context) error {
		_, err := ctl.Tick(ctx)
		return err
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/health", "/sse"), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", apirest.Health(sched))

	h := apirest.NewHandler(ctl, cat, cfg.Game.BackpackPageSize, logger)
	apirest.Register(r, h, auditSvc, cfg.Storage.ProfileKey)

	sseH := sse.NewHandler(pubsub, sse.StateChannel, func() any { return ctl.View() }, logger)
	r.GET("/sse", sseH.ServeSSE)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	// Requests inherit ctx so open SSE streams end on shutdown.
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}
