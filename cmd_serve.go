package main

import (
	"context"

	"campus-canteen-api/config"
	"campus-canteen-api/handlers"
	"campus-canteen-api/logging"
	"campus-canteen-api/metrics"
	"campus-canteen-api/middleware"
	"campus-canteen-api/routes"
	"campus-canteen-api/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg, log, err := boot()
	if err != nil {
		return err
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if cfg.UsingDefaultSecret() {
		log.Warn("JWT_SECRET is not set; tokens are signed with the built-in development secret")
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		log.WithField("addr", cfg.RedisAddr).Info("menu cache enabled")
	}

	m := metrics.New()
	catalog := services.NewCatalog(db, rdb, cfg.MenuCacheTTL, log, m)
	if n, err := catalog.Seed(context.Background(), services.DefaultMenu()); err != nil {
		return err
	} else if n > 0 {
		log.WithField("items", n).Info("menu seeded")
	}

	h := &handlers.Handler{
		Auth: services.NewAuthService(db, services.AuthOptions{
			Passkey:           cfg.StaffPasskey,
			InstitutionDomain: cfg.InstitutionDomain,
		}, log, m),
		Tokens:  middleware.NewTokenService(cfg.JWTSecret),
		Orders:  services.NewOrderLedger(db, log, m),
		Revenue: services.NewRevenueAggregator(db),
		Catalog: catalog,
		Log:     log,
	}

	r, err := routes.NewRouter(h, m)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"port":   cfg.Port,
		"driver": cfg.DBDriver,
		"domain": cfg.InstitutionDomain,
	}).Info("server starting")
	return r.Run(":" + cfg.Port)
}

// boot loads config and builds the process logger
func boot() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}
