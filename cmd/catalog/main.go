package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCatalog/internal/app"
	"MiniCatalog/internal/auth"
	"MiniCatalog/internal/config"
	"MiniCatalog/pkg/kit"
)

func main() {
	service := "catalog"

	cfg, err := config.Load(config.DefaultSource())
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	log.Debug("configuration loaded", zap.Stringer("config", &cfg))

	secret := cfg.Auth.Secret
	if secret == "" {
		secret, err = auth.RandomSecret()
		if err != nil {
			log.Fatal("generate token secret", zap.Error(err))
		}
		log.Warn("auth.secret not set, tokens will not survive a restart")
	}

	signin := kit.NewIPRateLimiter(cfg.Auth.SigninPerMinute, time.Minute)
	signup := kit.NewIPRateLimiter(cfg.Auth.SignupPerMinute, time.Minute)
	for _, l := range []*kit.IPRateLimiter{signin, signup} {
		if err := l.TrustProxies(cfg.ProxyRanges()...); err != nil {
			log.Fatal("trusted proxies", zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := app.NewHandler(
		app.Deps{
			Stores:      app.NewStores(),
			Tokens:      auth.NewTokenMaker(secret, cfg.Auth.TTL),
			SigninLimit: signin,
			SignupLimit: signup,
		},
		app.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsToken:   cfg.Metrics.Token,
			AdminToken:     cfg.Admin.Token,
		},
	)

	timeouts := kit.ServerTimeouts{
		ReadHeader: cfg.Server.Timeout.ReadHeader,
		Read:       cfg.Server.Timeout.Read,
		Write:      cfg.Server.Timeout.Write,
		Idle:       cfg.Server.Timeout.Idle,
		Shutdown:   cfg.Shutdown.Timeout,
	}

	if err := kit.RunHTTPServer(cfg.Addr(), h, timeouts, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
