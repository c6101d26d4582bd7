package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"catalogadmin/internal/alerts"
	"catalogadmin/internal/api"
	"catalogadmin/internal/changes"
	"catalogadmin/internal/config"
	"catalogadmin/internal/db"
	"catalogadmin/internal/gateway"
	"catalogadmin/internal/perms"
	"catalogadmin/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sess, closeStore, err := openSessionStore(cfg)
	if err != nil {
		log.Fatalf("open session store: %v", err)
	}
	defer closeStore()

	al := alerts.NewStore()
	gw := gateway.New(cfg.CatalogAPIBase, cfg.CatalogHTTPTimeout(), sess, al)
	chg := changes.NewService(gw, al)
	pm := perms.NewService(gw, al)

	r := api.NewRouter(cfg, gw, chg, pm)

	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	log.Printf("listening on %s (session backend %s, catalog %s)", cfg.ListenAddr, cfg.SessionBackend, cfg.CatalogAPIBase)
	if err := hsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}

func openSessionStore(cfg config.Config) (*session.Store, func(), error) {
	noop := func() {}
	switch cfg.SessionBackend {
	case "file":
		return session.NewFileStore(cfg.SessionFilePath, cfg.SessionEncryptKey), noop, nil
	case "sqlite":
		sqdb, err := db.OpenSQLite(cfg.SessionDBPath, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
		if err != nil {
			return nil, nil, err
		}
		st, err := session.NewSQLStore(sqdb, "sqlite", cfg.SessionEncryptKey)
		if err != nil {
			sqdb.Close()
			return nil, nil, err
		}
		return st, func() { sqdb.Close() }, nil
	case "sql":
		st, err := session.OpenSQLStore(cfg.SessionDBDriver, cfg.SessionDBDSN, cfg.SessionEncryptKey)
		if err != nil {
			return nil, nil, err
		}
		return st, noop, nil
	case "redis":
		st, err := session.NewRedisStore(cfg.SessionRedisURL, cfg.SessionEncryptKey)
		if err != nil {
			return nil, nil, err
		}
		return st, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}
