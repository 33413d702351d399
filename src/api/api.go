package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trustchain-dao/trustchain-engine/src/api/config"
	"github.com/trustchain-dao/trustchain-engine/src/api/data"
	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"github.com/trustchain-dao/trustchain-engine/src/api/webserver"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
)

func migrate(db *gorm.DB, log *zap.Logger) {
	if err := db.AutoMigrate(engine.Models()...); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
}

func seedOperators(db *gorm.DB, addrs []string) {
	for _, addr := range addrs {
		op := types.Operator{Address: strings.ToLower(strings.TrimSpace(addr))}
		_ = db.FirstOrCreate(&op, op).Error
	}
}

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db, log)
	seedOperators(db, cfg.OperatorAddrs)

	rdb := data.MustRedis(cfg.RedisURL)

	sink := data.NewStreamSink(rdb, log)
	ledger := data.NewLedger(db)
	eng := engine.New(db, engine.DefaultConfig(), sink, ledger, log)

	router := webserver.New(cfg, db, rdb, eng, log)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	serve := func() error { return httpSrv.ListenAndServe() }
	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		reloader, err := webserver.NewTLSReloader(cfg.TLSCert, cfg.TLSKey, log)
		if err != nil {
			log.Fatal("tls", zap.Error(err))
		}
		httpSrv.TLSConfig = &tls.Config{GetCertificate: reloader.GetCertificate}
		serve = func() error { return httpSrv.ListenAndServeTLS("", "") }
	}

	go func() {
		if err := serve(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http", zap.Error(err))
		}
	}()
	log.Info("trustchain engine listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}
