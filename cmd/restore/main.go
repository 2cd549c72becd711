// cmd/restore/main.go
// Loads a JSON backup written by cmd/backup. Rows already present are left
// untouched, so a restore can be re-run safely.
//
// Usage:
//
//	go run ./cmd/restore -in backups/cc6.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/config"
	bundb "github.com/padraicbc/cc6api/db"
	applog "github.com/padraicbc/cc6api/logger"
)

func main() {
	in := flag.String("in", "", "backup file (required)")
	flag.Parse()

	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *in == "" {
		logger.Fatal("-in is required")
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		logger.Fatal("read backup failed", zap.Error(err))
	}
	var dump bundb.Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		logger.Fatal("decode backup failed", zap.Error(err))
	}

	db := bundb.Setup(cfg)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := bundb.CreateTables(ctx, db); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}
	if err := bundb.NewStore(db).Restore(ctx, &dump); err != nil {
		logger.Fatal("restore failed", zap.Error(err))
	}

	logger.Info("backup restored",
		zap.String("file", *in),
		zap.Time("taken", dump.BackupTimestamp),
		zap.Any("counts", dump.Counts()),
	)
}
