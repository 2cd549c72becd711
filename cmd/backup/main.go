// cmd/backup/main.go
// Writes every table to a JSON backup file that cmd/restore can load.
//
// Usage:
//
//	go run ./cmd/backup -out backups/cc6.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/cc6api/config"
	bundb "github.com/padraicbc/cc6api/db"
	applog "github.com/padraicbc/cc6api/logger"
)

func main() {
	out := flag.String("out", "", "output file (default backups/backup_<timestamp>.json)")
	flag.Parse()

	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db := bundb.Setup(cfg)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dump, err := bundb.NewStore(db).All(ctx)
	if err != nil {
		logger.Fatal("read tables failed", zap.Error(err))
	}

	path := *out
	if path == "" {
		path = filepath.Join("backups", fmt.Sprintf("backup_%s.json", dump.BackupTimestamp.Format("20060102_150405")))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Fatal("create backup dir failed", zap.Error(err))
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		logger.Fatal("encode backup failed", zap.Error(err))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		logger.Fatal("write backup failed", zap.Error(err))
	}

	fields := []zap.Field{zap.String("file", path)}
	for table, n := range dump.Counts() {
		fields = append(fields, zap.Int(table, n))
	}
	logger.Info("backup written", fields...)
}
