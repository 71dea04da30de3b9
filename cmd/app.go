package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"rewrite-manager/core/config"
	"rewrite-manager/core/database"
	"rewrite-manager/core/logger"
	"rewrite-manager/core/notify"
	"rewrite-manager/core/reconcile"
	"rewrite-manager/core/redis"
	"rewrite-manager/core/storage"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// configDir is where .env is looked up.
var configDir string

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "Directory containing the .env file")
}

// app holds the connections of one command invocation.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	runID     string
	publisher notify.Publisher
	rdb       *goredis.Client
	locker    reconcile.Locker
	storage   storage.Client
	reportDir string
	stdin     io.Reader
}

// newApp loads configuration and opens every connection a job needs.
// Optional backends (redis, storage, pub/sub) are only touched when enabled.
func newApp(ctx context.Context, job string) (*app, error) {
	// Load configuration
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger, every line carries the job and run id
	base, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	runID := uuid.NewString()
	l := logger.WithRun(base, job, runID)

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &app{cfg: cfg, logger: l, db: db, runID: runID, reportDir: ".", stdin: os.Stdin}

	// Notifications fall back to log lines when pub/sub is disabled
	a.publisher, err = notify.New(ctx, cfg.Notify, l)
	if err != nil {
		a.Close()
		return nil, err
	}

	// Redis is required only when scope locking is on
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, cfg.Redis)
		switch {
		case err != nil && cfg.Redis.LockEnabled:
			a.Close()
			return nil, err
		case err != nil:
			l.Warn("Redis unavailable, cache flush disabled", zap.Error(err))
		default:
			a.rdb = rdb
			if cfg.Redis.LockEnabled {
				a.locker = redis.NewScopeLocker(rdb, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second, l)
			}
		}
	}

	// Connect to storage for report archiving
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			l.Warn("Report storage unavailable, reports stay local", zap.Error(err))
		} else {
			a.storage = client
		}
	}

	return a, nil
}

// Close releases every connection. It is safe on a partially built app.
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Failed to close publisher", zap.Error(err))
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.logger.Sync()
}

// exportReport writes the JSON report next to the working directory and, when
// storage is configured, archives it in the bucket. Failures are only logged.
func (a *app) exportReport(ctx context.Context, result *reconcile.BatchResult) {
	data, err := reconcile.MarshalReport(result)
	if err != nil {
		a.logger.Warn("Failed to encode report", zap.Error(err))
		return
	}

	name := fmt.Sprintf("regen_%s_%d.json", result.Job, result.StartedAt.Unix())
	local := filepath.Join(a.reportDir, name)
	if err := os.WriteFile(local, data, 0o644); err != nil {
		a.logger.Warn("Failed to write report", zap.String("path", local), zap.Error(err))
	} else {
		a.logger.Info("Report written", zap.String("path", local))
	}

	if a.storage == nil {
		return
	}
	key, err := storage.PutReport(ctx, a.storage, a.cfg.Storage.Bucket, a.cfg.Storage.ReportPrefix, name, data)
	if err != nil {
		a.logger.Warn("Failed to archive report", zap.Error(err))
		return
	}
	a.logger.Info("Report archived", zap.String("bucket", a.cfg.Storage.Bucket), zap.String("key", key))
}

// requestReindex publishes one reindex request per store of the run.
func (a *app) requestReindex(ctx context.Context, entityType reconcile.EntityType, result *reconcile.BatchResult) {
	for storeID, ids := range result.StoreEntities {
		ev := notify.Event{
			Type:       notify.EventReindexRequested,
			RunID:      a.runID,
			EntityType: string(entityType),
			StoreID:    storeID,
			EntityIDs:  ids,
		}
		if err := a.publisher.Publish(ctx, ev); err != nil {
			a.logger.Warn("Failed to request reindex", zap.Int64("store_id", storeID), zap.Error(err))
		}
	}
}

// flushCache removes cached rewrites from redis.
func (a *app) flushCache(ctx context.Context) {
	if a.rdb == nil {
		a.logger.Warn("Redis is not enabled, skipping cache flush")
		return
	}
	removed, err := redis.Flush(ctx, a.rdb, a.cfg.Redis.FlushPattern)
	if err != nil {
		a.logger.Warn("Failed to flush cache", zap.Error(err))
		return
	}
	a.logger.Info("Flushed cache", zap.String("pattern", a.cfg.Redis.FlushPattern), zap.Int64("keys", removed))
}
