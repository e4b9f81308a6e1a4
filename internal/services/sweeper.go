package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskbuddy/backend/internal/infrastructure/blobstore"
)

// AttachmentSource yields the attachment URLs still referenced by tasks.
type AttachmentSource interface {
	AttachmentRefs(ctx context.Context) ([]string, error)
}

// SweeperConfig controls how often orphaned attachments are collected.
type SweeperConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// Sweeper periodically deletes attachment blobs that no task references
// anymore, once they are older than the retention window. Uploads that
// were never attached to a task fall out the same way.
type Sweeper struct {
	store  *blobstore.Store
	source AttachmentSource
	logger *zap.Logger
	cron   *cron.Cron
	cfg    SweeperConfig
}

func NewSweeper(store *blobstore.Store, source AttachmentSource, logger *zap.Logger, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sw := &Sweeper{
		store:  store,
		source: source,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sw.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := sw.Sweep(ctx); err != nil {
			sw.logger.Error("attachment sweep failed", zap.Error(err))
		}
	})

	return sw
}

// Start launches the cron scheduler.
func (sw *Sweeper) Start() {
	if sw == nil || sw.cron == nil {
		return
	}
	sw.cron.Start()
	sw.logger.Info("attachment sweeper started")
}

// Stop gracefully stops the scheduler.
func (sw *Sweeper) Stop(ctx context.Context) {
	if sw == nil || sw.cron == nil {
		return
	}
	stopCtx := sw.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sw.logger.Info("attachment sweeper stopped")
}

// Sweep removes unreferenced blobs older than the retention window.
func (sw *Sweeper) Sweep(ctx context.Context) error {
	if sw == nil || sw.store == nil {
		return nil
	}

	infos, err := sw.store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return nil
	}

	refs, err := sw.source.AttachmentRefs(ctx)
	if err != nil {
		return err
	}

	// Attachment URLs end in the blob id, so the last path segment is the key.
	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		referenced[path.Base(ref)] = struct{}{}
	}

	cutoff := time.Now().Add(-sw.cfg.Retention)
	var removed int
	for _, info := range infos {
		if _, ok := referenced[info.ID]; ok {
			continue
		}
		if info.CreatedAt.After(cutoff) {
			continue
		}
		if err := sw.store.Delete(info.ID); err != nil {
			sw.logger.Warn("failed to delete orphaned attachment",
				zap.String("blob_id", info.ID),
				zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		sw.logger.Info("orphaned attachments removed", zap.Int("count", removed))
	}
	return nil
}
