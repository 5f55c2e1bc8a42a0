package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"scm-agent/chatbot"
	"scm-agent/config"
	"scm-agent/scmerrors"
	"scm-agent/stream"

	"go.uber.org/zap"
)

// Snapshot is one immutable view of the consumed topics. Readers always see a
// complete dataset and lexicon pair; refreshes swap the whole snapshot.
type Snapshot struct {
	Dataset     *chatbot.Dataset
	Lexicon     chatbot.Lexicon
	RefreshedAt time.Time
}

// DataService owns the current data snapshot and refreshes it from the
// stream bridge.
type DataService struct {
	cfg      *config.Config
	consumer *stream.Client
	logger   *zap.Logger

	current   atomic.Pointer[Snapshot]
	refreshMu sync.Mutex
}

func NewDataService(cfg *config.Config, consumer *stream.Client, logger *zap.Logger) *DataService {
	return &DataService{
		cfg:      cfg,
		consumer: consumer,
		logger:   logger,
	}
}

// Refresh consumes both topics concurrently, parses the records, and swaps
// the snapshot. A topic that fails to fetch contributes an empty slice so the
// other topic's data still lands. Concurrent callers are serialized; readers
// are never blocked.
func (d *DataService) Refresh(ctx context.Context) (*Snapshot, error) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	var (
		wg           sync.WaitGroup
		rawInventory []map[string]any
		rawRequests  []map[string]any
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		rawInventory = d.consumer.ConsumeOrEmpty(ctx, d.cfg.InventoryTopic)
	}()
	go func() {
		defer wg.Done()
		rawRequests = d.consumer.ConsumeOrEmpty(ctx, d.cfg.RequestsTopic)
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	ds := &chatbot.Dataset{
		Inventory: chatbot.ParseInventoryRecords(rawInventory),
		Requests:  chatbot.ParseRequestRecords(rawRequests),
	}
	snapshot := &Snapshot{
		Dataset:     ds,
		Lexicon:     chatbot.BuildLexicon(ds),
		RefreshedAt: time.Now(),
	}
	d.current.Store(snapshot)

	d.logger.Info("data snapshot refreshed",
		zap.Int("inventory_records", len(ds.Inventory)),
		zap.Int("request_records", len(ds.Requests)),
		zap.Int("projects", len(snapshot.Lexicon.Projects)),
		zap.Int("items", len(snapshot.Lexicon.Items)))

	return snapshot, nil
}

// Snapshot returns the current view, fetching one on first use.
func (d *DataService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := d.current.Load(); snap != nil {
		return snap, nil
	}
	snap, err := d.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.Dataset.Inventory) == 0 && len(snap.Dataset.Requests) == 0 {
		return snap, scmerrors.ErrNoData
	}
	return snap, nil
}
