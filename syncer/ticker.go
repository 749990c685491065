package syncer

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// TickerConfig controls the periodic cadence at which a Ticker
// re-advertises the local graph and polls peers for updates. Grounded on
// the teacher's BlockProducerConfig in core/block_producer.go.
type TickerConfig struct {
	AdvertiseInterval time.Duration
	SyncInterval      time.Duration
}

// DefaultTickerConfig matches the teacher's 1.2-second block cadence for
// advertisement, with a slightly longer interval for pulling from peers.
func DefaultTickerConfig() *TickerConfig {
	return &TickerConfig{
		AdvertiseInterval: 1200 * time.Millisecond,
		SyncInterval:      3 * time.Second,
	}
}

// Ticker periodically drives a Machine's AdvertiseRoot and SyncFromPeer on
// independent schedules, guarding against overlapping runs of either with
// an atomic in-flight flag in the teacher's isProducing idiom.
type Ticker struct {
	config  *TickerConfig
	machine *Machine

	advertising atomic.Bool
	syncing     atomic.Bool

	stop chan struct{}
}

// NewTicker builds a Ticker over machine using config.
func NewTicker(machine *Machine, config *TickerConfig) *Ticker {
	return &Ticker{config: config, machine: machine, stop: make(chan struct{})}
}

// Start launches the advertise and sync loops in background goroutines.
func (t *Ticker) Start(ctx context.Context) {
	log.Printf("starting syncer ticker: advertise every %v, sync every %v", t.config.AdvertiseInterval, t.config.SyncInterval)

	advertiseTicker := time.NewTicker(t.config.AdvertiseInterval)
	syncTicker := time.NewTicker(t.config.SyncInterval)

	go func() {
		defer advertiseTicker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ctx.Done():
				return
			case <-advertiseTicker.C:
				t.tryAdvertise(ctx)
			}
		}
	}()

	go func() {
		defer syncTicker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ctx.Done():
				return
			case <-syncTicker.C:
				t.trySync(ctx)
			}
		}
	}()
}

func (t *Ticker) tryAdvertise(ctx context.Context) {
	if !t.advertising.CompareAndSwap(false, true) {
		return
	}
	defer t.advertising.Store(false)

	if err := t.machine.AdvertiseRoot(ctx); err != nil {
		log.Printf("syncer: advertise failed: %v", err)
	}
}

func (t *Ticker) trySync(ctx context.Context) {
	if !t.syncing.CompareAndSwap(false, true) {
		return
	}
	defer t.syncing.Store(false)

	if err := t.machine.SyncFromPeer(ctx); err != nil {
		log.Printf("syncer: sync failed: %v", err)
	}
}

// Stop halts both loops.
func (t *Ticker) Stop() {
	close(t.stop)
}
