package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoticeScannerConfig holds configuration for the reminder scanner
type NoticeScannerConfig struct {
	// ScanInterval is how often reminders are checked (default: 15m)
	ScanInterval time.Duration

	// CleanupInterval is how often the notice ledger is pruned (default: 24h)
	CleanupInterval time.Duration

	// Retention is how long published notices are remembered (default: 90 days)
	Retention time.Duration
}

func DefaultNoticeScannerConfig() NoticeScannerConfig {
	return NoticeScannerConfig{
		ScanInterval:    15 * time.Minute,
		CleanupInterval: 24 * time.Hour,
		Retention:       90 * 24 * time.Hour,
	}
}

// Scanner is the work a NoticeScanner repeats on each tick.
type Scanner interface {
	ScanAndPublish(ctx context.Context, now time.Time) (ScanResult, error)
	Purge(ctx context.Context, now time.Time, retention time.Duration) (int64, error)
}

// NoticeScanner runs a Scanner periodically until stopped.
type NoticeScanner struct {
	scanner Scanner
	config  NoticeScannerConfig
	now     func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewNoticeScanner(scanner Scanner, config NoticeScannerConfig) *NoticeScanner {
	return &NoticeScanner{scanner: scanner, config: config, now: time.Now}
}

// Start begins the scan loop. Returns an error if already running.
func (p *NoticeScanner) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("notice scanner is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Notice scanner started",
		"component", "scanner",
		"scan_interval", p.config.ScanInterval,
		"retention", p.config.Retention)
	return nil
}

// Stop signals the loop and waits for the current scan to finish.
func (p *NoticeScanner) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Notice scanner stopped gracefully", "component", "scanner")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Notice scanner stop timed out", "component", "scanner")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *NoticeScanner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *NoticeScanner) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	scanTicker := time.NewTicker(p.config.ScanInterval)
	defer scanTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	p.scan(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-scanTicker.C:
			p.scan(ctx)
		case <-cleanupTicker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *NoticeScanner) scan(ctx context.Context) {
	if _, err := p.scanner.ScanAndPublish(ctx, p.now()); err != nil {
		slog.ErrorContext(ctx, "Reminder scan failed", "component", "scanner", "error", err)
	}
}

func (p *NoticeScanner) cleanup(ctx context.Context) {
	n, err := p.scanner.Purge(ctx, p.now(), p.config.Retention)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to purge notice ledger", "component", "scanner", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Purged old notices", "component", "scanner", "count", n)
	}
}
