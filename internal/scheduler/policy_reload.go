package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/policy"
)

// PolicyReloader keeps the in-memory booking policy in sync with the policy
// file: once at startup, then periodically, and on manual trigger.
type PolicyReloader struct {
	loader        *policy.Loader
	holder        *policy.Holder
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewPolicyReloader creates a new policy reloader.
func NewPolicyReloader(
	policyFile string,
	holder *policy.Holder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *PolicyReloader {
	return &PolicyReloader{
		loader:        policy.NewLoader(policyFile),
		holder:        holder,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the policy immediately, then begins the periodic reload loop.
func (pr *PolicyReloader) Start(ctx context.Context) error {
	if err := pr.Reload(); err != nil {
		return fmt.Errorf("initial policy load failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload policy",
						logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual policy reload triggered")
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload policy",
						logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (pr *PolicyReloader) Stop() {
	close(pr.stopCh)
}

// Reload loads the policy file and swaps it into the holder. On failure the
// previous policy stays active.
func (pr *PolicyReloader) Reload() error {
	p, err := pr.loader.Load()
	if err != nil {
		return err
	}

	pr.holder.Replace(p)
	pr.logger.Info("policy loaded",
		logger.Int("deletable_sources", len(p.DeletableSources)),
		logger.Int("default_horizon_nights", p.DefaultHorizonNights),
		logger.Int("max_horizon_nights", p.MaxHorizonNights))
	return nil
}
