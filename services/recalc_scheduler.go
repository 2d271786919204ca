package services

import (
	"context"
	"time"

	"schoolleave_go/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RefundScheduler runs the bulk refund correction on a configurable cadence.
// The cron only fires the job; whether a run actually executes is gated by
// the refund_auto_recalc setting, read at fire time so toggling it needs no
// restart.
type RefundScheduler struct {
	cron   *cron.Cron
	cfg    *ConfigProvider
	recalc *RefundRecalculator
}

func NewRefundScheduler() *RefundScheduler {
	return &RefundScheduler{
		cron:   cron.New(),
		cfg:    NewConfigProvider(),
		recalc: NewRefundRecalculator(),
	}
}

// Start registers the recalculation job and starts the cron loop.
func (rs *RefundScheduler) Start() error {
	spec := config.AppConfig.RecalcCronSpec
	if _, err := rs.cron.AddFunc(spec, rs.run); err != nil {
		return err
	}
	rs.cron.Start()
	logrus.WithField("cron", spec).Info("refund recalculation scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (rs *RefundScheduler) Stop() {
	ctx := rs.cron.Stop()
	<-ctx.Done()
}

func (rs *RefundScheduler) run() {
	if !rs.cfg.GetBool(SettingAutoRecalc, false) {
		logrus.Debug("scheduled refund recalculation disabled by settings, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	updated, err := rs.recalc.RecalculateAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("scheduled refund recalculation failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"updated":  updated,
		"duration": time.Since(start).String(),
	}).Info("scheduled refund recalculation finished")
}
