// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MKhiriev/tally-sync/internal/logger"
)

// DayRollover resets the daily flags at local midnight.
type DayRollover struct {
	cron    *cron.Cron
	entryID cron.EntryID
	spec    string
	logger  *logger.Logger
}

// NewDayRollover schedules reset at midnight of loc. The job is idle until
// Start is called.
func NewDayRollover(loc *time.Location, reset func(ctx context.Context) error, log *logger.Logger) (*DayRollover, error) {
	if loc == nil {
		loc = time.Local
	}

	r := &DayRollover{
		spec:   rolloverSpec(loc),
		logger: log,
	}
	r.cron = cron.New(cron.WithLogger(cronLogger{log}), cron.WithChain(cron.Recover(cronLogger{log})))

	id, err := r.cron.AddFunc(r.spec, func() {
		if err := reset(context.Background()); err != nil {
			r.logger.Err(err).Str("func", "*DayRollover.run").Msg("day rollover failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule day rollover %q: %w", r.spec, err)
	}
	r.entryID = id

	return r, nil
}

func rolloverSpec(loc *time.Location) string {
	return fmt.Sprintf("CRON_TZ=%s 0 0 * * *", loc.String())
}

// Spec returns the cron expression in use.
func (r *DayRollover) Spec() string {
	return r.spec
}

// Next returns the next rollover after t.
func (r *DayRollover) Next(t time.Time) time.Time {
	return r.cron.Entry(r.entryID).Schedule.Next(t)
}

// Start runs the scheduler in its own goroutine.
func (r *DayRollover) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for a running reset to finish or ctx
// to end.
func (r *DayRollover) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// cronLogger routes cron's own logging into zerolog.
type cronLogger struct {
	l *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Err(err).Fields(keysAndValues).Msg(msg)
}
