// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/watchstats/internal/logging"
)

// DefaultJanitorInterval is used when no cleanup interval is configured.
const DefaultJanitorInterval = 15 * time.Minute

// Task is one unit of periodic housekeeping.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// JanitorService runs housekeeping tasks on a fixed interval.
//
// Tasks run sequentially, once at start and then on every tick. A failing
// task is logged and retried on the next tick; it never stops the service.
type JanitorService struct {
	interval time.Duration
	tasks    []Task
	logger   zerolog.Logger
}

// NewJanitorService creates a janitor. A non-positive interval uses
// DefaultJanitorInterval.
func NewJanitorService(interval time.Duration, tasks ...Task) *JanitorService {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &JanitorService{
		interval: interval,
		tasks:    tasks,
		logger:   logging.WithComponent("janitor"),
	}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	j.logger.Info().Dur("interval", j.interval).Int("tasks", len(j.tasks)).Msg("Janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// sweep runs every task once.
func (j *JanitorService) sweep(ctx context.Context) {
	for _, task := range j.tasks {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		if err := task.Run(ctx); err != nil {
			j.logger.Warn().Err(err).Str("task", task.Name).Msg("Janitor task failed")
			continue
		}
		j.logger.Debug().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("Janitor task completed")
	}
}

// String names the service in supervisor events.
func (j *JanitorService) String() string {
	return "janitor"
}
