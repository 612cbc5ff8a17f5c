// Package schedule persists one prayer schedule per day and position, so the
// app survives offline restarts and never refetches a day it already has.
package schedule

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tartampluch/go-salat/internal/config"
	"github.com/tartampluch/go-salat/internal/engine"
	"github.com/tartampluch/go-salat/internal/provider"
)

// Cache wraps a TimingsProvider with a per-day file cache.
type Cache struct {
	Dir      string
	Provider provider.TimingsProvider
	Clock    engine.Clock

	logger *slog.Logger
}

func NewCache(dir string, p provider.TimingsProvider, clock engine.Clock, logger *slog.Logger) *Cache {
	return &Cache{
		Dir:      dir,
		Provider: p,
		Clock:    clock,
		logger:   logger.With(config.LogKeyComponent, config.CompCache),
	}
}

// Today returns the schedule for the current local day, serving from disk
// when a matching entry exists and hitting the provider otherwise. A provider
// failure wraps provider.ErrScheduleUnavailable; a cache write failure is
// logged and ignored.
func (c *Cache) Today(ctx context.Context, lat, lon float64, method, school int) (*engine.Schedule, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: %s", provider.ErrScheduleUnavailable, config.ErrLatRange)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: %s", provider.ErrScheduleUnavailable, config.ErrLonRange)
	}

	now := c.Clock.Now()
	path := c.entryPath(now.Format(config.DateKeyLayout), lat, lon, method, school)

	if s, err := c.load(path); err == nil && s.IsFor(now) {
		c.logger.Debug(config.MsgCacheHit, config.LogKeyDate, s.Date, config.LogKeyFile, path)
		return s, nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn(config.MsgCacheReadFailed, config.LogKeyFile, path, config.LogKeyError, err.Error())
	}

	raw, err := c.Provider.Timings(ctx, now, lat, lon, method, school)
	if err != nil {
		return nil, err
	}

	s, err := engine.NewSchedule(now, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrScheduleUnavailable, err)
	}

	c.logger.Info(config.MsgCacheMiss,
		config.LogKeyDate, s.Date,
		config.LogKeyLatitude, lat,
		config.LogKeyLongitude, lon,
		config.LogKeyMethod, method)

	if err := c.store(path, s); err != nil {
		c.logger.Warn(config.MsgCacheSaveFailed, config.LogKeyFile, path, config.LogKeyError, err.Error())
	}
	return s, nil
}

// entryPath derives a filename from every input that changes the timings, so
// a location or method switch never serves a stale entry.
func (c *Cache) entryPath(date string, lat, lon float64, method, school int) string {
	key := fmt.Sprintf("%s|%.4f|%.4f|%d|%d", date, lat, lon, method, school)
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.Dir, "timings_"+hex.EncodeToString(sum[:8])+".json")
}

func (c *Cache) load(path string) (*engine.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s engine.Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Cache) store(path string, s *engine.Schedule) error {
	if err := os.MkdirAll(c.Dir, config.DirPermUserRWX); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, config.FilePermUserRW)
}
