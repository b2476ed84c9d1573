// Package settings resolves the engine enable flag from configuration and
// the runtime override stored in engine_settings.
package settings

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"leadengine_backend/internal/leads/repository"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/config"
	"leadengine_backend/platform/logger"
)

// Resolver decides whether scoring and forecasting may run.
type Resolver struct {
	cfg   config.EngineConfig
	store repository.SettingsStore
	log   *logger.Logger
}

func NewResolver(cfg config.EngineConfig, store repository.SettingsStore, log *logger.Logger) *Resolver {
	return &Resolver{cfg: cfg, store: store, log: log}
}

// ScoringEnabled returns the runtime override when one is stored, otherwise
// the configured default. A store failure or an unparsable value falls back
// to the configured default.
func (r *Resolver) ScoringEnabled(ctx context.Context) bool {
	fallback := r.cfg.GetScoringEnabled()
	if r.store == nil {
		return fallback
	}

	value, err := r.store.GetEngineSetting(ctx, repository.SettingLeadScoringEnabled)
	if errors.Is(err, repository.ErrNotFound) {
		return fallback
	}
	if err != nil {
		r.log.WithContext(ctx).DatabaseError("get_engine_setting", err)
		return fallback
	}

	enabled, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.log.WithContext(ctx).Warn("ignoring invalid engine setting", "key", repository.SettingLeadScoringEnabled, "value", value)
		return fallback
	}
	return enabled
}

// SetScoringEnabled stores the runtime override.
func (r *Resolver) SetScoringEnabled(ctx context.Context, enabled bool) error {
	if r.store == nil {
		return apperr.Internal("settings store not configured")
	}
	if err := r.store.SetEngineSetting(ctx, repository.SettingLeadScoringEnabled, strconv.FormatBool(enabled)); err != nil {
		return apperr.Unavailable("failed to store engine setting", err).WithOp("settings.SetScoringEnabled")
	}
	return nil
}
