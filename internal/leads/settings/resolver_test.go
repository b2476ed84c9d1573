package settings

import (
	"context"
	"errors"
	"testing"

	"leadengine_backend/internal/leads/repository"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/logger"
)

type staticConfig struct{ enabled bool }

func (c staticConfig) GetScoringEnabled() bool       { return c.enabled }
func (c staticConfig) GetIndustryPriorsFile() string { return "" }

type memStore struct {
	values map[string]string
	err    error
}

func (m *memStore) GetEngineSetting(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (m *memStore) SetEngineSetting(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestScoringEnabled(t *testing.T) {
	cases := []struct {
		name     string
		config   bool
		stored   map[string]string
		storeErr error
		want     bool
	}{
		{"config default on", true, map[string]string{}, nil, true},
		{"config default off", false, map[string]string{}, nil, false},
		{"override disables", true, map[string]string{repository.SettingLeadScoringEnabled: "false"}, nil, false},
		{"override enables", false, map[string]string{repository.SettingLeadScoringEnabled: " TRUE "}, nil, true},
		{"garbage falls back", false, map[string]string{repository.SettingLeadScoringEnabled: "maybe"}, nil, false},
		{"store error falls back", true, nil, errors.New("timeout"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(staticConfig{tc.config}, &memStore{values: tc.stored, err: tc.storeErr}, logger.Discard())
			if got := r.ScoringEnabled(context.Background()); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSetScoringEnabledRoundTrip(t *testing.T) {
	store := &memStore{values: map[string]string{}}
	r := NewResolver(staticConfig{true}, store, logger.Discard())

	if err := r.SetScoringEnabled(context.Background(), false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.ScoringEnabled(context.Background()) {
		t.Fatalf("expected override to disable scoring")
	}

	store.err = errors.New("read only")
	if err := r.SetScoringEnabled(context.Background(), true); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
