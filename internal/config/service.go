package config

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Service reads and updates configuration values with defaults merged in.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds a Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Value resolves a key: stored JSON when present, the built-in default
// otherwise. A stored value that is not valid JSON is returned as raw text.
func (s *Service) Value(ctx context.Context, key string) (any, error) {
	raw, ok, err := s.repo.GetValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return defaults[key], nil
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw, nil
	}
	return value, nil
}

// ClientConfig is the full configuration snapshot served to the client.
func (s *Service) ClientConfig(ctx context.Context) (map[string]any, error) {
	snapshot := make(map[string]any, 5)
	for wire, key := range map[string]string{
		"itemTypes":         KeyItemTypes,
		"unit":              KeyUnits,
		"lowStockThreshold": KeyLowStockThreshold,
		"expiryWarningDays": KeyExpiryWarningDays,
		"expiry":            KeyExpiry,
	} {
		value, err := s.Value(ctx, key)
		if err != nil {
			return nil, err
		}
		snapshot[wire] = value
	}
	return snapshot, nil
}

// AuthConfig is the snapshot embedded in register/token responses. It omits
// the unit list, which the inbound form fetches separately.
func (s *Service) AuthConfig(ctx context.Context) (map[string]any, error) {
	snapshot, err := s.ClientConfig(ctx)
	if err != nil {
		return nil, err
	}
	delete(snapshot, "unit")
	return snapshot, nil
}

// RegisterItemType appends a newly-seen item type to the taxonomy. Called by
// the inbound handler so the picker learns types as they are used.
func (s *Service) RegisterItemType(ctx context.Context, itemType string) error {
	return s.appendToList(ctx, KeyItemTypes, itemType)
}

// RegisterUnit appends a newly-seen unit label to the unit list.
func (s *Service) RegisterUnit(ctx context.Context, unit string) error {
	return s.appendToList(ctx, KeyUnits, unit)
}

func (s *Service) appendToList(ctx context.Context, key, entry string) error {
	if entry == "" {
		return nil
	}
	value, err := s.Value(ctx, key)
	if err != nil {
		return err
	}
	var list []string
	if items, ok := value.([]any); ok {
		for _, item := range items {
			if str, ok := item.(string); ok {
				list = append(list, str)
			}
		}
	}
	for _, existing := range list {
		if existing == entry {
			return nil
		}
	}
	list = append(list, entry)
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.repo.UpsertValue(ctx, key, string(raw))
}

func (s *Service) intValue(ctx context.Context, key string) (int, error) {
	value, err := s.Value(ctx, key)
	if err != nil {
		return 0, err
	}
	if n, ok := value.(float64); ok {
		return int(n), nil
	}
	return 0, nil
}

// LowStockThreshold implements Provider.
func (s *Service) LowStockThreshold(ctx context.Context) (int, error) {
	return s.intValue(ctx, KeyLowStockThreshold)
}

// DefaultExpiryWarningDays implements Provider.
func (s *Service) DefaultExpiryWarningDays(ctx context.Context) (int, error) {
	return s.intValue(ctx, KeyExpiryWarningDays)
}

var _ Provider = (*Service)(nil)
