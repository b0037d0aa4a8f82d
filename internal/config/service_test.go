package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	values map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{values: make(map[string]string)}
}

func (m *memRepo) GetValue(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memRepo) UpsertValue(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func TestValueFallsBackToDefaults(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()

	value, err := svc.Value(ctx, KeyLowStockThreshold)
	require.NoError(t, err)
	require.Equal(t, float64(10), value)

	value, err = svc.Value(ctx, KeyItemTypes)
	require.NoError(t, err)
	require.Equal(t, []any{"大米", "油", "肉", "鸡蛋"}, value)

	// No default for the unit list.
	value, err = svc.Value(ctx, KeyUnits)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestValueParsesStoredJSON(t *testing.T) {
	repo := newMemRepo()
	repo.values[KeyLowStockThreshold] = "25"
	repo.values[KeyItemTypes] = `["面粉"]`
	svc := NewService(repo, nil)
	ctx := context.Background()

	value, err := svc.Value(ctx, KeyLowStockThreshold)
	require.NoError(t, err)
	require.Equal(t, float64(25), value)

	value, err = svc.Value(ctx, KeyItemTypes)
	require.NoError(t, err)
	require.Equal(t, []any{"面粉"}, value)
}

func TestValueKeepsRawTextOnBadJSON(t *testing.T) {
	repo := newMemRepo()
	repo.values["MOTD"] = "hello there"
	svc := NewService(repo, nil)

	value, err := svc.Value(context.Background(), "MOTD")
	require.NoError(t, err)
	require.Equal(t, "hello there", value)
}

func TestRegisterItemTypeAppendsOnce(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.RegisterItemType(ctx, "面粉"))
	require.JSONEq(t, `["大米","油","肉","鸡蛋","面粉"]`, repo.values[KeyItemTypes])

	// Re-registering the same type is a no-op.
	require.NoError(t, svc.RegisterItemType(ctx, "面粉"))
	require.JSONEq(t, `["大米","油","肉","鸡蛋","面粉"]`, repo.values[KeyItemTypes])

	require.NoError(t, svc.RegisterUnit(ctx, "kg"))
	require.JSONEq(t, `["kg"]`, repo.values[KeyUnits])

	require.NoError(t, svc.RegisterUnit(ctx, ""))
	require.JSONEq(t, `["kg"]`, repo.values[KeyUnits])
}

func TestProviderValues(t *testing.T) {
	repo := newMemRepo()
	repo.values[KeyExpiryWarningDays] = "14"
	svc := NewService(repo, nil)
	ctx := context.Background()

	threshold, err := svc.LowStockThreshold(ctx)
	require.NoError(t, err)
	require.Equal(t, 10, threshold)

	days, err := svc.DefaultExpiryWarningDays(ctx)
	require.NoError(t, err)
	require.Equal(t, 14, days)
}

func TestAuthConfigOmitsUnits(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	snapshot, err := svc.AuthConfig(context.Background())
	require.NoError(t, err)
	require.NotContains(t, snapshot, "unit")
	require.Contains(t, snapshot, "itemTypes")
	require.Contains(t, snapshot, "lowStockThreshold")
	require.Contains(t, snapshot, "expiryWarningDays")
	require.Contains(t, snapshot, "expiry")
}
