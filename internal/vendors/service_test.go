package vendors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shipfee-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
)

type stubHealer struct {
	calls  []uuid.UUID
	healed int64
	err    error
}

func (s *stubHealer) HealVendorRegions(_ context.Context, vendorID uuid.UUID) (int64, error) {
	s.calls = append(s.calls, vendorID)
	return s.healed, s.err
}

func strPtr(v string) *string { return &v }

func newTestService(t *testing.T, healer *stubHealer) (Service, Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, healer, logger.Nop())
	require.NoError(t, err)
	return svc, repo
}

func seedVendor(t *testing.T, repo Repository, region *string) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		Name:       "Acme",
		BaseRegion: region,
		ShippingPreferences: models.VendorShippingPreferences{
			DefaultBaseRate: decimal.NewNullDecimal(decimal.NewFromInt(25)),
		},
	}
	require.NoError(t, repo.Create(context.Background(), vendor))
	return vendor
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, &stubHealer{}, logger.Nop())
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), nil, logger.Nop())
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), &stubHealer{}, nil)
	require.Error(t, err)
}

func TestGetPreferences(t *testing.T) {
	svc, repo := newTestService(t, &stubHealer{})
	vendor := seedVendor(t, repo, strPtr("Lagos"))

	dto, err := svc.GetPreferences(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.ID, dto.VendorID)
	require.NotNil(t, dto.BaseRegion)
	assert.Equal(t, "Lagos", *dto.BaseRegion)
	assert.True(t, dto.DefaultBaseRate.Valid)
	assert.True(t, decimal.NewFromInt(25).Equal(dto.DefaultBaseRate.Decimal))
}

func TestGetPreferencesNotFound(t *testing.T) {
	svc, _ := newTestService(t, &stubHealer{})
	_, err := svc.GetPreferences(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdatePreferencesHealsOnRegionChange(t *testing.T) {
	healer := &stubHealer{healed: 3}
	svc, repo := newTestService(t, healer)
	vendor := seedVendor(t, repo, strPtr("Lagos"))

	dto, err := svc.UpdatePreferences(context.Background(), vendor.ID, UpdatePreferencesInput{
		BaseRegion:             strPtr("  Abuja "),
		DefaultBaseRate:        decimal.NewNullDecimal(decimal.NewFromInt(30)),
		DefaultOutOfRegionRate: decimal.NewNullDecimal(decimal.NewFromInt(45)),
		RegionalRatesEnabled:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{vendor.ID}, healer.calls)
	assert.Equal(t, int64(3), dto.ZonesHealed)

	stored, err := repo.FindByID(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Abuja", stored.HomeRegion())
	assert.True(t, stored.ShippingPreferences.RegionalRatesEnabled)
	assert.True(t, decimal.NewFromInt(45).Equal(stored.ShippingPreferences.DefaultOutOfRegionRate.Decimal))
}

func TestUpdatePreferencesSameRegionSkipsHeal(t *testing.T) {
	healer := &stubHealer{}
	svc, repo := newTestService(t, healer)
	vendor := seedVendor(t, repo, strPtr("Lagos"))

	_, err := svc.UpdatePreferences(context.Background(), vendor.ID, UpdatePreferencesInput{
		BaseRegion:      strPtr("Lagos"),
		DefaultBaseRate: decimal.NewNullDecimal(decimal.NewFromInt(10)),
	})
	require.NoError(t, err)
	assert.Empty(t, healer.calls)
}

func TestUpdatePreferencesHealFailureIsNotFatal(t *testing.T) {
	healer := &stubHealer{err: errors.New("db down")}
	svc, repo := newTestService(t, healer)
	vendor := seedVendor(t, repo, nil)

	dto, err := svc.UpdatePreferences(context.Background(), vendor.ID, UpdatePreferencesInput{BaseRegion: strPtr("Kano")})
	require.NoError(t, err)
	assert.Len(t, healer.calls, 1)
	assert.Zero(t, dto.ZonesHealed)
}

func TestUpdatePreferencesRejectsNegativeRates(t *testing.T) {
	svc, repo := newTestService(t, &stubHealer{})
	vendor := seedVendor(t, repo, nil)

	_, err := svc.UpdatePreferences(context.Background(), vendor.ID, UpdatePreferencesInput{
		DefaultBaseRate: decimal.NewNullDecimal(decimal.NewFromInt(-1)),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
