package firms

import (
	"context"
	"testing"

	"multinvest-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}
}

func TestCreateAndList(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Create(ctx, CreateFirmInput{Name: "  Summit Homes ", Description: "High-rise"})
	require.NoError(t, err)
	_, err = s.Create(ctx, CreateFirmInput{Name: "Acme Estates"})
	require.NoError(t, err)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acme Estates", list[0].Name)
	assert.Equal(t, "Summit Homes", list[1].Name)

	_, err = s.Create(ctx, CreateFirmInput{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestGet(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	f, err := s.Create(ctx, CreateFirmInput{Name: "BlueSky Realty"})
	require.NoError(t, err)

	got, err := s.Get(ctx, f.FirmID)
	require.NoError(t, err)
	assert.Equal(t, "BlueSky Realty", got.Name)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrFirmNotFound)
}
