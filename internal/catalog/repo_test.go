package catalog

import (
	"context"
	"testing"

	"github.com/alterd/checkout/internal/postgres/pgtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_UpsertGetList(t *testing.T) {
	repo := &Repo{DB: pgtest.Start(t)}
	ctx := context.Background()

	orig := decimal.RequireFromString("1299.00")
	tee := Product{
		ID: "p-tee", SKU: "TEE-01", Title: "Oversized Tee",
		Price:  Price{Current: decimal.RequireFromString("899.50"), Original: &orig, Currency: "INR"},
		Images: []string{"a.jpg", "b.jpg"},
		Stock:  4,
	}
	hat := Product{
		ID: "p-cap", SKU: "CAP-01", Title: "Cap",
		Price: Price{Current: decimal.RequireFromString("299"), Currency: "INR"},
	}
	require.NoError(t, repo.Upsert(ctx, tee))
	require.NoError(t, repo.Upsert(ctx, hat))

	got, err := repo.Get(ctx, "p-tee")
	require.NoError(t, err)
	assert.True(t, got.Price.Current.Equal(tee.Price.Current))
	require.NotNil(t, got.Price.Original)
	assert.True(t, got.Price.Original.Equal(orig))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.Images)
	assert.Equal(t, 4, got.Stock)

	tee.Stock = 0
	require.NoError(t, repo.Upsert(ctx, tee))
	got, err = repo.Get(ctx, "p-tee")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CAP-01", list[0].SKU)
	assert.Nil(t, list[0].Price.Original)
	assert.Empty(t, list[0].Images)

	_, err = repo.Get(ctx, "p-missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
