package services_test

import (
	"context"
	"testing"

	"wardrobe/internal/repositories"
	"wardrobe/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClothingService_AddStock(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewInMemoryStore()
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, services.EventStockAdded, mock.Anything).Return(nil)
	svc := services.NewClothingService(store, nil, nil, publisher)

	// A new clothing with a new size.
	res, err := svc.AddStock(ctx, "shirt", "m", 10)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Shirt", res.Name)
	assert.Equal(t, "M", res.Size)
	assert.Equal(t, 10, res.Quantity)

	// Restocking is additive.
	res, err = svc.AddStock(ctx, "Shirt", "M", 5)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 15, res.Quantity)
	assert.Equal(t, "Added 5 units Shirt size M", res.Message())

	// Another size does not touch the first one.
	_, err = svc.AddStock(ctx, "Shirt", "L", 2)
	require.NoError(t, err)

	sizes, err := svc.InStockSizes(ctx, "Shirt")
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.Equal(t, "M", sizes[0].Size)
	assert.Equal(t, 15, sizes[0].Quantity)
	assert.Equal(t, "L", sizes[1].Size)
	assert.Equal(t, 2, sizes[1].Quantity)

	publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestClothingService_AddStockValidation(t *testing.T) {
	svc := services.NewClothingService(repositories.NewInMemoryStore(), nil, nil, nil)

	_, err := svc.AddStock(context.Background(), "Shirt", "XXXXL", 1)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.AddStock(context.Background(), "Shirt", "M", 0)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestClothingService_AddStockRetriesTransientFailures(t *testing.T) {
	store := &flakyStore{Store: repositories.NewInMemoryStore(), failures: 2}
	svc := services.NewClothingService(store, nil, services.NewStoreRetry(3), nil)

	res, err := svc.AddStock(context.Background(), "Shirt", "M", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Quantity)
	assert.Equal(t, 3, store.calls)
}

func TestClothingService_AddStockGivesUpAsStoreError(t *testing.T) {
	store := &flakyStore{Store: repositories.NewInMemoryStore(), failures: 5}
	svc := services.NewClothingService(store, nil, services.NewStoreRetry(2), nil)

	_, err := svc.AddStock(context.Background(), "Shirt", "M", 1)
	assert.ErrorIs(t, err, services.ErrStore)
	assert.Contains(t, err.Error(), "Database error")
	assert.Equal(t, 2, store.calls)
}

func TestClothingService_InStockSizes(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewInMemoryStore()
	svc := services.NewClothingService(store, nil, nil, nil)

	_, err := svc.InStockSizes(ctx, "Boots")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.EqualError(t, err, "Clothing with name Boots not found")

	clothing, err := store.Clothing().Ensure(ctx, "Hat")
	require.NoError(t, err)
	_, err = store.Clothing().AddSize(ctx, clothing.ID, "S", 0)
	require.NoError(t, err)

	_, err = svc.InStockSizes(ctx, "Hat")
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.EqualError(t, err, "There are no sizes for this clothing")
}

func TestClothingService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := services.NewClothingService(repositories.NewInMemoryStore(), nil, nil, nil)

	_, err := svc.AddStock(ctx, "Shirt", "M", 1)
	require.NoError(t, err)
	_, err = svc.AddStock(ctx, "Jeans", "L", 1)
	require.NoError(t, err)

	all, err := svc.ListClothing(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Shirt", all[0].Name)
	assert.Equal(t, "Jeans", all[1].Name)

	deleted, err := svc.DeleteClothing(ctx, "Shirt")
	require.NoError(t, err)
	assert.Equal(t, "Shirt", deleted.Name)

	_, err = svc.InStockSizes(ctx, "Shirt")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.DeleteClothing(ctx, "Shirt")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.EqualError(t, err, "Clothing with name Shirt not found")
}
