package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/takes-and-tastes/internal/domain"
	"github.com/fjod/takes-and-tastes/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var savour = domain.Restaurant{ID: "r-savour", Name: "Savour Foods", DeliveryFee: 50, DeliveryTime: "25-35 min"}

func TestRestaurantService_Get_FillsCache(t *testing.T) {
	repo := newMockRestaurantRepo(savour)
	menu := &mockMenuRepo{items: []domain.MenuItem{{ID: "m1", RestaurantID: savour.ID, Name: "Pulao Kebab", Price: 100}}}
	c := newMockCache()
	svc := NewRestaurantService(repo, menu, c)

	detail, err := svc.Get(context.Background(), savour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Savour Foods", detail.Name)
	require.Len(t, detail.MenuItems, 1)

	require.Eventually(t, func() bool { return c.has(savour.ID) }, time.Second, 10*time.Millisecond)

	_, err = svc.Get(context.Background(), savour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets(), "second read is served from cache")
}

func TestRestaurantService_Get_CacheErrorFallsBackToRepo(t *testing.T) {
	repo := newMockRestaurantRepo(savour)
	c := newMockCache()
	c.getErr = errors.New("redis down")
	svc := NewRestaurantService(repo, &mockMenuRepo{}, c)

	detail, err := svc.Get(context.Background(), savour.ID)
	require.NoError(t, err)
	assert.Equal(t, savour.ID, detail.ID)
}

func TestRestaurantService_Get_NotFound(t *testing.T) {
	svc := NewRestaurantService(newMockRestaurantRepo(), &mockMenuRepo{}, newMockCache())

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrRestaurantNotFound)
}

func TestRestaurantService_Get_Concurrent(t *testing.T) {
	repo := newMockRestaurantRepo(savour)
	svc := NewRestaurantService(repo, &mockMenuRepo{}, newMockCache())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := svc.Get(context.Background(), savour.ID)
			assert.NoError(t, err)
			assert.Equal(t, savour.ID, d.ID)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, repo.gets(), 20)
}

func TestRestaurantService_Categories(t *testing.T) {
	svc := NewRestaurantService(newMockRestaurantRepo(), &mockMenuRepo{}, newMockCache())

	cats := svc.Categories()
	require.Len(t, cats, 10)
	assert.Equal(t, "Fast Food", cats[0].Name)
	require.NotNil(t, cats[0].Icon)

	cats[0].Name = "changed"
	assert.Equal(t, "Fast Food", svc.Categories()[0].Name)
}

func TestRestaurantService_Create_Defaults(t *testing.T) {
	repo := newMockRestaurantRepo()
	svc := NewRestaurantService(repo, &mockMenuRepo{}, newMockCache())

	r := &domain.Restaurant{Name: "Cheezious", Description: "Pizza"}
	require.NoError(t, svc.Create(context.Background(), r))
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Fast Food", r.Category)
	assert.Equal(t, 50.0, r.DeliveryFee)
	assert.Equal(t, "30-40 min", r.DeliveryTime)
	assert.Equal(t, 4.0, r.Rating)

	err := svc.Create(context.Background(), &domain.Restaurant{Name: "X", Description: "Y", Category: "Sushi"})
	assert.ErrorIs(t, err, ErrInvalidRestaurant)
	err = svc.Create(context.Background(), &domain.Restaurant{Name: "X"})
	assert.ErrorIs(t, err, ErrInvalidRestaurant)
}

func TestRestaurantService_CreateMenuItem_InvalidatesCache(t *testing.T) {
	c := newMockCache()
	c.entries[savour.ID] = &domain.RestaurantDetail{Restaurant: savour}
	menu := &mockMenuRepo{}
	svc := NewRestaurantService(newMockRestaurantRepo(savour), menu, c)

	item := &domain.MenuItem{Name: "Kheer", Description: "Rice pudding", Price: 80, Category: "Desserts", IsAvailable: true}
	require.NoError(t, svc.CreateMenuItem(context.Background(), savour.ID, item))
	assert.Equal(t, savour.ID, item.RestaurantID)
	assert.False(t, c.has(savour.ID))

	err := svc.CreateMenuItem(context.Background(), "missing", &domain.MenuItem{Name: "A", Description: "B", Category: "Desserts"})
	assert.ErrorIs(t, err, repository.ErrRestaurantNotFound)

	err = svc.CreateMenuItem(context.Background(), savour.ID, &domain.MenuItem{Name: "A", Description: "B", Category: "Breakfast"})
	assert.ErrorIs(t, err, ErrInvalidRestaurant)
}
