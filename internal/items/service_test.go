package items

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
)

type stubItemRepo struct {
	items   map[uuid.UUID]*models.Item
	deleted []uuid.UUID
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: map[uuid.UUID]*models.Item{}}
}

func (s *stubItemRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubItemRepo) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubItemRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubItemRepo) ListByMember(_ context.Context, memberID uuid.UUID) ([]models.Item, error) {
	var out []models.Item
	for _, item := range s.items {
		if item.MemberID == memberID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubItemRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.ItemStatus) error {
	item, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Status = status
	return nil
}

func (s *stubItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.items, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func newItemsService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)
	return svc
}

func TestCreateItem(t *testing.T) {
	repo := newStubItemRepo()
	svc := newItemsService(t, repo)
	memberID := uuid.New()

	item, err := svc.Create(context.Background(), CreateItemInput{
		MemberID:  memberID,
		Name:      "Vintage denim jacket",
		Category:  "Clothing",
		Condition: "good",
		Price:     "45.00",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ItemStatusAvailable, item.Status)
	assert.Equal(t, "clothing", item.Category)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("45.00")))
}

func TestCreateItemValidation(t *testing.T) {
	svc := newItemsService(t, newStubItemRepo())
	ctx := context.Background()
	base := CreateItemInput{
		MemberID:  uuid.New(),
		Name:      "Lamp",
		Category:  "homeware",
		Condition: "new",
		Price:     "12.50",
	}

	missingName := base
	missingName.Name = "  "
	_, err := svc.Create(ctx, missingName)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	badCondition := base
	badCondition.Condition = "mint"
	_, err = svc.Create(ctx, badCondition)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	badPrice := base
	badPrice.Price = "twelve"
	_, err = svc.Create(ctx, badPrice)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	negativePrice := base
	negativePrice.Price = "-1.00"
	_, err = svc.Create(ctx, negativePrice)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestGetItemScopedToOwner(t *testing.T) {
	repo := newStubItemRepo()
	svc := newItemsService(t, repo)
	ctx := context.Background()
	memberID := uuid.New()

	created, err := svc.Create(ctx, CreateItemInput{
		MemberID:  memberID,
		Name:      "Lamp",
		Category:  "homeware",
		Condition: "new",
		Price:     "12.50",
	})
	require.NoError(t, err)

	found, err := svc.Get(ctx, memberID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteItemOnlyWhileAvailable(t *testing.T) {
	repo := newStubItemRepo()
	svc := newItemsService(t, repo)
	ctx := context.Background()
	memberID := uuid.New()

	created, err := svc.Create(ctx, CreateItemInput{
		MemberID:  memberID,
		Name:      "Lamp",
		Category:  "homeware",
		Condition: "new",
		Price:     "12.50",
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, enums.ItemStatusListed))
	err = svc.Delete(ctx, memberID, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, enums.ItemStatusAvailable))
	require.NoError(t, svc.Delete(ctx, memberID, created.ID))
	assert.Len(t, repo.deleted, 1)
}
