package items

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/pricing"
)

// CreateItemInput carries the fields a member supplies when registering an item.
type CreateItemInput struct {
	MemberID    uuid.UUID
	Name        string
	Description *string
	Category    string
	Condition   string
	Price       string
}

// Service manages member items outside of the listing lifecycle. Status
// transitions past "available" belong to the listings service.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.Item, error)
	Get(ctx context.Context, memberID, itemID uuid.UUID) (*models.Item, error)
	List(ctx context.Context, memberID uuid.UUID) ([]models.Item, error)
	Delete(ctx context.Context, memberID, itemID uuid.UUID) error
}

// ServiceParams packages the dependencies for the items service.
type ServiceParams struct {
	Repo Repository
}

type service struct {
	repo Repository
}

// NewService builds an items service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "items repository required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	category := strings.TrimSpace(strings.ToLower(input.Category))
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	condition, err := enums.ParseItemCondition(input.Condition)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}
	price, err := pricing.ParseAmount(input.Price)
	if err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	item := &models.Item{
		MemberID:    input.MemberID,
		Name:        name,
		Description: input.Description,
		Category:    category,
		Condition:   condition,
		Price:       price,
		Status:      enums.ItemStatusAvailable,
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, memberID, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.findOwned(ctx, memberID, itemID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) List(ctx context.Context, memberID uuid.UUID) ([]models.Item, error) {
	items, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	return items, nil
}

// Delete removes an item permanently. Only items still in the available pool
// can be deleted; anything bound to a listing record must go through the
// lifecycle first.
func (s *service) Delete(ctx context.Context, memberID, itemID uuid.UUID) error {
	item, err := s.findOwned(ctx, memberID, itemID)
	if err != nil {
		return err
	}
	if item.Status != enums.ItemStatusAvailable {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "item is not available for deletion")
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	return nil
}

func (s *service) findOwned(ctx context.Context, memberID, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find item")
	}
	if item.MemberID != memberID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return item, nil
}
