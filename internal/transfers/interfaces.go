package transfers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

// Repository defines persistence operations for the pending transfer queues.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	EnqueueMember(ctx context.Context, pending *models.PendingMemberTransfer) error
	ListDueMember(ctx context.Context, now time.Time) ([]models.PendingMemberTransfer, error)
	UpdateMember(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteMember(ctx context.Context, id uuid.UUID) error

	EnqueueStore(ctx context.Context, pending *models.PendingStoreTransfer) error
	ListDueStore(ctx context.Context, now time.Time) ([]models.PendingStoreTransfer, error)
	UpdateStore(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteStore(ctx context.Context, id uuid.UUID) error
}
