package avatars

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/KirkDiggler/avatar-forge/internal/repositories/avatars Repository

import (
	"context"
	"time"

	"github.com/KirkDiggler/avatar-forge/internal/domain/avatar"
	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// Record is a saved avatar snapshot
type Record struct {
	ID        string
	OwnerID   string
	Character avatar.Character
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the interface for avatar snapshot storage
type Repository interface {
	// Save creates or replaces the record and marks it as the owner's latest
	Save(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	GetLatestByOwner(ctx context.Context, ownerID string) (*Record, error)
	// ListByOwner returns the owner's records, most recently updated first
	ListByOwner(ctx context.Context, ownerID string) ([]*Record, error)
	Delete(ctx context.Context, id string) error
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	copied := *r
	copied.Character = r.Character.Clone()
	return &copied
}

func validateRecord(record *Record) error {
	if record == nil {
		return apperr.InvalidArgument("record cannot be nil")
	}
	if record.ID == "" {
		return apperr.InvalidArgument("avatar ID is required")
	}
	if record.OwnerID == "" {
		return apperr.InvalidArgument("owner ID is required").WithMeta("avatar_id", record.ID)
	}
	return nil
}

func notFound(id string) error {
	return apperr.NotFoundf("avatar '%s' not found", id).WithMeta("avatar_id", id)
}

func noneForOwner(ownerID string) error {
	return apperr.NotFoundf("no avatar saved for owner '%s'", ownerID).WithMeta("owner_id", ownerID)
}
