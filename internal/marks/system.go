package marks

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/auditmarks/pkg/pagination"
)

// System defines the public contract for mark domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Mark], error)

	Find(ctx context.Context, id uuid.UUID) (*Mark, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Mark, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error)
	Template() ([]byte, error)
	MatchesFor(ctx context.Context, auditID int, filename string) ([]Mark, error)
}
