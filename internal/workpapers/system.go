package workpapers

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/auditmarks/pkg/pagination"
)

// System defines the public contract for work-paper domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[WorkPaper], error)

	Find(ctx context.Context, id uuid.UUID) (*WorkPaper, error)
	Create(ctx context.Context, cmd CreateCommand) (*WorkPaper, error)
	CreateBatch(ctx context.Context, cmds []CreateCommand) []BatchResult
	Delete(ctx context.Context, id uuid.UUID) error

	// Download returns the stored bytes of a work paper with the marks of
	// its audit stamped in. Stamping never fails the download.
	Download(ctx context.Context, id uuid.UUID) (*Delivery, error)
}
