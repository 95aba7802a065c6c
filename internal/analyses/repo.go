package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	// Update replaces the mutable fields of an existing analysis.
	Update(ctx context.Context, analysis Analysis) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	// Delete removes an analysis owned by userID. ErrNotFound when no such row exists.
	Delete(ctx context.Context, analysisID, userID string) error
}
