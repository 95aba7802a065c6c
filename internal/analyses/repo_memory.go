package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Analysis
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Analysis),
		byUser: make(map[string][]string),
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if analysis.UpdatedAt.IsZero() {
		analysis.UpdatedAt = analysis.CreatedAt
	}
	r.byID[analysis.ID] = analysis
	r.byUser[analysis.UserID] = append(r.byUser[analysis.UserID], analysis.ID)
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// Update replaces the stored analysis, keeping its owner and creation time.
func (r *MemoryRepo) Update(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[analysis.ID]
	if !ok {
		return ErrNotFound
	}
	analysis.UserID = existing.UserID
	analysis.CreatedAt = existing.CreatedAt
	if analysis.UpdatedAt.IsZero() {
		analysis.UpdatedAt = time.Now().UTC()
	}
	r.byID[analysis.ID] = analysis
	return nil
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	analyses := make([]Analysis, 0, len(ids))
	for _, id := range ids {
		analyses = append(analyses, r.byID[id])
	}
	r.mu.RUnlock()

	if offset >= len(analyses) {
		return []Analysis{}, nil
	}
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})

	end := len(analyses)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return analyses[offset:end], nil
}

// Delete removes the analysis if it belongs to userID.
func (r *MemoryRepo) Delete(ctx context.Context, analysisID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[analysisID]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, analysisID)
	ids := r.byUser[userID]
	for i, id := range ids {
		if id == analysisID {
			r.byUser[userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(r.byUser[userID]) == 0 {
		delete(r.byUser, userID)
	}
	return nil
}
