package recordsRepo

import (
	"context"
	"slices"
	"sync"
	"time"

	"bookwell/models"

	"github.com/google/uuid"
)

// MemoryHistoryRepo keeps history records in process.
type MemoryHistoryRepo struct {
	mu      sync.Mutex
	records []models.HistoryRecord
}

func NewMemoryHistoryRepo() *MemoryHistoryRepo {
	return &MemoryHistoryRepo{}
}

func (r *MemoryHistoryRepo) Append(_ context.Context, record models.HistoryRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return record.ID, nil
}

func (r *MemoryHistoryRepo) ListByClient(_ context.Context, clientID string) ([]models.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.HistoryRecord
	for _, rec := range r.records {
		if rec.ClientID == clientID {
			out = append(out, rec)
		}
	}
	slices.Reverse(out)
	return out, nil
}
