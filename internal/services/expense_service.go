// Package services sits between the view layer and the backend client. It
// owns the read caches and the invalidation contract for writes.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"b43/internal/api"
	"b43/internal/cache"
	"b43/internal/core"
)

// ErrMissingID is returned when a single-record read is attempted without an
// id; the request is never issued.
var ErrMissingID = errors.New("missing expense id")

const statsKey = "stats"

// Backend is the slice of the API client the service needs.
type Backend interface {
	List(ctx context.Context, query string) ([]core.Expense, error)
	Stats(ctx context.Context) (core.Stats, error)
	Get(ctx context.Context, id int64) (core.Expense, error)
	Create(ctx context.Context, form api.ExpenseForm) (core.Expense, error)
	Update(ctx context.Context, id int64, form api.ExpenseForm) (core.Expense, error)
}

// ExpenseService caches backend reads keyed by operation plus parameters and
// invalidates exactly the keys a successful write affects. Failed writes
// leave every cache untouched.
type ExpenseService struct {
	backend Backend

	lists *cache.LRUCache[[]core.Expense]
	stats *cache.LRUCache[core.Stats]
	items *cache.LRUCache[core.Expense]
}

// NewExpenseService wires the service's caches and registers them with the
// manager for periodic expiry cleanup. A nil manager skips registration.
func NewExpenseService(backend Backend, mgr *cache.Manager, size int, ttl time.Duration) *ExpenseService {
	s := &ExpenseService{
		backend: backend,
		lists:   cache.NewLRUCache[[]core.Expense](size, ttl),
		stats:   cache.NewLRUCache[core.Stats](1, ttl),
		items:   cache.NewLRUCache[core.Expense](size, ttl),
	}
	if mgr != nil {
		mgr.Register(s.lists)
		mgr.Register(s.stats)
		mgr.Register(s.items)
	}
	return s
}

func listKey(query string) string { return "expenses:" + query }

func itemKey(id int64) string { return "expense:" + strconv.FormatInt(id, 10) }

// ListExpenses returns all expenses, optionally narrowed server-side by a
// free-text query. Results are cached per query.
func (s *ExpenseService) ListExpenses(ctx context.Context, query string) ([]core.Expense, error) {
	key := listKey(query)
	if items, found := s.lists.Get(key); found {
		slog.DebugContext(ctx, "Expense list cache hit", "query", query, "count", len(items))
		// Return a copy to prevent external mutation
		out := make([]core.Expense, len(items))
		copy(out, items)
		return out, nil
	}

	items, err := s.backend.List(ctx, query)
	if err != nil {
		return nil, err
	}
	s.lists.Set(key, items)
	slog.DebugContext(ctx, "Expense list cached", "query", query, "count", len(items))
	return items, nil
}

// GetStats returns the backend aggregate, cached under a single key.
func (s *ExpenseService) GetStats(ctx context.Context) (core.Stats, error) {
	if st, found := s.stats.Get(statsKey); found {
		return st, nil
	}
	st, err := s.backend.Stats(ctx)
	if err != nil {
		return core.Stats{}, err
	}
	s.stats.Set(statsKey, st)
	return st, nil
}

// GetExpense returns a single record. With no valid id the request is not
// issued at all.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	if id <= 0 {
		return core.Expense{}, ErrMissingID
	}
	key := itemKey(id)
	if e, found := s.items.Get(key); found {
		return e, nil
	}
	e, err := s.backend.Get(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	s.items.Set(key, e)
	return e, nil
}

// CreateExpense validates the form locally, submits it, and on success
// invalidates the cached expense lists and stats so subsequent reads are
// fresh. Validation failures never reach the network.
func (s *ExpenseService) CreateExpense(ctx context.Context, form api.ExpenseForm) (core.Expense, error) {
	if err := form.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validation failed: %w", err)
	}
	e, err := s.backend.Create(ctx, form)
	if err != nil {
		return core.Expense{}, err
	}
	s.invalidateAfterWrite()
	slog.InfoContext(ctx, "Expense created", "id", e.ID, "name", e.Name, "amount_cents", e.Amount.Cents)
	return e, nil
}

// UpdateExpense validates and submits an update, additionally invalidating
// the cached single-record view for that id on success.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, form api.ExpenseForm) (core.Expense, error) {
	if id <= 0 {
		return core.Expense{}, ErrMissingID
	}
	if err := form.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validation failed: %w", err)
	}
	e, err := s.backend.Update(ctx, id, form)
	if err != nil {
		return core.Expense{}, err
	}
	s.invalidateAfterWrite()
	s.items.Delete(itemKey(id))
	slog.InfoContext(ctx, "Expense updated", "id", id, "name", e.Name, "amount_cents", e.Amount.Cents)
	return e, nil
}

// invalidateAfterWrite drops every cached list (any query may be affected)
// and the stats aggregate.
func (s *ExpenseService) invalidateAfterWrite() {
	s.lists.Purge()
	s.stats.Delete(statsKey)
}
