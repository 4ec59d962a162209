// Package engine is the todo synchronization engine. It owns the local
// date-bucket store, applies every mutation optimistically before the
// matching network write, merges the server's canonical row back in on
// success, and rolls back by silently refetching on failure. Reads are
// guarded by the mutation tracker so a response that started before a
// local write can never clobber that write's result.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ethan-dean/todue/internal/todo"
)

// Service is the request/response contract to the remote todo store.
// Every write returns the canonical row, post-materialization when the
// write targeted a virtual occurrence. *todoapi.Client satisfies this.
type Service interface {
	TodosForDate(ctx context.Context, date string) ([]todo.Todo, error)
	TodosForRange(ctx context.Context, start, end string) ([]todo.Todo, error)
	Create(ctx context.Context, text, date string) (todo.Todo, error)
	UpdateText(ctx context.Context, id int64, text string) (todo.Todo, error)
	UpdatePosition(ctx context.Context, id int64, position int) (todo.Todo, error)
	UpdateAssignedDate(ctx context.Context, id int64, toDate string) (todo.Todo, error)
	Complete(ctx context.Context, id int64) (todo.Todo, error)
	Uncomplete(ctx context.Context, id int64) (todo.Todo, error)
	Delete(ctx context.Context, id int64, deleteAllFuture bool) error
	UpdateVirtualText(ctx context.Context, recurringTodoID int64, instanceDate, text string) (todo.Todo, error)
	UpdateVirtualPosition(ctx context.Context, recurringTodoID int64, instanceDate string, position int) (todo.Todo, error)
	UpdateVirtualAssignedDate(ctx context.Context, recurringTodoID int64, instanceDate, toDate string) (todo.Todo, error)
	CompleteVirtual(ctx context.Context, recurringTodoID int64, instanceDate string) (todo.Todo, error)
	DeleteVirtual(ctx context.Context, recurringTodoID int64, instanceDate string, deleteAllFuture bool) error
}

// Cache persists bucket snapshots across runs so the engine can render
// the last known state before the first network read completes.
type Cache interface {
	SaveBucket(dateKey string, items []todo.Todo) error
	DeleteBucket(dateKey string) error
	LoadBucket(dateKey string) ([]todo.Todo, bool, error)
}

// Config holds the collaborators for a new Engine.
type Config struct {
	Service Service
	Cache   Cache // optional
	Logger  *slog.Logger

	// Anchor is the selected date key; the visible window centers on it.
	Anchor string

	// ViewDays is the day-view width: 1, 3, 5 or 7.
	ViewDays int

	// Tracker overrides the engine's mutation tracker. Tests inject one
	// on a controlled clock; nil gets a wall-clock tracker.
	Tracker *todo.MutationTracker
}

// Engine coordinates the local store, the remote service and the
// mutation tracker.
//
// Operations serialize around mu for their local (optimistic) phase
// only; mu is never held across a network call. Code running after a
// response re-reads current store state instead of trusting a snapshot
// captured before the await.
type Engine struct {
	svc     Service
	cache   Cache
	logger  *slog.Logger
	store   *todo.Store
	tracker *todo.MutationTracker

	// flight coalesces concurrent silent refetches of the same date so
	// a burst of push notifications costs one read.
	flight singleflight.Group

	mu       sync.Mutex
	anchor   string
	viewDays int

	// nextTemp generates placeholder row IDs for optimistic creates.
	// Negative so they can never collide with server-assigned IDs.
	nextTemp int64

	// changed is a coalesced change signal for UI collaborators. The
	// equality gate in Store.Replace keeps echoes of our own writes
	// from ever pulsing it.
	changed chan struct{}
}

// New creates an Engine from cfg.
func New(cfg Config) *Engine {
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = todo.NewMutationTracker()
	}

	viewDays := cfg.ViewDays
	if viewDays == 0 {
		viewDays = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		svc:      cfg.Service,
		cache:    cfg.Cache,
		logger:   logger,
		store:    todo.NewStore(),
		tracker:  tracker,
		anchor:   cfg.Anchor,
		viewDays: viewDays,
		nextTemp: -1,
		changed:  make(chan struct{}, 1),
	}
}

// Snapshot returns the bucket for dateKey and whether it is loaded. The
// returned slice is shared and read-only; it keeps its identity until
// the bucket actually changes.
func (e *Engine) Snapshot(dateKey string) ([]todo.Todo, bool) {
	return e.store.Get(dateKey)
}

// Generation returns the store's change counter for dateKey.
func (e *Engine) Generation(dateKey string) uint64 {
	return e.store.Generation(dateKey)
}

// Changed returns a coalesced signal pulsed whenever any bucket changes.
func (e *Engine) Changed() <-chan struct{} {
	return e.changed
}

// SetView moves the visible window. It does not trigger loads; callers
// follow up with LoadVisible.
func (e *Engine) SetView(anchor string, viewDays int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.anchor = anchor

	switch viewDays {
	case 1, 3, 5, 7:
		e.viewDays = viewDays
	}
}

// Anchor returns the selected date key.
func (e *Engine) Anchor() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.anchor
}

// VisibleWindow returns the date keys of the current view, centered on
// the anchor.
func (e *Engine) VisibleWindow() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return todo.Window(e.anchor, e.viewDays)
}

// IsVisible reports whether dateKey falls inside the current view.
func (e *Engine) IsVisible(dateKey string) bool {
	for _, key := range e.VisibleWindow() {
		if key == dateKey {
			return true
		}
	}

	return false
}

// notify pulses the change channel without blocking.
func (e *Engine) notify() {
	select {
	case e.changed <- struct{}{}:
	default:
	}
}

// writeThrough mirrors dateKey's current bucket into the cache. A
// bucket that reverted to absence is deleted from the cache too.
func (e *Engine) writeThrough(dateKey string) {
	if e.cache == nil {
		return
	}

	items, loaded := e.store.Get(dateKey)

	var err error
	if loaded {
		err = e.cache.SaveBucket(dateKey, items)
	} else {
		err = e.cache.DeleteBucket(dateKey)
	}

	if err != nil {
		e.logger.Warn("failed to persist bucket snapshot",
			slog.String("date", dateKey),
			slog.String("error", err.Error()),
		)
	}
}

// Hydrate fills unloaded visible buckets from the cache so the UI has
// something to show before the first network read lands. Cached state
// participates in the equality gate: if the server read returns the
// same content, no new snapshot is produced.
func (e *Engine) Hydrate() {
	if e.cache == nil {
		return
	}

	for _, dateKey := range e.VisibleWindow() {
		if _, loaded := e.store.Get(dateKey); loaded {
			continue
		}

		items, ok, err := e.cache.LoadBucket(dateKey)
		if err != nil {
			e.logger.Warn("failed to read cached bucket",
				slog.String("date", dateKey),
				slog.String("error", err.Error()),
			)

			continue
		}

		if ok && e.store.Replace(dateKey, items) {
			e.notify()
		}
	}
}

// LoadForDate fetches one date's bucket from the service and installs
// it, unless a local mutation landed after the fetch started, in which
// case the result is discarded silently.
func (e *Engine) LoadForDate(ctx context.Context, dateKey string) error {
	if _, err := todo.ParseDateKey(dateKey); err != nil {
		return &todo.ValidationError{Reason: fmt.Sprintf("invalid date %q", dateKey)}
	}

	return e.fetchDate(ctx, dateKey)
}

// fetchDate is the shared single-date read path. Concurrent calls for
// the same date coalesce into one request.
func (e *Engine) fetchDate(ctx context.Context, dateKey string) error {
	_, err, _ := e.flight.Do(dateKey, func() (any, error) {
		started := e.tracker.Now()

		rows, err := e.svc.TodosForDate(ctx, dateKey)
		if err != nil {
			return nil, err
		}

		if e.tracker.StaleFetch(started) {
			e.logger.Debug("discarding stale read", slog.String("date", dateKey))
			return nil, nil
		}

		if e.store.Replace(dateKey, rows) {
			e.writeThrough(dateKey)
			e.notify()
		}

		return nil, nil
	})

	return err
}

// LoadForRange fetches every bucket in [start, end]. Dates inside the
// range with no rows are installed as loaded-but-empty.
func (e *Engine) LoadForRange(ctx context.Context, start, end string) error {
	keys, err := todo.KeysBetween(start, end)
	if err != nil {
		return &todo.ValidationError{Reason: err.Error()}
	}

	started := e.tracker.Now()

	rows, err := e.svc.TodosForRange(ctx, start, end)
	if err != nil {
		return err
	}

	if e.tracker.StaleFetch(started) {
		e.logger.Debug("discarding stale range read",
			slog.String("start", start),
			slog.String("end", end),
		)

		return nil
	}

	byDate := make(map[string][]todo.Todo, len(keys))
	for _, row := range rows {
		byDate[row.AssignedDate] = append(byDate[row.AssignedDate], row)
	}

	changed := false

	for _, key := range keys {
		if e.store.Replace(key, byDate[key]) {
			e.writeThrough(key)

			changed = true
		}
	}

	if changed {
		e.notify()
	}

	return nil
}

// LoadVisible loads the whole visible window: a single-date read for
// the one-day view, a range read otherwise.
func (e *Engine) LoadVisible(ctx context.Context) error {
	window := e.VisibleWindow()
	if len(window) == 1 {
		return e.LoadForDate(ctx, window[0])
	}

	return e.LoadForRange(ctx, window[0], window[len(window)-1])
}

// RefetchDate is the silent re-read used by the push router and the
// rollback path: errors are logged, never surfaced, and no loading
// state is involved.
func (e *Engine) RefetchDate(ctx context.Context, dateKey string) {
	if err := e.fetchDate(ctx, dateKey); err != nil {
		e.logger.Warn("silent refetch failed",
			slog.String("date", dateKey),
			slog.String("error", err.Error()),
		)
	}
}

// RefetchVisible silently re-reads the whole visible window.
func (e *Engine) RefetchVisible(ctx context.Context) {
	window := e.VisibleWindow()

	var err error
	if len(window) == 1 {
		err = e.fetchDate(ctx, window[0])
	} else {
		err = e.LoadForRange(ctx, window[0], window[len(window)-1])
	}

	if err != nil {
		e.logger.Warn("silent window refetch failed", slog.String("error", err.Error()))
	}
}

// rollback discards the optimistic state of the given buckets by
// silently refetching them, restoring server ground truth.
func (e *Engine) rollback(ctx context.Context, cause error, dateKeys ...string) {
	e.logger.Warn("write failed, rolling back",
		slog.String("error", cause.Error()),
		slog.Any("dates", dateKeys),
	)

	for _, key := range dateKeys {
		e.RefetchDate(ctx, key)
	}
}

// applyCanonical merges the canonical row a write returned. Patch
// matches by row ID first and recurrence key second, so a materialized
// row replaces the virtual entry it came from. If the server assigned a
// different bucket than the one we mutated, the item is removed from
// the old bucket first.
func (e *Engine) applyCanonical(orig todo.Identity, origDate string, canonical todo.Todo) {
	e.mu.Lock()

	if canonical.AssignedDate == origDate {
		// A never-loaded bucket stays absent: patching one row into it
		// would falsely present it as the bucket's full content. The row
		// surfaces when the date is actually fetched.
		if _, loaded := e.store.Get(origDate); !loaded {
			e.mu.Unlock()
			return
		}

		e.store.Patch(origDate, canonical)
	} else {
		e.store.Remove(origDate, orig)

		// An unloaded target stays unloaded: patching one row into it
		// would falsely present it as the bucket's full content.
		if _, loaded := e.store.Get(canonical.AssignedDate); loaded {
			e.store.Patch(canonical.AssignedDate, canonical)
		}
	}

	e.mu.Unlock()

	e.writeThrough(origDate)

	if canonical.AssignedDate != origDate {
		e.writeThrough(canonical.AssignedDate)
	}

	e.notify()
}

// Create validates, optimistically appends a placeholder row at the end
// of the bucket, then persists. The placeholder carries a negative
// temporary ID and is swapped for the canonical row on success. A date
// that was never loaded is left absent throughout; the created row
// shows up on the first real read of that date.
func (e *Engine) Create(ctx context.Context, text, dateKey string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &todo.ValidationError{Reason: "todo text cannot be empty"}
	}

	if _, err := todo.ParseDateKey(dateKey); err != nil {
		return &todo.ValidationError{Reason: fmt.Sprintf("invalid date %q", dateKey)}
	}

	e.mu.Lock()
	e.tracker.Record()

	tempID := e.nextTemp
	e.nextTemp--

	placeholder := todo.Todo{
		ID:           tempID,
		Text:         text,
		AssignedDate: dateKey,
		InstanceDate: dateKey,
	}

	// The placeholder goes only into a bucket we have already read;
	// installing it into an absent one would mark the date loaded with
	// content the server never confirmed.
	bucket, loaded := e.store.Get(dateKey)
	if loaded {
		e.store.Replace(dateKey, todo.InsertAtEnd(bucket, placeholder))
	}

	e.mu.Unlock()

	if loaded {
		e.notify()
	}

	canonical, err := e.svc.Create(ctx, text, dateKey)
	if err != nil {
		e.mu.Lock()
		e.store.Remove(dateKey, todo.RealIdentity(tempID))
		e.mu.Unlock()
		e.rollback(ctx, err, dateKey)

		return err
	}

	e.mu.Lock()
	e.store.Remove(dateKey, todo.RealIdentity(tempID))
	e.mu.Unlock()

	e.applyCanonical(canonical.Identity(), dateKey, canonical)

	return nil
}

// UpdateText changes an item's label. Mutating a virtual occurrence
// routes through the materializing request variant.
func (e *Engine) UpdateText(ctx context.Context, id todo.Identity, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &todo.ValidationError{Reason: "todo text cannot be empty"}
	}

	e.mu.Lock()

	dateKey, item, ok := e.store.Find(id)
	if !ok {
		e.mu.Unlock()
		return &todo.ValidationError{Reason: "todo not found"}
	}

	e.tracker.Record()

	item.Text = text
	e.store.Patch(dateKey, item)
	e.mu.Unlock()
	e.notify()

	var (
		canonical todo.Todo
		err       error
	)

	if item.IsVirtual {
		canonical, err = e.svc.UpdateVirtualText(ctx, item.RecurringTodoID, item.InstanceDate, text)
	} else {
		canonical, err = e.svc.UpdateText(ctx, item.ID, text)
	}

	if err != nil {
		e.rollback(ctx, err, dateKey)
		return err
	}

	e.applyCanonical(id, dateKey, canonical)

	return nil
}

// Move relocates an item to targetIndex within its bucket's sorted
// order. A move to the item's current index is a no-op and issues no
// network call.
func (e *Engine) Move(ctx context.Context, id todo.Identity, targetIndex int) error {
	e.mu.Lock()

	dateKey, item, ok := e.store.Find(id)
	if !ok {
		e.mu.Unlock()
		return &todo.ValidationError{Reason: "todo not found"}
	}

	bucket, _ := e.store.Get(dateKey)
	sorted := todo.SortedBucket(bucket)

	// Clamp before comparing so the requested position always matches
	// the optimistic order produced below.
	if targetIndex < 0 {
		targetIndex = 0
	}

	if targetIndex > len(sorted)-1 {
		targetIndex = len(sorted) - 1
	}

	current := -1
	for i, t := range sorted {
		if id.Matches(t) {
			current = i
			break
		}
	}

	if targetIndex == current {
		e.mu.Unlock()
		return nil
	}

	e.tracker.Record()
	e.store.Replace(dateKey, todo.MoveToIndex(sorted, id, targetIndex))
	e.mu.Unlock()
	e.notify()

	position := targetIndex + 1

	var (
		canonical todo.Todo
		err       error
	)

	if item.IsVirtual {
		canonical, err = e.svc.UpdateVirtualPosition(ctx, item.RecurringTodoID, item.InstanceDate, position)
	} else {
		canonical, err = e.svc.UpdatePosition(ctx, item.ID, position)
	}

	if err != nil {
		e.rollback(ctx, err, dateKey)
		return err
	}

	e.applyCanonical(id, dateKey, canonical)

	return nil
}

// Complete marks an item done, relocating it to the head of its
// bucket's completed block. Completing an already-completed item is a
// no-op.
func (e *Engine) Complete(ctx context.Context, id todo.Identity) error {
	e.mu.Lock()

	dateKey, item, ok := e.store.Find(id)
	if !ok {
		e.mu.Unlock()
		return &todo.ValidationError{Reason: "todo not found"}
	}

	if item.IsCompleted {
		e.mu.Unlock()
		return nil
	}

	e.tracker.Record()

	bucket, _ := e.store.Get(dateKey)
	e.store.Replace(dateKey, todo.MarkComplete(bucket, id, e.tracker.Now()))
	e.mu.Unlock()
	e.notify()

	var (
		canonical todo.Todo
		err       error
	)

	if item.IsVirtual {
		canonical, err = e.svc.CompleteVirtual(ctx, item.RecurringTodoID, item.InstanceDate)
	} else {
		canonical, err = e.svc.Complete(ctx, item.ID)
	}

	if err != nil {
		e.rollback(ctx, err, dateKey)
		return err
	}

	e.applyCanonical(id, dateKey, canonical)

	return nil
}

// Uncomplete reverts a completed item, relocating it to the tail of the
// incomplete block. Virtual occurrences are incomplete by construction,
// so uncompleting one is rejected before any network call.
func (e *Engine) Uncomplete(ctx context.Context, id todo.Identity) error {
	if id.IsVirtual() {
		return &todo.ValidationError{Reason: "a recurring occurrence that was never completed cannot be uncompleted"}
	}

	e.mu.Lock()

	dateKey, item, ok := e.store.Find(id)
	if !ok {
		e.mu.Unlock()
		return &todo.ValidationError{Reason: "todo not found"}
	}

	if !item.IsCompleted {
		e.mu.Unlock()
		return nil
	}

	e.tracker.Record()

	bucket, _ := e.store.Get(dateKey)
	e.store.Replace(dateKey, todo.MarkUncomplete(bucket, id))
	e.mu.Unlock()
	e.notify()

	canonical, err := e.svc.Uncomplete(ctx, item.ID)
	if err != nil {
		e.rollback(ctx, err, dateKey)
		return err
	}

	e.applyCanonical(id, dateKey, canonical)

	return nil
}

// Delete removes an item. With deleteAllFuture on a recurring item, the
// optimistic sweep removes virtual projections and still-incomplete
// materialized rows on or after the instance date across every loaded
// bucket; completed rows are history and stay.
func (e *Engine) Delete(ctx context.Context, id todo.Identity, deleteAllFuture bool) error {
	e.mu.Lock()

	dateKey, item, ok := e.store.Find(id)
	if !ok {
		e.mu.Unlock()
		return &todo.ValidationError{Reason: "todo not found"}
	}

	e.tracker.Record()

	affected := []string{dateKey}
	if deleteAllFuture && item.RecurringTodoID != 0 {
		affected = e.truncateRecurrenceLocked(item)
	} else {
		e.store.Remove(dateKey, id)
	}

	e.mu.Unlock()
	e.notify()

	var err error
	if item.IsVirtual {
		err = e.svc.DeleteVirtual(ctx, item.RecurringTodoID, item.InstanceDate, deleteAllFuture)
	} else {
		err = e.svc.Delete(ctx, item.ID, deleteAllFuture)
	}

	if err != nil {
		e.rollback(ctx, err, affected...)
		return err
	}

	for _, key := range affected {
		e.writeThrough(key)
	}

	return nil
}

// truncateRecurrenceLocked removes anchor and every occurrence of its
// recurrence on or after the anchor's instance date from the loaded
// buckets, skipping already-completed rows. Returns the touched date
// keys. Caller holds e.mu.
func (e *Engine) truncateRecurrenceLocked(anchor todo.Todo) []string {
	anchorID := anchor.Identity()

	var affected []string

	for _, dateKey := range e.store.Dates() {
		bucket, _ := e.store.Get(dateKey)

		touched := false

		for _, t := range bucket {
			if t.RecurringTodoID != anchor.RecurringTodoID {
				continue
			}

			if t.InstanceDate < anchor.InstanceDate {
				continue
			}

			// The anchor itself always goes; future rows only when they
			// are virtual or not yet completed.
			if !anchorID.Matches(t) && t.IsCompleted && !t.IsVirtual {
				continue
			}

			if e.store.Remove(dateKey, t.Identity()) {
				touched = true
			}
		}

		if touched {
			affected = append(affected, dateKey)
		}
	}

	if len(affected) == 0 {
		affected = []string{anchor.AssignedDate}
	}

	return affected
}

// MoveToDate reassigns an item to another date bucket: the source is
// renumbered after removal, and the item lands immediately before the
// target's first completed entry.
func (e *Engine) MoveToDate(ctx context.Context, id todo.Identity, toDate string) error {
	if _, err := todo.ParseDateKey(toDate); err != nil {
		return &todo.ValidationError{Reason: fmt.Sprintf("invalid date %q", toDate)}
	}

	e.mu.Lock()

	fromDate, item, ok := e.store.Find(id)
	if !ok {
		e.mu.Unlock()
		return &todo.ValidationError{Reason: "todo not found"}
	}

	if fromDate == toDate {
		e.mu.Unlock()
		return nil
	}

	e.tracker.Record()
	e.store.Remove(fromDate, id)

	// Only patch the target when it is loaded: inserting into an
	// unloaded bucket would falsely mark it loaded with one item.
	if target, loaded := e.store.Get(toDate); loaded {
		moved := item
		moved.AssignedDate = toDate
		e.store.Replace(toDate, todo.InsertBeforeCompleted(target, moved))
	}

	e.mu.Unlock()
	e.notify()

	var (
		canonical todo.Todo
		err       error
	)

	if item.IsVirtual {
		canonical, err = e.svc.UpdateVirtualAssignedDate(ctx, item.RecurringTodoID, item.InstanceDate, toDate)
	} else {
		canonical, err = e.svc.UpdateAssignedDate(ctx, item.ID, toDate)
	}

	if err != nil {
		e.rollback(ctx, err, fromDate, toDate)
		return err
	}

	e.applyCanonical(id, fromDate, canonical)

	return nil
}
