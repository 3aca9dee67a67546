package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/service"
	"showcase-cms/internal/content/gateway"
	"showcase-cms/internal/shared/logger"
)

// State is the editor's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateMutating
	StatePersisting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	case StatePersisting:
		return "persisting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrNoEditSurface is returned by buffer operations when neither BeginAdd nor BeginEdit is active.
var ErrNoEditSurface = errors.New("no add or edit in progress")

// Option configures an Editor.
type Option func(*Editor)

// WithPersistOnMove sets whether Move persists immediately (the default). When false, moves
// only mark the list dirty and Save flushes them.
func WithPersistOnMove(enabled bool) Option {
	return func(e *Editor) { e.persistOnMove = enabled }
}

// WithNoticeFunc sets the notice receiver.
func WithNoticeFunc(fn NoticeFunc) Option {
	return func(e *Editor) { e.notify = fn }
}

// WithFallback sets the seed list used when the persisted collection is empty or unreadable.
func WithFallback(items []model.CollectionItem) Option {
	return func(e *Editor) { e.fallback = model.CloneItems(items) }
}

func WithReconciler(r *service.Reconciler) Option {
	return func(e *Editor) { e.reconciler = r }
}

func WithValidator(v *service.Validator) Option {
	return func(e *Editor) { e.validator = v }
}

func WithLogger(log logger.Logger) Option {
	return func(e *Editor) { e.log = log }
}

// Editor owns the working list of one collection. Every persist sends the whole list,
// runs on its own goroutine and never waits for or cancels an earlier one.
type Editor struct {
	gw         gateway.Gateway
	parentID   string
	key        model.CollectionKey
	fallback   []model.CollectionItem
	reconciler *service.Reconciler
	validator  *service.Validator
	notify     NoticeFunc
	log        logger.Logger

	persistOnMove bool

	mu           sync.Mutex
	state        State
	items        []model.CollectionItem
	baseline     []model.CollectionItem
	version      int64
	editingIndex *int
	buffer       *model.CollectionItem
	stale        bool
	dirty        bool
	loadFailed   bool
	lookup       *versionLookup
	inflight     int
	dispatched   uint64 // sequence of the newest dispatched persist
	applied      uint64 // sequence of the newest persist the store confirmed
	wg           sync.WaitGroup
}

// New creates an idle editor for parentID/key.
func New(gw gateway.Gateway, parentID string, key model.CollectionKey, opts ...Option) *Editor {
	e := &Editor{
		gw:            gw,
		parentID:      parentID,
		key:           key,
		persistOnMove: true,
		state:         StateIdle,
		items:         []model.CollectionItem{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reconciler == nil {
		e.reconciler = service.NewReconciler()
	}
	if e.validator == nil {
		e.validator = service.MustNewValidator(nil)
	}
	if e.log == nil {
		e.log = logger.NewNopLogger()
	}
	e.log = e.log.WithComponent("collection_editor").WithFields(map[string]interface{}{
		"parent_id":  parentID,
		"collection": string(key),
	})
	return e
}

// Load fetches the persisted collection and reconciles it with the fallback. A failed fetch
// leaves the editor Ready with the fallback alone and raises NoticeFetchFailed.
func (e *Editor) Load(ctx context.Context) {
	e.mu.Lock()
	e.state = StateLoading
	e.mu.Unlock()

	snap, err := e.gw.Fetch(ctx, e.parentID, e.key)

	e.mu.Lock()
	if err != nil {
		e.log.Warnf("Load failed, using fallback: %v", err)
		e.items = e.reconciler.Reconcile(nil, e.fallback)
		e.baseline = []model.CollectionItem{}
		e.version = 0
		e.loadFailed = true
	} else {
		e.loadFailed = false
		e.lookup = nil
		e.items = e.reconciler.Reconcile(snap.Items, e.fallback)
		e.baseline = model.CloneItems(snap.Items)
		e.version = snap.Version
	}
	e.stale = false
	e.dirty = false
	e.closeSurfaceLocked()
	e.settleLocked()
	e.mu.Unlock()

	if err != nil {
		e.emit(Notice{Kind: NoticeFetchFailed, Message: "could not load saved content; showing defaults", Err: err})
	}
}

// BeginAdd opens the edit surface with an empty record.
func (e *Editor) BeginAdd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editingIndex = nil
	e.buffer = &model.CollectionItem{}
}

// BeginEdit opens the edit surface on a copy of items[i].
func (e *Editor) BeginEdit(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.items) {
		return fmt.Errorf("%w: %d of %d", model.ErrIndexOutOfRange, i, len(e.items))
	}
	idx := i
	buf := e.items[i].Clone()
	e.editingIndex = &idx
	e.buffer = &buf
	return nil
}

// UpdateBuffer applies fn to the open buffer.
func (e *Editor) UpdateBuffer(fn func(item *model.CollectionItem)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return ErrNoEditSurface
	}
	fn(e.buffer)
	return nil
}

// Cancel closes the edit surface without changes.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeSurfaceLocked()
}

// Editing returns the open buffer and the index it edits (-1 when adding).
func (e *Editor) Editing() (buffer model.CollectionItem, index int, open bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return model.CollectionItem{}, -1, false
	}
	index = -1
	if e.editingIndex != nil {
		index = *e.editingIndex
	}
	return e.buffer.Clone(), index, true
}

// Commit validates the buffer, applies it and persists. A validation failure returns
// *errors.ValidationErrors, keeps the surface open and sends nothing. A buffer sharing its
// identity with another item fails the same way; identities are unique in every saved list.
func (e *Editor) Commit(ctx context.Context) error {
	e.mu.Lock()
	if e.buffer == nil {
		e.mu.Unlock()
		return ErrNoEditSurface
	}
	if err := e.validator.Validate(e.key.Kind(), *e.buffer); err != nil {
		e.mu.Unlock()
		return err
	}
	next, err := Commit(e.items, e.editingIndex, *e.buffer)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	at := len(next) - 1
	if e.editingIndex != nil {
		at = *e.editingIndex
	}
	if err := e.validator.ValidateUnique(next, at); err != nil {
		e.mu.Unlock()
		return err
	}
	e.state = StateMutating
	e.items = next
	e.closeSurfaceLocked()
	e.dispatchLocked(ctx)
	e.mu.Unlock()
	return nil
}

// Remove deletes items[i] and persists immediately.
func (e *Editor) Remove(ctx context.Context, i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := Remove(e.items, i)
	if err != nil {
		return err
	}
	e.state = StateMutating
	e.items = next
	e.dispatchLocked(ctx)
	return nil
}

// Move shifts items[i] in dir. It reports false, and persists nothing, at a boundary.
func (e *Editor) Move(ctx context.Context, i int, dir Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, moved := Move(e.items, i, dir)
	if !moved {
		return false
	}
	e.state = StateMutating
	e.items = next
	if e.persistOnMove {
		e.dispatchLocked(ctx)
	} else {
		e.dirty = true
		e.settleLocked()
	}
	return true
}

// Save flushes deferred moves. It reports whether a persist was dispatched.
func (e *Editor) Save(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dirty {
		return false
	}
	e.dispatchLocked(ctx)
	return true
}

// MarkStale flags the working list as behind the store, e.g. after a change-feed event
// for a version this editor did not write.
func (e *Editor) MarkStale(version int64) {
	e.mu.Lock()
	if version <= e.version || e.stale {
		e.mu.Unlock()
		return
	}
	e.stale = true
	e.mu.Unlock()
	e.emit(Notice{Kind: NoticeStaleData, Message: fmt.Sprintf("collection changed elsewhere (version %d)", version)})
}

// Wait blocks until every dispatched persist has finished.
func (e *Editor) Wait() {
	e.wg.Wait()
}

func (e *Editor) Items() []model.CollectionItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneItems(e.items)
}

// Baseline is the last list the store confirmed.
func (e *Editor) Baseline() []model.CollectionItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneItems(e.baseline)
}

func (e *Editor) Version() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy reports whether a persist is in flight.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inflight > 0
}

// Stale reports whether the local list may differ from the store.
func (e *Editor) Stale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stale
}

func (e *Editor) closeSurfaceLocked() {
	e.editingIndex = nil
	e.buffer = nil
}

func (e *Editor) settleLocked() {
	if e.inflight > 0 {
		e.state = StatePersisting
		return
	}
	e.state = StateReady
}

func (e *Editor) dispatchLocked(ctx context.Context) {
	e.dispatched++
	seq := e.dispatched
	items := model.CloneItems(e.items)
	expected := e.version
	var lookup *versionLookup
	lead := false
	if expected == 0 && e.loadFailed {
		if e.lookup == nil {
			e.lookup = &versionLookup{done: make(chan struct{})}
			lead = true
		}
		lookup = e.lookup
	}
	e.dirty = false
	e.inflight++
	e.state = StatePersisting
	e.wg.Add(1)

	go e.persist(context.WithoutCancel(ctx), seq, items, expected, lookup, lead)
}

// versionLookup is the one fetch shared by every save dispatched after a failed Load.
type versionLookup struct {
	done    chan struct{}
	version int64
}

func (e *Editor) lookUpVersion(ctx context.Context, l *versionLookup) {
	defer close(l.done)
	snap, err := e.gw.Fetch(ctx, e.parentID, e.key)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lookup == l {
		e.lookup = nil
	}
	if err != nil {
		e.log.Warnf("Version lookup failed, saving unconditionally: %v", err)
		return
	}
	l.version = snap.Version
	if snap.Version > e.version {
		e.version = snap.Version
	}
	e.loadFailed = false
}

// persist sends one list. A save dispatched before the editor ever learned a version
// waits for the shared lookup, so even those saves pass the version check.
func (e *Editor) persist(ctx context.Context, seq uint64, items []model.CollectionItem, expected int64, lookup *versionLookup, lead bool) {
	defer e.wg.Done()

	if lookup != nil {
		if lead {
			e.lookUpVersion(ctx, lookup)
		} else {
			<-lookup.done
		}
		expected = lookup.version
	}

	res, err := e.gw.Save(ctx, gateway.SaveRequest{ParentID: e.parentID, Key: e.key, Items: items, ExpectedVersion: expected})
	if err != nil && gateway.IsConflict(err) {
		res, err = e.resolveConflict(ctx, seq, items)
	}

	e.mu.Lock()
	e.inflight--
	var notice *Notice
	switch {
	case errors.Is(err, errSuperseded):
		e.log.Debugf("Dropped conflicting save %d; a newer save carries the list", seq)
	case err != nil:
		e.stale = true
		e.log.Warnf("Save %d failed: %v", seq, err)
		notice = &Notice{Kind: NoticeSaveFailed, Message: "changes were not saved", Err: err}
	default:
		if res.Version > e.version {
			e.version = res.Version
		}
		if seq > e.applied {
			e.applied = seq
			e.baseline = items
		}
		if seq == e.dispatched {
			e.stale = false
		}
	}
	e.settleLocked()
	e.mu.Unlock()

	if notice != nil {
		e.emit(*notice)
	}
}

var errSuperseded = errors.New("save superseded by a newer one")

// resolveConflict re-fetches the current version and re-sends items once, but only while
// they are still the newest dispatched list.
func (e *Editor) resolveConflict(ctx context.Context, seq uint64, items []model.CollectionItem) (*gateway.SaveResult, error) {
	e.mu.Lock()
	newest := seq == e.dispatched
	e.mu.Unlock()
	if !newest {
		return nil, errSuperseded
	}

	snap, err := e.gw.Fetch(ctx, e.parentID, e.key)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if seq != e.dispatched {
		e.mu.Unlock()
		return nil, errSuperseded
	}
	if snap.Version > e.version {
		e.version = snap.Version
	}
	e.mu.Unlock()

	res, err := e.gw.Save(ctx, gateway.SaveRequest{ParentID: e.parentID, Key: e.key, Items: items, ExpectedVersion: snap.Version})
	if err == nil {
		e.emit(Notice{Kind: NoticeReapplied, Message: fmt.Sprintf("saved over a concurrent change (version %d)", snap.Version)})
	}
	return res, err
}

func (e *Editor) emit(n Notice) {
	if e.notify != nil {
		e.notify(n)
	}
}
