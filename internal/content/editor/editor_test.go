package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/gateway"
	apperrors "showcase-cms/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory store with compare-and-swap saves.
type fakeGateway struct {
	mu       sync.Mutex
	items    []model.CollectionItem
	version  int64
	saves    []gateway.SaveRequest
	fetches  int
	fetchErr error
	saveErr  error
	// gate, when set, holds every Save until it can receive.
	gate chan struct{}
}

func newFakeGateway(items []model.CollectionItem) *fakeGateway {
	return &fakeGateway{items: model.CloneItems(items), version: 1}
}

func (g *fakeGateway) Fetch(ctx context.Context, parentID string, key model.CollectionKey) (*model.CollectionSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetches++
	if g.fetchErr != nil {
		return nil, &gateway.FetchFailure{ParentID: parentID, Key: key, Err: g.fetchErr}
	}
	return &model.CollectionSnapshot{ParentID: parentID, Key: key, Items: model.CloneItems(g.items), Version: g.version}, nil
}

func (g *fakeGateway) Save(ctx context.Context, req gateway.SaveRequest) (*gateway.SaveResult, error) {
	if g.gate != nil {
		<-g.gate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves = append(g.saves, req)
	if g.saveErr != nil {
		return nil, &gateway.SaveFailure{ParentID: req.ParentID, Key: req.Key, Err: g.saveErr}
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != g.version {
		return nil, &gateway.SaveFailure{ParentID: req.ParentID, Key: req.Key, Err: model.ErrVersionConflict}
	}
	g.items = model.CloneItems(req.Items)
	g.version++
	return &gateway.SaveResult{Version: g.version}, nil
}

func (g *fakeGateway) snapshot() ([]model.CollectionItem, int64, []gateway.SaveRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.CloneItems(g.items), g.version, append([]gateway.SaveRequest(nil), g.saves...)
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) record(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) kinds() []NoticeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NoticeKind, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	return out
}

func guests(names ...string) []model.CollectionItem {
	items := make([]model.CollectionItem, len(names))
	for i, n := range names {
		items[i] = model.CollectionItem{Name: n, Image: "/images/guests/" + n + ".jpg"}
	}
	return items
}

func loadedEditor(t *testing.T, gw *fakeGateway, opts ...Option) (*Editor, *noticeRecorder) {
	t.Helper()
	rec := &noticeRecorder{}
	opts = append([]Option{WithNoticeFunc(rec.record)}, opts...)
	e := New(gw, "summit", model.KeyGuests, opts...)
	assert.Equal(t, StateIdle, e.State())
	e.Load(context.Background())
	require.Equal(t, StateReady, e.State())
	return e, rec
}

func TestEditor_RemovePersistsExactlyOnce(t *testing.T) {
	gw := newFakeGateway(guests("a", "b", "c", "d", "e"))
	e, rec := loadedEditor(t, gw)

	require.NoError(t, e.Remove(context.Background(), 2))
	e.Wait()

	want := guests("a", "b", "d", "e")
	remote, version, saves := gw.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, want, saves[0].Items)
	assert.Equal(t, int64(1), saves[0].ExpectedVersion)
	assert.Equal(t, want, remote)
	assert.Equal(t, want, e.Items())
	assert.Equal(t, want, e.Baseline())
	assert.Equal(t, version, e.Version())
	assert.Equal(t, StateReady, e.State())
	assert.False(t, e.Busy())
	assert.Empty(t, rec.kinds())
}

func TestEditor_RemoveOutOfRange(t *testing.T) {
	gw := newFakeGateway(guests("a"))
	e, _ := loadedEditor(t, gw)

	assert.ErrorIs(t, e.Remove(context.Background(), 3), model.ErrIndexOutOfRange)
	e.Wait()
	_, _, saves := gw.snapshot()
	assert.Empty(t, saves)
}

func TestEditor_MoveBoundaryDoesNotPersist(t *testing.T) {
	gw := newFakeGateway(guests("a", "b", "c"))
	e, _ := loadedEditor(t, gw)

	assert.False(t, e.Move(context.Background(), 0, Up))
	assert.False(t, e.Move(context.Background(), 2, Down))
	e.Wait()

	_, _, saves := gw.snapshot()
	assert.Empty(t, saves)
	assert.Equal(t, guests("a", "b", "c"), e.Items())
}

func TestEditor_MovePersists(t *testing.T) {
	gw := newFakeGateway(guests("a", "b", "c"))
	e, _ := loadedEditor(t, gw)

	require.True(t, e.Move(context.Background(), 0, Down))
	e.Wait()

	remote, _, saves := gw.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, guests("b", "a", "c"), remote)
}

func TestEditor_DeferredMovesFlushOnSave(t *testing.T) {
	gw := newFakeGateway(guests("a", "b", "c"))
	e, _ := loadedEditor(t, gw, WithPersistOnMove(false))

	require.True(t, e.Move(context.Background(), 2, Up))
	require.True(t, e.Move(context.Background(), 1, Up))
	e.Wait()
	_, _, saves := gw.snapshot()
	assert.Empty(t, saves)
	assert.Equal(t, StateReady, e.State())

	assert.True(t, e.Save(context.Background()))
	e.Wait()
	assert.False(t, e.Save(context.Background()))

	remote, _, saves := gw.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, guests("c", "a", "b"), remote)
}

func TestEditor_CommitValidationKeepsSurfaceOpen(t *testing.T) {
	gw := newFakeGateway(nil)
	e, _ := loadedEditor(t, gw)

	e.BeginAdd()
	require.NoError(t, e.UpdateBuffer(func(item *model.CollectionItem) { item.Name = "Laila Ollapally" }))

	err := e.Commit(context.Background())
	var ve *apperrors.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"image"}, ve.Fields())

	buf, idx, open := e.Editing()
	assert.True(t, open)
	assert.Equal(t, -1, idx)
	assert.Equal(t, "Laila Ollapally", buf.Name)

	e.Wait()
	_, _, saves := gw.snapshot()
	assert.Empty(t, saves)
	assert.Equal(t, StateReady, e.State())
}

func TestEditor_CommitAddAndEdit(t *testing.T) {
	gw := newFakeGateway(guests("a"))
	e, _ := loadedEditor(t, gw)
	ctx := context.Background()

	e.BeginAdd()
	require.NoError(t, e.UpdateBuffer(func(item *model.CollectionItem) {
		item.Name = "b"
		item.Image = "/images/guests/b.jpg"
	}))
	require.NoError(t, e.Commit(ctx))
	_, _, open := e.Editing()
	assert.False(t, open)
	e.Wait()

	require.NoError(t, e.BeginEdit(0))
	require.NoError(t, e.UpdateBuffer(func(item *model.CollectionItem) { item.City = "Chennai" }))
	require.NoError(t, e.Commit(ctx))
	e.Wait()

	remote, version, saves := gw.snapshot()
	assert.Len(t, saves, 2)
	assert.Equal(t, int64(3), version)
	require.Len(t, remote, 2)
	assert.Equal(t, "Chennai", remote[0].City)
	assert.Equal(t, "b", remote[1].Name)
}

func TestEditor_BufferWithoutSurface(t *testing.T) {
	e, _ := loadedEditor(t, newFakeGateway(nil))

	assert.ErrorIs(t, e.UpdateBuffer(func(*model.CollectionItem) {}), ErrNoEditSurface)
	assert.ErrorIs(t, e.Commit(context.Background()), ErrNoEditSurface)
	assert.ErrorIs(t, e.BeginEdit(0), model.ErrIndexOutOfRange)

	e.BeginAdd()
	e.Cancel()
	_, _, open := e.Editing()
	assert.False(t, open)
}

func TestEditor_SaveFailureKeepsOptimisticList(t *testing.T) {
	gw := newFakeGateway(guests("a", "b", "c"))
	e, rec := loadedEditor(t, gw)
	gw.saveErr = errors.New("connection reset")

	require.NoError(t, e.Remove(context.Background(), 0))
	e.Wait()

	assert.Equal(t, guests("b", "c"), e.Items())
	assert.Equal(t, guests("a", "b", "c"), e.Baseline())
	assert.True(t, e.Stale())
	assert.Equal(t, StateReady, e.State())
	assert.Equal(t, []NoticeKind{NoticeSaveFailed}, rec.kinds())

	remote, _, _ := gw.snapshot()
	assert.Equal(t, guests("a", "b", "c"), remote)
}

func TestEditor_LoadFailureFallsBack(t *testing.T) {
	gw := newFakeGateway(nil)
	gw.fetchErr = errors.New("offline")
	fallback := guests("seed-1", "seed-2")

	e, rec := loadedEditor(t, gw, WithFallback(fallback))

	assert.Equal(t, fallback, e.Items())
	assert.Equal(t, int64(0), e.Version())
	assert.Equal(t, []NoticeKind{NoticeFetchFailed}, rec.kinds())
}

func (g *fakeGateway) setFetchErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchErr = err
}

func TestEditor_SaveAfterFailedLoadChecksVersion(t *testing.T) {
	gw := newFakeGateway(guests("a", "b"))
	gw.fetchErr = errors.New("offline")
	e, _ := loadedEditor(t, gw, WithFallback(guests("seed-1", "seed-2")))
	require.Equal(t, int64(0), e.Version())

	gw.setFetchErr(nil)
	_, err := gw.Save(context.Background(), gateway.SaveRequest{Items: guests("a", "b", "c")})
	require.NoError(t, err)

	require.NoError(t, e.Remove(context.Background(), 0))
	e.Wait()

	remote, version, saves := gw.snapshot()
	require.Len(t, saves, 2)
	assert.Equal(t, int64(2), saves[1].ExpectedVersion)
	assert.Equal(t, guests("seed-2"), remote)
	assert.Equal(t, int64(3), version)
	assert.Equal(t, version, e.Version())

	// the version is known now; later saves skip the lookup
	require.NoError(t, e.Remove(context.Background(), 0))
	e.Wait()
	_, _, saves = gw.snapshot()
	require.Len(t, saves, 3)
	assert.Equal(t, int64(3), saves[2].ExpectedVersion)
	assert.Equal(t, 2, gw.fetches)
}

func TestEditor_ReorderedSavesAfterFailedLoadConverge(t *testing.T) {
	for round := 0; round < 20; round++ {
		gw := newFakeGateway(guests("a", "b", "c", "d"))
		gw.fetchErr = errors.New("offline")
		e, _ := loadedEditor(t, gw, WithFallback(guests("a", "b", "c", "d")))
		gw.setFetchErr(nil)
		gw.gate = make(chan struct{})
		ctx := context.Background()

		require.True(t, e.Move(ctx, 0, Down))
		require.True(t, e.Move(ctx, 1, Down))

		// release one save, whichever reaches the store first, then the rest
		gw.gate <- struct{}{}
		require.Eventually(t, func() bool {
			_, _, saves := gw.snapshot()
			return len(saves) == 1
		}, time.Second, time.Millisecond)
		close(gw.gate)
		e.Wait()

		remote, _, saves := gw.snapshot()
		for _, req := range saves {
			assert.NotZero(t, req.ExpectedVersion, "round %d", round)
		}
		assert.Equal(t, guests("b", "c", "a", "d"), remote, "round %d", round)
		assert.Equal(t, remote, e.Items(), "round %d", round)
	}
}

func TestEditor_LoadReconcilesWithFallback(t *testing.T) {
	gw := newFakeGateway([]model.CollectionItem{{Name: "Adv. Sriram Panchu"}})
	fallback := []model.CollectionItem{
		{Name: "Adv. Sriram Panchu", City: "Chennai"},
		{Name: "Laila Ollapally", City: "Bengaluru"},
	}
	e, _ := loadedEditor(t, gw, WithFallback(fallback))

	assert.Equal(t, []model.CollectionItem{
		{Name: "Adv. Sriram Panchu"},
		{Name: "Laila Ollapally", City: "Bengaluru"},
	}, e.Items())
	assert.Equal(t, []model.CollectionItem{{Name: "Adv. Sriram Panchu"}}, e.Baseline())
}

func TestEditor_ConflictReappliesNewestList(t *testing.T) {
	gw := newFakeGateway(guests("a", "b", "c"))
	e, rec := loadedEditor(t, gw)

	// Another editor writes in between.
	_, err := gw.Save(context.Background(), gateway.SaveRequest{Items: guests("x"), ExpectedVersion: 1})
	require.NoError(t, err)

	require.NoError(t, e.Remove(context.Background(), 1))
	e.Wait()

	remote, version, _ := gw.snapshot()
	assert.Equal(t, guests("a", "c"), remote)
	assert.Equal(t, int64(3), version)
	assert.Equal(t, version, e.Version())
	assert.False(t, e.Stale())
	assert.Equal(t, []NoticeKind{NoticeReapplied}, rec.kinds())
}

func TestEditor_ConcurrentMovesConverge(t *testing.T) {
	gw := newFakeGateway(guests("a", "b", "c", "d"))
	e, _ := loadedEditor(t, gw)
	gw.gate = make(chan struct{})
	ctx := context.Background()

	require.True(t, e.Move(ctx, 0, Down))
	require.True(t, e.Move(ctx, 1, Down))
	assert.True(t, e.Busy())
	assert.Equal(t, StatePersisting, e.State())

	close(gw.gate)
	e.Wait()

	remote, _, _ := gw.snapshot()
	assert.Equal(t, guests("b", "c", "a", "d"), e.Items())
	assert.Equal(t, e.Items(), remote)
	assert.False(t, e.Busy())
	assert.Equal(t, StateReady, e.State())
}

func TestEditor_MarkStale(t *testing.T) {
	e, rec := loadedEditor(t, newFakeGateway(guests("a")))

	e.MarkStale(1)
	assert.False(t, e.Stale())

	e.MarkStale(5)
	e.MarkStale(6)
	assert.True(t, e.Stale())
	assert.Equal(t, []NoticeKind{NoticeStaleData}, rec.kinds())
}

func TestEditor_CommitRejectsDuplicateIdentity(t *testing.T) {
	gw := newFakeGateway(nil)
	e, _ := loadedEditor(t, gw)
	ctx := context.Background()

	e.BeginAdd()
	require.NoError(t, e.UpdateBuffer(func(item *model.CollectionItem) {
		item.Name = "Dr. A. Rao"
		item.Image = "/images/guests/rao.jpg"
	}))
	require.NoError(t, e.Commit(ctx))
	e.Wait()

	e.BeginAdd()
	require.NoError(t, e.UpdateBuffer(func(item *model.CollectionItem) {
		item.Name = "Dr A Rao (Chennai)"
		item.Image = "/images/guests/rao-2.jpg"
	}))
	err := e.Commit(ctx)
	var ve *apperrors.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"name"}, ve.Fields())
	_, _, open := e.Editing()
	assert.True(t, open)
	e.Wait()

	remote, _, saves := gw.snapshot()
	assert.Len(t, saves, 1)
	require.Len(t, remote, 1)

	// a reload then an edit keeps every stored record
	e2, _ := loadedEditor(t, gw)
	require.Len(t, e2.Items(), len(remote))
	require.NoError(t, e2.BeginEdit(0))
	require.NoError(t, e2.UpdateBuffer(func(item *model.CollectionItem) { item.City = "Chennai" }))
	require.NoError(t, e2.Commit(ctx))
	e2.Wait()
	remote, _, _ = gw.snapshot()
	require.Len(t, remote, 1)
	assert.Equal(t, "Chennai", remote[0].City)
}

func TestEditor_EditKeepingOwnIdentity(t *testing.T) {
	gw := newFakeGateway(guests("Laila Ollapally", "Arya Rao"))
	e, _ := loadedEditor(t, gw)

	require.NoError(t, e.BeginEdit(0))
	require.NoError(t, e.UpdateBuffer(func(item *model.CollectionItem) { item.Name = "Laila  Ollapally." }))
	require.NoError(t, e.Commit(context.Background()))

	require.NoError(t, e.BeginEdit(1))
	require.NoError(t, e.UpdateBuffer(func(item *model.CollectionItem) { item.Name = "laila ollapally" }))
	assert.True(t, apperrors.IsValidation(e.Commit(context.Background())))
	e.Wait()

	remote, _, saves := gw.snapshot()
	assert.Len(t, saves, 1)
	assert.Equal(t, "Arya Rao", remote[1].Name)
}
