package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"showcase-cms/internal/content/adapter/persistence/memory"
	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/shared/eventbus"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published events synchronously.
type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) PublishAndForget(ctx context.Context, event eventbus.Event) {
	_ = p.Publish(ctx, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type())
	}
	return out
}

// MockChangeHistory is a testify mock of repository.ChangeHistory.
type MockChangeHistory struct {
	mock.Mock
}

func (m *MockChangeHistory) Append(ctx context.Context, change *model.CollectionChange) error {
	return m.Called(ctx, change).Error(0)
}

func (m *MockChangeHistory) List(ctx context.Context, parentID string, key model.CollectionKey, limit int64) ([]*model.CollectionChange, error) {
	args := m.Called(ctx, parentID, key, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CollectionChange), args.Error(1)
}

type staticSeeds map[model.CollectionKey][]model.CollectionItem

func (s staticSeeds) Fallback(key model.CollectionKey) []model.CollectionItem {
	return model.CloneItems(s[key])
}

type contentFixture struct {
	uc      ContentUsecase
	repo    *memory.ParentRepository
	history *memory.ChangeHistory
	events  *recordingPublisher
}

func newContentFixture(t *testing.T, seeds staticSeeds) *contentFixture {
	t.Helper()
	f := &contentFixture{
		repo:    memory.NewParentRepository(),
		history: memory.NewChangeHistory(),
		events:  &recordingPublisher{},
	}
	f.uc = NewContentUsecase(ContentDeps{
		Repo:    f.repo,
		History: f.history,
		Events:  f.events,
		Seeds:   seeds,
	})
	return f
}

func (f *contentFixture) createEvent(t *testing.T, id string) *model.ParentDocument {
	t.Helper()
	parent := model.NewParentDocument(id, model.ParentEvent, "Summit", time.Now().UTC())
	parent.Published = true
	require.NoError(t, f.repo.Create(context.Background(), parent))
	return parent
}
