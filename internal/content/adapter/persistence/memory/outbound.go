package memory

import (
	"bytes"
	"context"
	"io"
	"path"
	"sync"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"

	"github.com/google/uuid"
)

var (
	_ repository.Notifier     = (*Notifier)(nil)
	_ repository.AssetStorage = (*AssetStorage)(nil)
)

// Notifier records notification requests instead of sending them.
type Notifier struct {
	mu   sync.Mutex
	sent []model.NotificationRequest
	// Err, when set, is returned by Enqueue.
	Err error
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Enqueue(ctx context.Context, req *model.NotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, *req)
	return nil
}

// Sent returns the accepted requests in order.
func (n *Notifier) Sent() []model.NotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.NotificationRequest(nil), n.sent...)
}

type storedAsset struct {
	asset model.Asset
	data  []byte
}

// AssetStorage keeps uploads in memory.
type AssetStorage struct {
	mu     sync.RWMutex
	assets map[string]storedAsset
}

func NewAssetStorage() *AssetStorage {
	return &AssetStorage{assets: make(map[string]storedAsset)}
}

func (s *AssetStorage) Upload(ctx context.Context, fileName, contentType string, r io.Reader) (*model.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	asset := model.Asset{
		ID:          uuid.NewString(),
		FileName:    path.Base(fileName),
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.assets[asset.ID] = storedAsset{asset: asset, data: data}
	s.mu.Unlock()
	return &asset, nil
}

func (s *AssetStorage) Open(ctx context.Context, id string) (*model.Asset, io.ReadCloser, error) {
	s.mu.RLock()
	stored, ok := s.assets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, model.ErrAssetNotFound
	}
	asset := stored.asset
	return &asset, io.NopCloser(bytes.NewReader(stored.data)), nil
}
