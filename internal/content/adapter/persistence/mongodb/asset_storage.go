package mongodb

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/domain/repository"
	apperrors "showcase-cms/internal/shared/errors"
	"showcase-cms/internal/shared/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var _ repository.AssetStorage = (*GridFSAssetStorage)(nil)

// BucketInterface is the part of *gridfs.Bucket the asset storage uses.
type BucketInterface interface {
	UploadFromStreamWithID(fileID interface{}, filename string, source io.Reader, opts ...*options.UploadOptions) error
	OpenDownloadStream(fileID interface{}) (DownloadStreamInterface, error)
}

// DownloadStreamInterface is an open GridFS file.
type DownloadStreamInterface interface {
	io.ReadCloser
	GetFile() *gridfs.File
}

type gridFSBucketAdapter struct {
	bucket *gridfs.Bucket
}

func (b *gridFSBucketAdapter) UploadFromStreamWithID(fileID interface{}, filename string, source io.Reader, opts ...*options.UploadOptions) error {
	return b.bucket.UploadFromStreamWithID(fileID, filename, source, opts...)
}

func (b *gridFSBucketAdapter) OpenDownloadStream(fileID interface{}) (DownloadStreamInterface, error) {
	stream, err := b.bucket.OpenDownloadStream(fileID)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// GridFSAssetStorage keeps uploaded assets in a GridFS bucket under UUID ids.
type GridFSAssetStorage struct {
	bucket BucketInterface
	logger logger.Logger
	newID  func() string
	now    func() time.Time
}

// NewGridFSAssetStorage opens the named bucket in db.
func NewGridFSAssetStorage(db *mongo.Database, bucketName string, log logger.Logger) (*GridFSAssetStorage, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, apperrors.NewInfrastructureError("failed to open asset bucket").WithCause(err).WithComponent("asset_storage")
	}
	return NewGridFSAssetStorageWithBucket(&gridFSBucketAdapter{bucket: bucket}, log), nil
}

// NewGridFSAssetStorageWithBucket is used by tests to inject a fake bucket.
func NewGridFSAssetStorageWithBucket(bucket BucketInterface, log logger.Logger) *GridFSAssetStorage {
	return &GridFSAssetStorage{bucket: bucket, logger: log, newID: uuid.NewString, now: time.Now}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *GridFSAssetStorage) Upload(ctx context.Context, fileName, contentType string, r io.Reader) (*model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := s.newID()
	name := path.Base(fileName)
	counter := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if err := s.bucket.UploadFromStreamWithID(id, name, counter, opts); err != nil {
		s.logger.Error("Failed to upload asset", zap.String("fileName", name), zap.Error(err))
		return nil, apperrors.NewInfrastructureError("failed to upload asset").WithCause(err).WithComponent("asset_storage")
	}
	s.logger.Debug("Asset uploaded", zap.String("assetId", id), zap.Int64("size", counter.n))
	return &model.Asset{
		ID:          id,
		FileName:    name,
		ContentType: contentType,
		Size:        counter.n,
		UploadedAt:  s.now().UTC(),
	}, nil
}

func (s *GridFSAssetStorage) Open(ctx context.Context, id string) (*model.Asset, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, model.ErrAssetNotFound
		}
		return nil, nil, apperrors.NewInfrastructureError("failed to open asset").WithCause(err).WithComponent("asset_storage")
	}
	file := stream.GetFile()
	asset := &model.Asset{
		ID:          id,
		FileName:    file.Name,
		Size:        file.Length,
		UploadedAt:  file.UploadDate,
		ContentType: "application/octet-stream",
	}
	var meta struct {
		ContentType string `bson:"contentType"`
	}
	if len(file.Metadata) > 0 && bson.Unmarshal(file.Metadata, &meta) == nil && meta.ContentType != "" {
		asset.ContentType = meta.ContentType
	}
	return asset, stream, nil
}
