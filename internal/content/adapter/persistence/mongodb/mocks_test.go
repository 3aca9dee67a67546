package mongodb

import (
	"bytes"
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeSingleResult decodes a stored document through a BSON round trip.
type fakeSingleResult struct {
	doc interface{}
	err error
}

func (r *fakeSingleResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	raw, err := bson.Marshal(r.doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

type fakeCursor struct {
	docs []interface{}
}

func (c *fakeCursor) All(ctx context.Context, results interface{}) error {
	raw, err := bson.Marshal(bson.M{"v": c.docs})
	if err != nil {
		return err
	}
	var holder bson.Raw = raw
	return holder.Lookup("v").Unmarshal(results)
}

func (c *fakeCursor) Close(ctx context.Context) error { return nil }

// fakeCollection records the last call of each kind and returns canned results.
type fakeCollection struct {
	insertErr error
	findOne   *fakeSingleResult
	findDocs  []interface{}
	update    *fakeSingleResult
	count     int64

	lastFilter interface{}
	lastUpdate interface{}
	lastOpts   []*options.FindOptions
	inserted   []interface{}
}

var _ CollectionInterface = (*fakeCollection)(nil)

func (f *fakeCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return f.count, nil
}

func (f *fakeCollection) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, doc)
	return nil, nil
}

func (f *fakeCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) SingleResultInterface {
	f.lastFilter = filter
	if f.findOne == nil {
		return &fakeSingleResult{err: mongo.ErrNoDocuments}
	}
	return f.findOne
}

func (f *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CursorInterface, error) {
	f.lastFilter = filter
	f.lastOpts = opts
	return &fakeCursor{docs: f.findDocs}, nil
}

func (f *fakeCollection) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) SingleResultInterface {
	f.lastFilter = filter
	f.lastUpdate = update
	if f.update == nil {
		return &fakeSingleResult{err: mongo.ErrNoDocuments}
	}
	return f.update
}

type fakeStream struct {
	*bytes.Reader
	file *gridfs.File
}

func (s *fakeStream) Close() error          { return nil }
func (s *fakeStream) GetFile() *gridfs.File { return s.file }

// fakeBucket keeps uploads in memory.
type fakeBucket struct {
	files map[interface{}]*gridfs.File
	data  map[interface{}][]byte
	err   error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{files: map[interface{}]*gridfs.File{}, data: map[interface{}][]byte{}}
}

func (b *fakeBucket) UploadFromStreamWithID(fileID interface{}, filename string, source io.Reader, opts ...*options.UploadOptions) error {
	if b.err != nil {
		return b.err
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return err
	}
	var meta bson.Raw
	if len(opts) > 0 && opts[0].Metadata != nil {
		meta, _ = bson.Marshal(opts[0].Metadata)
	}
	b.files[fileID] = &gridfs.File{ID: fileID, Name: filename, Length: int64(len(data)), Metadata: meta}
	b.data[fileID] = data
	return nil
}

func (b *fakeBucket) OpenDownloadStream(fileID interface{}) (DownloadStreamInterface, error) {
	file, ok := b.files[fileID]
	if !ok {
		return nil, gridfs.ErrFileNotFound
	}
	return &fakeStream{Reader: bytes.NewReader(b.data[fileID]), file: file}, nil
}
