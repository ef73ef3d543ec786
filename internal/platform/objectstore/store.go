package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

var ErrNotFound = errors.New("objectstore: object not found")

// Store is a thin wrapper over a gocloud bucket.
type Store struct {
	bucket *blob.Bucket
}

// Open opens a bucket by URL, e.g. "file:///var/lib/bookreview/photos" or "mem://".
func Open(ctx context.Context, url string) (*Store, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open bucket %q: %w", url, err)
	}
	return &Store{bucket: b}, nil
}

func New(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

func (s *Store) Put(ctx context.Context, key, contentType string, data []byte) error {
	if err := s.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Get opens the object for reading. The caller closes it.
func (s *Store) Get(ctx context.Context, key string) (*Object, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return &Object{
		ReadCloser:  r,
		ContentType: r.ContentType(),
		Size:        r.Size(),
		ModTime:     r.ModTime(),
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.bucket.Close()
}
