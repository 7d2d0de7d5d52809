package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LocalFileStore writes media under a local directory and serves references
// through urlPrefix. Meant for development runs without an S3 bucket.
type LocalFileStore struct {
	dir       string
	urlPrefix string
}

func NewLocalFileStore(dir, urlPrefix string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalFileStore{dir: dir, urlPrefix: urlPrefix}, nil
}

func (s *LocalFileStore) Store(r io.Reader, fileName string) (string, error) {
	key := uuid.New().String() + filepath.Ext(fileName)
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", errors.Wrap(err, "fail to create media file "+key)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "fail to write media file "+key)
	}
	return s.urlPrefix + key, nil
}
