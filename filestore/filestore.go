// Package filestore is the media storage collaborator: post images and
// avatars are streamed in and a reference URL comes back. The core only ever
// persists the returned reference, never the bytes.
package filestore

import "io"

type FileStore interface {
	// Store persists the file under a new key derived from fileName and
	// returns the public URL to reference it by.
	Store(r io.Reader, fileName string) (url string, err error)
}

// FakeFileStore returns a deterministic URL without storing anything. Tests
// only.
type FakeFileStore struct{}

func (*FakeFileStore) Store(r io.Reader, fileName string) (string, error) {
	return "fake://" + fileName, nil
}
