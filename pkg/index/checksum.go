package index

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"hash"
	"io"

	"github.com/grit-vcs/grit/pkg/lockfile"
)

const checksumSize = 20

type checksumReader struct {
	file   io.Reader
	digest hash.Hash
}

func newChecksumReader(file io.Reader) *checksumReader {
	return &checksumReader{file: file, digest: sha1.New()}
}

func (c *checksumReader) read(size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(c.file, data); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	c.digest.Write(data)
	return data, nil
}

func (c *checksumReader) verify() error {
	stored := make([]byte, checksumSize)
	if _, err := io.ReadFull(c.file, stored); err != nil {
		return fmt.Errorf("reading index checksum: %w", err)
	}

	if !bytes.Equal(stored, c.digest.Sum(nil)) {
		return ErrInvalidChecksum
	}
	return nil
}

type checksumWriter struct {
	lock   *lockfile.Lockfile
	digest hash.Hash
}

func newChecksumWriter(lock *lockfile.Lockfile) *checksumWriter {
	return &checksumWriter{lock: lock, digest: sha1.New()}
}

func (c *checksumWriter) write(data []byte) error {
	c.digest.Write(data)
	return c.lock.Write(data)
}

func (c *checksumWriter) writeChecksum() error {
	return c.lock.Write(c.digest.Sum(nil))
}
