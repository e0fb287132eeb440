// Package fileio provides a memory-mapped file reader for loading save
// files without copying them into the Go heap up front.
package fileio

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedFile is a read-only view of a file on disk, backed by a memory
// mapping when the underlying file supports one.
type MappedFile struct {
	f        *os.File
	data     mmap.MMap // nil when read falls back to a plain in-memory copy
	fallback []byte
}

// Open memory-maps the file at path for reading. Not every file descriptor
// can be mapped — a pipe or other non-regular file fails mmap.Map with
// EINVAL — so Open falls back to a plain os.ReadFile in that case rather
// than failing outright.
func Open(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		contents, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, readErr
		}
		return &MappedFile{fallback: contents}, nil
	}
	return &MappedFile{f: f, data: data}, nil
}

// Bytes returns the file contents. The slice is only valid until Close is
// called, unless Open fell back to os.ReadFile.
func (m *MappedFile) Bytes() []byte {
	if m.data != nil {
		return m.data
	}
	return m.fallback
}

// Close unmaps the file and closes its descriptor, or is a no-op when Open
// fell back to a plain read.
func (m *MappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	unmapErr := m.data.Unmap()
	closeErr := m.f.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
