//go:build !windows

// ABOUTME: mmapFile memory-maps a regular file read-only on unix platforms,
// ABOUTME: backing Mapped ingestion's single sweep-and-index pass (§4.2).

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

type mmapFile struct {
	data []byte
}

func openMmap(path string) (*mmapFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(info.Size())
	if size == 0 {
		return &mmapFile{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &mmapFile{data: data}, nil
}

func (m *mmapFile) bytes() []byte { return m.data }

func (m *mmapFile) close() error {
	if m.data == nil {
		return nil
	}
	return unix.Munmap(m.data)
}
