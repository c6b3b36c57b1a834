//go:build windows

// ABOUTME: Fallback for platforms without golang.org/x/sys/unix's Mmap: reads
// ABOUTME: the whole file into memory instead of mapping it.

package file

import "os"

type mmapFile struct {
	data []byte
}

func openMmap(path string) (*mmapFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &mmapFile{data: data}, nil
}

func (m *mmapFile) bytes() []byte { return m.data }

func (m *mmapFile) close() error { return nil }
