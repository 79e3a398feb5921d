// Package mmap provides read-only memory-mapped file access for decoding
// large uncompressed binary inputs without copying them into the heap.
package mmap

import (
	"os"
	"sync"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Reader is a read-only memory mapping of a whole file
type Reader struct {
	file     *os.File
	data     []byte
	fileSize int64

	mu sync.RWMutex
}

// Open memory-maps path. An empty file yields an empty mapping.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "open file").WithDetail("path", path)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "stat file").WithDetail("path", path)
	}

	fileSize := stat.Size()
	if fileSize == 0 {
		return &Reader{file: file}, nil
	}

	data, err := mapFile(file.Fd(), int(fileSize))
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "mmap file").WithDetail("path", path)
	}

	// Advisory only; decoding is a single forward pass.
	_ = adviseSequential(data)

	return &Reader{
		file:     file,
		data:     data,
		fileSize: fileSize,
	}, nil
}

// Bytes returns the mapped contents. The slice is valid until Close.
func (r *Reader) Bytes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Size returns the mapped file size
func (r *Reader) Size() int64 {
	return r.fileSize
}

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error

	if r.data != nil {
		err = unmapFile(r.data)
		r.data = nil
	}

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "unmap file")
	}
	return nil
}
