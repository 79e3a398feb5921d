//go:build !linux && !darwin

package mmap

import "github.com/ajitpratap0/ipws/pkg/errors"

func mapFile(uintptr, int) ([]byte, error) {
	return nil, errors.New(errors.ErrorTypeFile, "memory mapping not supported on this platform")
}

func unmapFile([]byte) error { return nil }
