//go:build !linux

package mmap

func adviseSequential([]byte) error { return nil }
