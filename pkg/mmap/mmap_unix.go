//go:build linux || darwin

package mmap

import "syscall"

// mapFile maps the first size bytes of fd read-only. Private mappings keep
// later writes to the file by other processes out of the decoded view.
func mapFile(fd uintptr, size int) ([]byte, error) {
	return syscall.Mmap(int(fd), 0, size, syscall.PROT_READ, syscall.MAP_PRIVATE)
}

func unmapFile(data []byte) error {
	return syscall.Munmap(data)
}
