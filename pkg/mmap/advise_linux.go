package mmap

import "syscall"

// adviseSequential tells the kernel the mapping is read front to back
func adviseSequential(data []byte) error {
	return syscall.Madvise(data, syscall.MADV_SEQUENTIAL)
}
