//go:build !linux && !darwin
// +build !linux,!darwin

package mmap

import (
	"github.com/ajitpratap0/biostruct/pkg/errors"
)

var errUnsupported = errors.New(errors.ErrorTypeUnsupported, "mmap is not available on this platform")

func mmap(fd int, offset int64, length int, prot int, flags int) ([]byte, error) {
	return nil, errUnsupported
}

func munmap(b []byte) error {
	return errUnsupported
}

func madvise(b []byte, advice int) error {
	return errUnsupported
}

const (
	ProtRead       = 0
	MapShared      = 0
	MadvSequential = 0
)
