// Package mmap maps input files into memory so large BAM, CRAM and BCF
// files reach the format drivers without being copied.
package mmap

import (
	"os"

	"github.com/ajitpratap0/biostruct/pkg/errors"
)

// File is a read-only view of a file's contents.
type File struct {
	file   *os.File
	data   []byte
	mapped bool
}

// Open maps filename read-only. Empty files, and platforms without mmap,
// are read into memory instead.
func Open(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to open %s", filename)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to stat %s", filename)
	}
	if stat.Size() == 0 {
		file.Close()
		return &File{data: []byte{}}, nil
	}

	data, err := mmap(int(file.Fd()), 0, int(stat.Size()), ProtRead, MapShared)
	if err != nil {
		file.Close()
		return readFile(filename)
	}
	// The drivers read front to back.
	_ = madvise(data, MadvSequential)

	return &File{file: file, data: data, mapped: true}, nil
}

func readFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to read %s", filename)
	}
	return &File{data: data}, nil
}

// Bytes returns the file contents. The slice is only valid until Close.
func (f *File) Bytes() []byte {
	return f.data
}

// Mapped reports whether the contents are memory mapped.
func (f *File) Mapped() bool {
	return f.mapped
}

// Close unmaps the file and closes it
func (f *File) Close() error {
	var err error
	if f.mapped && f.data != nil {
		err = munmap(f.data)
	}
	f.data = nil
	f.mapped = false

	if f.file != nil {
		if closeErr := f.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		f.file = nil
	}
	return err
}
