package compression

import (
	"bufio"
	"io"
	"os"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

const fileBufferSize = 256 * 1024

// OpenFile opens path for buffered reading, decompressing according to its
// extension. Close releases the decoder and the file.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "open file").WithDetail("path", path)
	}

	r, err := NewReader(bufio.NewReaderSize(f, fileBufferSize), Detect(path))
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "open compressed stream").WithDetail("path", path)
	}
	return &fileReader{ReadCloser: r, file: f}, nil
}

// CreateFile creates path for buffered writing, compressing according to its
// extension. Close flushes every layer and reports the first failure.
func CreateFile(path string, level Level) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "create file").WithDetail("path", path)
	}

	buf := bufio.NewWriterSize(f, fileBufferSize)
	w, err := NewWriter(buf, Detect(path), level)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileWriter{WriteCloser: w, buf: buf, file: f, path: path}, nil
}

type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

type fileWriter struct {
	io.WriteCloser
	buf  *bufio.Writer
	file *os.File
	path string
}

func (w *fileWriter) Close() error {
	err := w.WriteCloser.Close()
	if err == nil {
		err = w.buf.Flush()
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "close file").WithDetail("path", w.path)
	}
	return nil
}
