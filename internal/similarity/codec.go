package similarity

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// File layout (little-endian):
//
//	magic   [4]byte "BKSM"
//	version uint32
//	n       uint64
//	data    n*n float64 bit patterns, row-major
var magic = [4]byte{'B', 'K', 'S', 'M'}

const formatVersion uint32 = 1

// maxPrealloc caps how many values ReadMatrix reserves up front. The header
// size is not trusted until the data behind it has actually been read.
const maxPrealloc = 1 << 16

// ErrBadFormat is returned when a persisted matrix cannot be decoded.
var ErrBadFormat = errors.New("invalid similarity matrix format")

// WriteTo encodes the matrix. Scores are written as raw IEEE-754 bits so a
// round trip is exact.
func (m *Matrix) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64

	header := make([]byte, 16)
	copy(header[:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(m.n))
	nw, err := bw.Write(header)
	written += int64(nw)
	if err != nil {
		return written, err
	}

	buf := make([]byte, 8)
	for _, v := range m.data {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		nw, err := bw.Write(buf)
		written += int64(nw)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// ReadMatrix decodes a matrix written by WriteTo and validates it.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	br := bufio.NewReader(r)

	header := make([]byte, 16)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadFormat, err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadFormat, header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, v)
	}
	n64 := binary.LittleEndian.Uint64(header[8:16])
	if n64 > math.MaxInt32 {
		return nil, fmt.Errorf("%w: size %d too large", ErrBadFormat, n64)
	}
	n := int(n64)
	total := n * n

	m := &Matrix{n: n, data: make([]float64, 0, min(total, maxPrealloc))}
	buf := make([]byte, 8)
	for i := 0; i < total; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: truncated data at value %d of %d: %v", ErrBadFormat, i, total, err)
		}
		m.data = append(m.data, math.Float64frombits(binary.LittleEndian.Uint64(buf)))
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveFile writes the matrix to path atomically (tmp file + rename).
func (m *Matrix) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile reads a matrix saved with SaveFile.
func LoadFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMatrix(f)
}
