package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hupe1980/holograph/hypervector"
)

// bodyWriter appends little-endian values to an in-memory body.
type bodyWriter struct {
	buf     *bytes.Buffer
	w       *ChecksumWriter
	scratch [8]byte
}

func newBodyWriter() *bodyWriter {
	buf := &bytes.Buffer{}
	return &bodyWriter{buf: buf, w: NewChecksumWriter(buf)}
}

func (bw *bodyWriter) write(p []byte) {
	// bytes.Buffer writes never fail.
	_, _ = bw.w.Write(p)
}

func (bw *bodyWriter) u8(v uint8) {
	bw.scratch[0] = v
	bw.write(bw.scratch[:1])
}

func (bw *bodyWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(bw.scratch[:4], v)
	bw.write(bw.scratch[:4])
}

func (bw *bodyWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(bw.scratch[:8], v)
	bw.write(bw.scratch[:8])
}

func (bw *bodyWriter) f64(v float64) {
	bw.u64(math.Float64bits(v))
}

func (bw *bodyWriter) bytes32(p []byte) {
	bw.u32(uint32(len(p)))
	bw.write(p)
}

func (bw *bodyWriter) vector(v *hypervector.Vector) {
	for _, w := range v {
		bw.u64(w)
	}
}

// bodyReader decodes a body with sticky errors: after the first failure
// every read returns zero values and err reports the failure.
type bodyReader struct {
	data []byte
	off  int
	err  error
}

func (br *bodyReader) take(n int, what string) []byte {
	if br.err != nil {
		return nil
	}
	if n < 0 || len(br.data)-br.off < n {
		br.err = fmt.Errorf("%w: truncated %s at offset %d", ErrCorrupt, what, br.off)
		return nil
	}
	p := br.data[br.off : br.off+n]
	br.off += n
	return p
}

func (br *bodyReader) u8(what string) uint8 {
	if p := br.take(1, what); p != nil {
		return p[0]
	}
	return 0
}

func (br *bodyReader) u32(what string) uint32 {
	if p := br.take(4, what); p != nil {
		return binary.LittleEndian.Uint32(p)
	}
	return 0
}

func (br *bodyReader) u64(what string) uint64 {
	if p := br.take(8, what); p != nil {
		return binary.LittleEndian.Uint64(p)
	}
	return 0
}

func (br *bodyReader) f64(what string) float64 {
	return math.Float64frombits(br.u64(what))
}

func (br *bodyReader) bytes32(what string) []byte {
	n := br.u32(what)
	return br.take(int(n), what)
}

func (br *bodyReader) vector(what string) hypervector.Vector {
	var v hypervector.Vector
	p := br.take(hypervector.Bytes, what)
	if p == nil {
		return v
	}
	if err := v.UnmarshalBinary(p); err != nil {
		br.err = fmt.Errorf("%w: %s: %w", ErrCorrupt, what, err)
	}
	return v
}

func (br *bodyReader) remaining() int {
	return len(br.data) - br.off
}

// readN reads exactly n bytes, growing the buffer in bounded steps so a
// corrupt length cannot force a huge allocation up front.
func readN(r io.Reader, n uint64) ([]byte, error) {
	const step = 4 << 20
	buf := make([]byte, 0, min(n, step))
	for uint64(len(buf)) < n {
		chunk := min(n-uint64(len(buf)), step)
		start := len(buf)
		buf = append(buf, make([]byte, chunk)...)
		if _, err := io.ReadFull(r, buf[start:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// SaveToFile is a helper to save data to a file. The data is written to a
// temporary file in the same directory and renamed over filename, so readers
// never observe a partial file.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024) // 256KB buffer
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}

// LoadFromFile is a helper to load data from a file.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewReaderSize(f, 256*1024) // 256KB buffer
	return readFunc(buf)
}
