// Package xcodec implements the canonical binary encoding used to produce
// content hashes throughout the ledger core. Every value that feeds a
// Blake3 hash is serialized through this package so that two equal values
// always produce byte-identical output: fixed field order, map keys sorted
// ascending by their encoded bytes, and explicit presence bytes for
// optional fields. This is deliberately not JSON or protobuf: neither
// gives the byte-for-byte control over field order and key sorting that
// the hash-stability invariants require.
package xcodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
)

// Writer accumulates a canonical encoding. The zero value is ready to use.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Uint64 writes v as a fixed-width big-endian uint64.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// Bool writes v as a single byte, 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// BytesField writes b length-prefixed by a big-endian uint64 length.
func (w *Writer) BytesField(b []byte) {
	w.Uint64(uint64(len(b)))
	w.buf.Write(b)
}

// String writes s length-prefixed, identically to BytesField.
func (w *Writer) String(s string) {
	w.BytesField([]byte(s))
}

// Optional writes the 0/1 presence prefix required for optional fields,
// invoking write only when present is true.
func (w *Writer) Optional(present bool, write func()) {
	w.Bool(present)
	if present {
		write()
	}
}

// KV is a single key/value pair destined for SortedMap.
type KV struct {
	Key   []byte
	Write func(*Writer)
}

// SortedMap writes a length prefix followed by entries sorted ascending by
// Key, each as a length-prefixed key followed by the caller-supplied value
// encoding. Sorting by encoded key bytes, rather than by insertion order or
// map iteration order, is what gives the resulting hash its determinism.
func (w *Writer) SortedMap(entries []KV) {
	sorted := make([]KV, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Key, sorted[j].Key) < 0
	})
	w.Uint64(uint64(len(sorted)))
	for _, e := range sorted {
		w.BytesField(e.Key)
		e.Write(w)
	}
}

// Reader consumes a canonical encoding produced by Writer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// ErrTruncated is returned when the underlying buffer runs out before a
// field can be fully read.
var ErrTruncated = fmt.Errorf("xcodec: truncated input")

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint64 reads a fixed-width big-endian uint64.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Bool reads a single presence/boolean byte.
func (r *Reader) Bool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// BytesField reads a length-prefixed byte slice, returning a copy.
func (r *Reader) BytesField() ([]byte, error) {
	n, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// String reads a length-prefixed string.
func (r *Reader) String() (string, error) {
	b, err := r.BytesField()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Optional reads the presence byte and, if set, invokes read.
func (r *Reader) Optional(read func() error) (bool, error) {
	present, err := r.Bool()
	if err != nil {
		return false, err
	}
	if present {
		if err := read(); err != nil {
			return false, err
		}
	}
	return present, nil
}

// MapLen reads the entry count written by SortedMap.
func (r *Reader) MapLen() (uint64, error) { return r.Uint64() }

// Remaining reports whether unread bytes remain.
func (r *Reader) Remaining() bool { return r.pos < len(r.buf) }
