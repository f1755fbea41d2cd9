// Package store persists a built index as a single versioned blob: a binary
// header (magic, format version, counts, corpus fingerprint), a JSON-encoded
// payload holding the five index structures, and a CRC32 footer. The blob is
// opaque; a round trip must reconstruct query behaviour exactly.
//
// The store never checks whether a blob still matches the corpus on disk.
// Staleness detection via the recorded fingerprint and document count is the
// caller's responsibility.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/pressindex/pressindex/internal/index"
	pkgerrors "github.com/pressindex/pressindex/pkg/errors"
)

// MagicBytes identifies a valid .pxix index blob.
const (
	MagicBytes    uint32 = 0x50584958
	FormatVersion uint32 = 1
	HeaderSize    int    = 40
	FooterSize    int    = 4
)

// Artifacts is everything the query engine needs from a build: the inverted
// index, IDF table, document vectors, norms, and document count, plus the
// corpus fingerprint recorded for the caller's staleness checks.
type Artifacts struct {
	Postings    map[string][]index.Posting `json:"postings"`
	IDF         map[string]float64         `json:"idf"`
	Vectors     map[int]map[string]float64 `json:"vectors"`
	Norms       map[int]float64            `json:"norms"`
	N           int                        `json:"n"`
	Fingerprint uint64                     `json:"-"`
}

// Save writes the artifacts to path as one blob. It writes to a .tmp file
// first and renames on success so readers never observe a partial blob.
func Save(path string, a *Artifacts) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding index payload: %w", err)
	}

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(a.N))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(a.Postings)))
	binary.LittleEndian.PutUint64(header[16:24], uint64(time.Now().Unix()))
	binary.LittleEndian.PutUint64(header[24:32], a.Fingerprint)
	binary.LittleEndian.PutUint64(header[32:40], uint64(len(payload)))

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer, crc32.ChecksumIEEE(payload))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	defer f.Close()

	for _, chunk := range [][]byte{header, payload, footer} {
		if _, err := f.Write(chunk); err != nil {
			return fmt.Errorf("writing index blob: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing index blob: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming index blob: %w", err)
	}
	return nil
}

// Meta describes a blob's header without decoding the payload.
type Meta struct {
	N           int
	Terms       int
	CreatedAt   time.Time
	Fingerprint uint64
}

// Load reads and validates the blob at path. A bad magic, unsupported
// version, size mismatch, checksum mismatch, or undecodable payload all
// fail with ErrDeserialization; the caller must rebuild.
func Load(path string) (*Artifacts, *Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading index blob %s: %w", path, err)
	}
	if len(data) < HeaderSize+FooterSize {
		return nil, nil, fmt.Errorf("%w: blob truncated (%d bytes)", pkgerrors.ErrDeserialization, len(data))
	}

	header := data[:HeaderSize]
	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != MagicBytes {
		return nil, nil, fmt.Errorf("%w: bad magic bytes %x", pkgerrors.ErrDeserialization, magic)
	}
	version := binary.LittleEndian.Uint32(header[4:8])
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: unsupported format version %d", pkgerrors.ErrDeserialization, version)
	}
	meta := &Meta{
		N:           int(binary.LittleEndian.Uint32(header[8:12])),
		Terms:       int(binary.LittleEndian.Uint32(header[12:16])),
		CreatedAt:   time.Unix(int64(binary.LittleEndian.Uint64(header[16:24])), 0),
		Fingerprint: binary.LittleEndian.Uint64(header[24:32]),
	}
	payloadSize := binary.LittleEndian.Uint64(header[32:40])
	if uint64(len(data)) != uint64(HeaderSize+FooterSize)+payloadSize {
		return nil, nil, fmt.Errorf("%w: blob size %d does not match header payload size %d",
			pkgerrors.ErrDeserialization, len(data), payloadSize)
	}

	payload := data[HeaderSize : HeaderSize+int(payloadSize)]
	footer := data[len(data)-FooterSize:]
	if crc32.ChecksumIEEE(payload) != binary.LittleEndian.Uint32(footer) {
		return nil, nil, fmt.Errorf("%w: payload checksum mismatch", pkgerrors.ErrDeserialization)
	}

	var a Artifacts
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding payload: %v", pkgerrors.ErrDeserialization, err)
	}
	a.Fingerprint = meta.Fingerprint
	return &a, meta, nil
}
