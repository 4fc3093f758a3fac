// Package pack stores many encoded chunks in one container file.
//
// Layout, after the 8-byte magic, a version byte and a compression byte:
//
//	layout u8
//	[cdc: target u32, min u32, max u32]
//	blobs u32, then per blob: len u32, xxhash64 u64, bytes
//	entries u32, then per entry: nameLen u16, name, rawLen u32, refs u32, refs × blob index u32
//
// Everything after the compression byte is compressed as a whole.
package pack

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Compression is the codec applied to the content section.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZlib:
		return "zlib"
	case CompZstd:
		return "zstd"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression maps "none", "zlib" and "zstd" to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none", "":
		return CompNone, nil
	case "zlib":
		return CompZlib, nil
	case "zstd":
		return CompZstd, nil
	}
	return 0, fmt.Errorf("pack: unknown compression %q", s)
}

// Layout decides how entry data is split into blobs.
type Layout uint8

const (
	// LayoutWhole stores each distinct payload once as a single blob.
	LayoutWhole Layout = 0
	// LayoutCDC cuts payloads at content-defined boundaries so that shared
	// runs across chunks are stored once.
	LayoutCDC Layout = 1
)

func (l Layout) String() string {
	switch l {
	case LayoutWhole:
		return "whole"
	case LayoutCDC:
		return "cdc"
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "whole", "":
		return LayoutWhole, nil
	case "cdc":
		return LayoutCDC, nil
	}
	return 0, fmt.Errorf("pack: unknown layout %q", s)
}

const (
	magic   = "VOXCPACK"
	version = 1

	cdcTarget = 4096
	cdcMin    = 2048
	cdcMax    = 16384
)

var (
	ErrNotPack  = errors.New("pack: not a voxel pack")
	ErrChecksum = errors.New("pack: blob checksum mismatch")
)

// Entry is one named payload, usually an encoded chunk.
type Entry struct {
	Name string
	Data []byte
}

type Pack struct {
	Entries []Entry
}

// Add appends a named payload.
func (p *Pack) Add(name string, data []byte) {
	p.Entries = append(p.Entries, Entry{Name: name, Data: data})
}

// Find returns the first entry called name.
func (p *Pack) Find(name string) (Entry, bool) {
	for _, e := range p.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Marshal encodes the pack with the given layout and compression.
func (p *Pack) Marshal(layout Layout, comp Compression) ([]byte, error) {
	var blobs [][]byte
	var refs [][]int
	switch layout {
	case LayoutWhole:
		blobs, refs = buildIndex(p.Entries, wholeCuts)
	case LayoutCDC:
		blobs, refs = buildIndex(p.Entries, newChunker(cdcTarget, cdcMin, cdcMax).cuts)
	default:
		return nil, fmt.Errorf("pack: unsupported layout %d", layout)
	}

	var content bytes.Buffer
	_ = binary.Write(&content, binary.LittleEndian, uint8(layout))
	if layout == LayoutCDC {
		_ = binary.Write(&content, binary.LittleEndian, [3]uint32{cdcTarget, cdcMin, cdcMax})
	}
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(blobs)))
	for _, b := range blobs {
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(b)))
		_ = binary.Write(&content, binary.LittleEndian, xxhash.Sum64(b))
		_, _ = content.Write(b)
	}
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))
	for i, e := range p.Entries {
		nb := []byte(e.Name)
		if len(nb) > 0xFFFF {
			return nil, fmt.Errorf("pack: entry name too long: %.32s...", e.Name)
		}
		_ = binary.Write(&content, binary.LittleEndian, uint16(len(nb)))
		_, _ = content.Write(nb)
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(e.Data)))
		_ = binary.Write(&content, binary.LittleEndian, uint32(len(refs[i])))
		for _, idx := range refs[i] {
			_ = binary.Write(&content, binary.LittleEndian, uint32(idx))
		}
	}

	compressed, err := compress(content.Bytes(), comp)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	out.WriteString(magic)
	out.WriteByte(version)
	out.WriteByte(byte(comp))
	out.Write(compressed)
	return out.Bytes(), nil
}

func compress(data []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompNone:
		return data, nil
	case CompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	}
	return nil, fmt.Errorf("pack: unsupported compression %d", comp)
}

func decompress(data []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompNone:
		return data, nil
	case CompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	}
	return nil, fmt.Errorf("pack: unsupported compression %d", comp)
}

// Unmarshal parses a pack and verifies every blob checksum. It also returns
// the compression the pack was written with.
func Unmarshal(data []byte) (*Pack, Compression, error) {
	if len(data) < len(magic)+2 || string(data[:len(magic)]) != magic {
		return nil, 0, ErrNotPack
	}
	if v := data[len(magic)]; v != version {
		return nil, 0, fmt.Errorf("pack: unsupported version %d", v)
	}
	comp := Compression(data[len(magic)+1])
	content, err := decompress(data[len(magic)+2:], comp)
	if err != nil {
		return nil, 0, fmt.Errorf("pack: decompress %s: %w", comp, err)
	}

	r := bytes.NewReader(content)
	var layout uint8
	if err := binary.Read(r, binary.LittleEndian, &layout); err != nil {
		return nil, 0, err
	}
	switch Layout(layout) {
	case LayoutWhole:
	case LayoutCDC:
		var params [3]uint32
		if err := binary.Read(r, binary.LittleEndian, &params); err != nil {
			return nil, 0, err
		}
	default:
		return nil, 0, fmt.Errorf("pack: unknown layout %d", layout)
	}

	var nBlobs uint32
	if err := binary.Read(r, binary.LittleEndian, &nBlobs); err != nil {
		return nil, 0, err
	}
	if int64(nBlobs) > int64(r.Len()) {
		return nil, 0, fmt.Errorf("pack: blob count %d exceeds content", nBlobs)
	}
	blobs := make([][]byte, nBlobs)
	for i := range blobs {
		var blen uint32
		var sum uint64
		if err := binary.Read(r, binary.LittleEndian, &blen); err != nil {
			return nil, 0, err
		}
		if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
			return nil, 0, err
		}
		if int64(blen) > int64(r.Len()) {
			return nil, 0, io.ErrUnexpectedEOF
		}
		b := make([]byte, blen)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, 0, err
		}
		if xxhash.Sum64(b) != sum {
			return nil, 0, fmt.Errorf("%w: blob %d", ErrChecksum, i)
		}
		blobs[i] = b
	}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, 0, err
	}
	if int64(n) > int64(r.Len()) {
		return nil, 0, fmt.Errorf("pack: entry count %d exceeds content", n)
	}
	p := &Pack{Entries: make([]Entry, n)}
	for i := range p.Entries {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, 0, err
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, 0, err
		}
		var rawLen, seqLen uint32
		if err := binary.Read(r, binary.LittleEndian, &rawLen); err != nil {
			return nil, 0, err
		}
		if err := binary.Read(r, binary.LittleEndian, &seqLen); err != nil {
			return nil, 0, err
		}
		if int64(seqLen)*4 > int64(r.Len()) {
			return nil, 0, io.ErrUnexpectedEOF
		}
		seq := make([]uint32, seqLen)
		if err := binary.Read(r, binary.LittleEndian, seq); err != nil {
			return nil, 0, err
		}
		var total int64
		for _, idx := range seq {
			if idx >= nBlobs {
				return nil, 0, fmt.Errorf("pack: entry %q references blob %d of %d", name, idx, nBlobs)
			}
			total += int64(len(blobs[idx]))
		}
		if total != int64(rawLen) {
			return nil, 0, fmt.Errorf("pack: entry %q is %d bytes, header says %d", name, total, rawLen)
		}
		var payload []byte
		if rawLen > 0 {
			payload = make([]byte, 0, rawLen)
			for _, idx := range seq {
				payload = append(payload, blobs[idx]...)
			}
		}
		p.Entries[i] = Entry{Name: string(name), Data: payload}
	}
	return p, comp, nil
}

// cutFunc returns the end offsets of the pieces data is stored as.
type cutFunc func(data []byte) []int

func wholeCuts(data []byte) []int { return []int{len(data)} }

// buildIndex stores every piece produced by cut once and returns, per entry,
// the piece indices that rebuild its data. Empty entries reference nothing.
func buildIndex(entries []Entry, cut cutFunc) ([][]byte, [][]int) {
	var blobs [][]byte
	seen := make(map[uint64]int, len(entries))
	refs := make([][]int, len(entries))
	for i, e := range entries {
		if len(e.Data) == 0 {
			continue
		}
		start := 0
		for _, end := range cut(e.Data) {
			refs[i] = append(refs[i], addBlob(&blobs, seen, e.Data[start:end]))
			start = end
		}
	}
	return blobs, refs
}

func addBlob(blobs *[][]byte, seen map[uint64]int, b []byte) int {
	h := xxhash.Sum64(b)
	if idx, ok := seen[h]; ok && bytes.Equal((*blobs)[idx], b) {
		return idx
	}
	idx := len(*blobs)
	*blobs = append(*blobs, bytes.Clone(b))
	seen[h] = idx
	return idx
}
