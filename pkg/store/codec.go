package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
)

var vectorsMagic = [4]byte{'F', 'I', 'G', 'V'}

const vectorsVersion uint32 = 1

// rawVectors is the decoded content of vectors.bin.
type rawVectors struct {
	n, textDim, imageDim, m int

	titles       []float32
	images       []float32
	chunkOffsets []int
	chunkVecs    []float32
	chunkTexts   []string
}

// encodeVectors writes the raw arrays as: magic, version, N, D_t, D_i, M,
// title rows, image rows, N+1 chunk offsets, chunk rows, then each chunk text
// as a length-prefixed UTF-8 string. Integers are little-endian uint32.
func encodeVectors(v *rawVectors) []byte {
	var buf bytes.Buffer
	buf.Grow(24 + 4*(len(v.titles)+len(v.images)+len(v.chunkOffsets)+len(v.chunkVecs)))

	buf.Write(vectorsMagic[:])
	putUint32(&buf, vectorsVersion)
	putUint32(&buf, uint32(v.n))
	putUint32(&buf, uint32(v.textDim))
	putUint32(&buf, uint32(v.imageDim))
	putUint32(&buf, uint32(v.m))

	putFloats(&buf, v.titles)
	putFloats(&buf, v.images)
	for _, off := range v.chunkOffsets {
		putUint32(&buf, uint32(off))
	}
	putFloats(&buf, v.chunkVecs)
	for _, t := range v.chunkTexts {
		putUint32(&buf, uint32(len(t)))
		buf.WriteString(t)
	}
	return buf.Bytes()
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putFloats(buf *bytes.Buffer, vals []float32) {
	var b [4]byte
	for _, f := range vals {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		buf.Write(b[:])
	}
}

// decodeVectors parses vectors.bin. Every structural problem is reported as
// ErrStoreCorrupt.
func decodeVectors(data []byte) (*rawVectors, error) {
	r := bytes.NewReader(data)

	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil || head != vectorsMagic {
		return nil, fmt.Errorf("%w: vectors.bin has no FIGV header", ErrStoreCorrupt)
	}

	var hdr [5]uint32
	for i := range hdr {
		if err := binary.Read(r, binary.LittleEndian, &hdr[i]); err != nil {
			return nil, fmt.Errorf("%w: truncated vectors.bin header", ErrStoreCorrupt)
		}
	}
	if hdr[0] != vectorsVersion {
		return nil, fmt.Errorf("%w: unsupported vectors.bin version %d", ErrStoreCorrupt, hdr[0])
	}

	fixed, ok := payloadBytes(hdr[1], hdr[2], hdr[3], hdr[4])
	if !ok || uint64(r.Len()) < fixed {
		return nil, fmt.Errorf("%w: vectors.bin holds %d payload bytes, header needs at least %d", ErrStoreCorrupt, r.Len(), fixed)
	}

	v := &rawVectors{
		n:        int(hdr[1]),
		textDim:  int(hdr[2]),
		imageDim: int(hdr[3]),
		m:        int(hdr[4]),
	}

	v.titles = readFloats(r, v.n*v.textDim)
	v.images = readFloats(r, v.n*v.imageDim)

	v.chunkOffsets = make([]int, v.n+1)
	for i := range v.chunkOffsets {
		v.chunkOffsets[i] = int(readUint32(r))
	}
	if v.chunkOffsets[0] != 0 || v.chunkOffsets[v.n] != v.m {
		return nil, fmt.Errorf("%w: chunk offsets do not span %d chunks", ErrStoreCorrupt, v.m)
	}
	for i := 1; i <= v.n; i++ {
		if v.chunkOffsets[i] < v.chunkOffsets[i-1] {
			return nil, fmt.Errorf("%w: chunk offsets decrease at record %d", ErrStoreCorrupt, i-1)
		}
	}

	v.chunkVecs = readFloats(r, v.m*v.textDim)

	v.chunkTexts = make([]string, v.m)
	for i := range v.chunkTexts {
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("%w: truncated chunk text %d", ErrStoreCorrupt, i)
		}
		if int64(size) > int64(r.Len()) {
			return nil, fmt.Errorf("%w: chunk text %d overruns vectors.bin", ErrStoreCorrupt, i)
		}
		b := make([]byte, size)
		_, _ = io.ReadFull(r, b)
		v.chunkTexts[i] = string(b)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in vectors.bin", ErrStoreCorrupt, r.Len())
	}
	return v, nil
}

// payloadBytes is the size of the fixed width part of vectors.bin after the
// header: N*D_t + N*D_i + (N+1) + M*D_t words of four bytes. ok is false when
// the size does not fit in a uint64.
func payloadBytes(n, textDim, imageDim, m uint32) (size uint64, ok bool) {
	products := [][2]uint64{
		{uint64(n), uint64(textDim)},
		{uint64(n), uint64(imageDim)},
		{uint64(n) + 1, 1},
		{uint64(m), uint64(textDim)},
	}
	var words uint64
	for _, p := range products {
		hi, lo := bits.Mul64(p[0], p[1])
		if hi != 0 {
			return math.MaxUint64, false
		}
		var carry uint64
		if words, carry = bits.Add64(words, lo, 0); carry != 0 {
			return math.MaxUint64, false
		}
	}
	if words > math.MaxUint64/4 {
		return math.MaxUint64, false
	}
	return words * 4, true
}

// readUint32 and readFloats assume the caller already checked the length.
func readUint32(r *bytes.Reader) uint32 {
	var b [4]byte
	_, _ = io.ReadFull(r, b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func readFloats(r *bytes.Reader, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(readUint32(r))
	}
	return out
}
