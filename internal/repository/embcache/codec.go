package embcache

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/maryamnawas03/consultancy-AI-agent/internal/domain"
)

// Blob layout (all integers little-endian):
//
//	magic "CEMB" | version byte | header length uint32 | JSON header |
//	corpus_size × (length uint32 | representation bytes) |
//	corpus_size × dimensions float32
//
// Representations are stored raw so they round-trip byte for byte.
const (
	blobMagic   = "CEMB"
	blobVersion = 2
	prefixLen   = len(blobMagic) + 1 + 4
)

type blobHeader struct {
	ModelID    string `json:"model_id"`
	CorpusSize int    `json:"corpus_size"`
	Dimensions int    `json:"dimensions"`
}

func encodeMatrix(m *domain.EmbeddingMatrix) ([]byte, error) {
	header, err := json.Marshal(blobHeader{
		ModelID:    m.ModelID,
		CorpusSize: m.CorpusSize,
		Dimensions: m.Dimensions(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}

	size := prefixLen + len(header) + m.CorpusSize*m.Dimensions()*4
	for _, r := range m.Representations {
		size += 4 + len(r)
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.WriteString(blobMagic)
	buf.WriteByte(blobVersion)
	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(header)))) //nolint:gosec // header is tiny
	buf.Write(header)
	for _, r := range m.Representations {
		buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(r)))) //nolint:gosec // bounded by file size
		buf.WriteString(r)
	}
	for _, row := range m.Vectors {
		for _, f := range row {
			buf.Write(binary.LittleEndian.AppendUint32(nil, math.Float32bits(f)))
		}
	}
	return buf.Bytes(), nil
}

// decodeMatrix parses a blob. Every failure wraps domain.ErrCacheCorrupt.
func decodeMatrix(data []byte) (domain.EmbeddingMatrix, error) {
	if len(data) < prefixLen || !bytes.Equal(data[:len(blobMagic)], []byte(blobMagic)) {
		return domain.EmbeddingMatrix{}, fmt.Errorf("%w: bad magic", domain.ErrCacheCorrupt)
	}
	if v := data[len(blobMagic)]; v != blobVersion {
		return domain.EmbeddingMatrix{}, fmt.Errorf("%w: unsupported version %d", domain.ErrCacheCorrupt, v)
	}
	headerLen := int(binary.LittleEndian.Uint32(data[len(blobMagic)+1:]))
	rest := data[prefixLen:]
	if headerLen > len(rest) {
		return domain.EmbeddingMatrix{}, fmt.Errorf("%w: truncated header", domain.ErrCacheCorrupt)
	}

	var h blobHeader
	if err := json.Unmarshal(rest[:headerLen], &h); err != nil {
		return domain.EmbeddingMatrix{}, fmt.Errorf("%w: header: %w", domain.ErrCacheCorrupt, err)
	}
	if h.CorpusSize < 0 || h.Dimensions < 0 {
		return domain.EmbeddingMatrix{}, fmt.Errorf("%w: negative sizes", domain.ErrCacheCorrupt)
	}
	rest = rest[headerLen:]
	// each row needs at least its 4-byte length prefix
	if h.CorpusSize > len(rest)/4 {
		return domain.EmbeddingMatrix{}, fmt.Errorf("%w: corpus size %d exceeds blob", domain.ErrCacheCorrupt, h.CorpusSize)
	}

	reprs := make([]string, h.CorpusSize)
	for i := range reprs {
		if len(rest) < 4 {
			return domain.EmbeddingMatrix{}, fmt.Errorf("%w: truncated representation %d", domain.ErrCacheCorrupt, i)
		}
		n := int(binary.LittleEndian.Uint32(rest))
		rest = rest[4:]
		if n > len(rest) {
			return domain.EmbeddingMatrix{}, fmt.Errorf("%w: truncated representation %d", domain.ErrCacheCorrupt, i)
		}
		reprs[i] = string(rest[:n])
		rest = rest[n:]
	}

	if h.Dimensions > len(rest) || len(rest) != h.CorpusSize*h.Dimensions*4 {
		return domain.EmbeddingMatrix{}, fmt.Errorf("%w: matrix is %d bytes, want %d",
			domain.ErrCacheCorrupt, len(rest), h.CorpusSize*h.Dimensions*4)
	}

	vectors := make([][]float32, h.CorpusSize)
	for i := range vectors {
		vec := make([]float32, h.Dimensions)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(rest[(i*h.Dimensions+j)*4:]))
		}
		vectors[i] = vec
	}

	m := domain.EmbeddingMatrix{
		ModelID:         h.ModelID,
		CorpusSize:      h.CorpusSize,
		Representations: reprs,
		Vectors:         vectors,
	}
	if err := m.Validate(); err != nil {
		return domain.EmbeddingMatrix{}, err
	}
	return m, nil
}
