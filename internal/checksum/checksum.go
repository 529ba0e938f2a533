package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/starford/inkpress/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Corpus returns a digest over every file path and checksum, independent of
// listing order. Two listings of byte-identical content produce equal digests.
func Corpus(metas []models.FileMetadata) string {
	sorted := make([]models.FileMetadata, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	h := sha256.New()
	for _, m := range sorted {
		h.Write([]byte(m.Path))
		h.Write([]byte{0})
		h.Write([]byte(m.Checksum))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
