package media

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"

	"telegram-media-navigator/internal/domain/ports/adapter"
)

var _ adapter.MetadataReader = (*TagReader)(nil)

// TagReader reads ID3/MP4/FLAC/OGG tags with dhowden/tag.
type TagReader struct{}

func NewTagReader() *TagReader { return &TagReader{} }

// Artist returns the artist tag, falling back to the album artist.
func (TagReader) Artist(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", fmt.Errorf("read tags %s: %w", path, err)
	}
	if a := m.Artist(); a != "" {
		return a, nil
	}
	return m.AlbumArtist(), nil
}
