package adapter

// MetadataReader reads embedded tags of an audio file.
type MetadataReader interface {
	// Artist returns the artist tag of the file at path, or "" when the file carries none.
	Artist(path string) (string, error)
}
