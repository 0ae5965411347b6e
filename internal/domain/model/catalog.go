package model

// Catalog is the ordered track list read from one directory.
// Tracks are sorted by filename; the order is not numeric id order.
type Catalog struct {
	Dir    string
	Tracks []Track
}

func (c Catalog) Len() int { return len(c.Tracks) }

func (c Catalog) Empty() bool { return len(c.Tracks) == 0 }

// Find returns the index of the first track whose id is integer-equivalent to requestedID.
// Duplicate prefixes alias to the first entry in sorted order.
func (c Catalog) Find(requestedID string) (int, bool) {
	for i, t := range c.Tracks {
		if SameID(t.ID, requestedID) {
			return i, true
		}
	}
	return -1, false
}

// Next returns the track after index i, wrapping to the first track after the last.
// A single-track catalog returns the track itself.
func (c Catalog) Next(i int) Track {
	if len(c.Tracks) == 0 {
		return Track{}
	}
	if i < 0 {
		i = -1
	}
	return c.Tracks[(i+1)%len(c.Tracks)]
}
