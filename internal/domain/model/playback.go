package model

// Playback is what the bot needs to stream a matched track and offer the next one.
type Playback struct {
	Track     Track
	Next      Track
	URL       string // public retrieval URL of Track
	Performer string
}
