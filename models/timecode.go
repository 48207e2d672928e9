package models

import "math"

// Timecode types as stored in the script JSON. The empty string means the
// item has not been classified yet and is still ineligible for scenes.
const (
	TypeUnset      = ""
	TypeVideo      = "V"
	TypeAudio      = "A"
	TypeAudioVideo = "AV"
	TypeImage      = "image"
)

// Timecode represents a single logged clip or still. The JSON field names
// match the script documents already stored for existing projects.
type Timecode struct {
	ID        string  `json:"id"`
	InTime    float64 `json:"inTime"`
	OutTime   float64 `json:"outTime"`
	Duration  float64 `json:"duration"`
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	Rating    int     `json:"rating"`
	VideoName string  `json:"videoName,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"` // Nullable; pure-audio items have no frame capture
}

// ComputeDuration returns the absolute in/out distance in seconds.
func (t Timecode) ComputeDuration() float64 {
	return math.Abs(t.OutTime - t.InTime)
}

// IsClassified reports whether the item has been given a type.
func (t Timecode) IsClassified() bool {
	return t.Type != TypeUnset
}

// IsVisual reports whether the item belongs in a takes column.
func (t Timecode) IsVisual() bool {
	return t.Type == TypeVideo || t.Type == TypeAudioVideo || t.Type == TypeImage
}
