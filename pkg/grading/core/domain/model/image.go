package model

import "time"

// ImageQuality is the coarse quality estimate of a captured image.
// Sub-scores fall back to fixed defaults when no analysis backend is available.
type ImageQuality struct {
	// Score is the aggregate quality on a 0-100 scale.
	Score float64
	// Resolution, Brightness and Contrast are the 0-100 sub-scores.
	Resolution float64
	Brightness float64
	Contrast   float64
	// Analyzed reports whether the sub-scores came from real image analysis
	// or from the fixed defaults.
	Analyzed bool
}

// ImagePayload is the lossy-compressed raster capture of an answer region.
type ImagePayload struct {
	Data       []byte
	Format     string
	Width      int
	Height     int
	Quality    ImageQuality
	CapturedAt time.Time
}
