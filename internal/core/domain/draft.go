package domain

import "time"

// Geo is a geographic point with the reverse-geocoded address, captured while
// the citizen fills the complaint form.
type Geo struct {
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
	Address string  `json:"address,omitempty" bson:"address,omitempty"`
}

// MediaRef points at an uploaded photo or video attached to a draft. Uploads
// themselves go through the backend's media endpoint; the draft only keeps
// the reference.
type MediaRef struct {
	Kind string `json:"kind" bson:"kind"` // "image" or "video"
	URL  string `json:"url" bson:"url"`
}

// ReportDraft holds the in-progress state of the multi-step complaint form,
// persisted so a citizen can resume a half-filled report across devices.
// Submitting the draft hands it to the backend issues API and deletes it.
type ReportDraft struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Category    string     `json:"category" bson:"category"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Media       []MediaRef `json:"media,omitempty" bson:"media,omitempty"`
	Location    *Geo       `json:"location,omitempty" bson:"location,omitempty"`
	Step        int        `json:"step" bson:"step"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}
