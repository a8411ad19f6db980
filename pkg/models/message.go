package models

// Attachment kinds supported on a message. Anything else is dropped at the
// service layer.
const (
	AttachmentImage    = "image"
	AttachmentLocation = "location"
	AttachmentDocument = "document"
)

// GeoPoint is a latitude/longitude pair carried by location attachments.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Attachment is the optional structured payload on a message. Kind selects
// which of the remaining fields is set; a message carries at most one.
type Attachment struct {
	Kind        string    `json:"kind"`
	ImageURL    string    `json:"image_url,omitempty"`
	Location    *GeoPoint `json:"location,omitempty"`
	DocumentURL string    `json:"document_url,omitempty"`
}

type Message struct {
	ID     string `json:"id"`
	Thread string `json:"thread"`
	// Sender is the authoring principal id; immutable after creation.
	Sender string `json:"sender"`
	// Content is trimmed, non-empty text. Required even when an attachment
	// is present.
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	// IsRead flips true when the other participant fetches the thread.
	IsRead bool `json:"is_read"`
	// IsEdited is set on the first successful edit and never cleared.
	IsEdited  bool  `json:"is_edited"`
	CreatedTS int64 `json:"created_ts"`
	UpdatedTS int64 `json:"updated_ts"`
	// Ord is the message's position suffix in the thread's log keyspace.
	// It is assigned once at append time and pins the store key, so edits
	// rewrite in place without disturbing creation order.
	Ord string `json:"ord"`
}
