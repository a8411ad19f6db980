package models

// Thread is a two-party conversation container. Participants are fixed at
// creation; exactly one thread exists per unordered participant pair.
type Thread struct {
	ID string `json:"id"`
	// Participants holds exactly two distinct principal ids.
	Participants [2]string `json:"participants"`
	// LastMessageID references the current tail of the message log; empty
	// when the thread has no messages.
	LastMessageID string `json:"last_message_id,omitempty"`
	// Created timestamp (ns)
	CreatedTS int64 `json:"created_ts"`
	// Updated timestamp (ns) - bumped on send/edit/delete, never on
	// read-marking
	UpdatedTS int64 `json:"updated_ts"`
}

// Has reports whether the given principal is one of the thread's
// participants.
func (t *Thread) Has(principal string) bool {
	return t.Participants[0] == principal || t.Participants[1] == principal
}

// Other returns the participant that is not the given principal. Callers
// must check Has first; Other returns the second participant for unknown
// principals.
func (t *Thread) Other(principal string) string {
	if t.Participants[0] == principal {
		return t.Participants[1]
	}
	return t.Participants[0]
}
