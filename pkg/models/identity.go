package models

// Identity is a resolved principal as returned by the participant
// directory. Careline consumes these records; it does not issue them.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}
