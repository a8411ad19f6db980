package utils

import "github.com/google/uuid"

// GenThreadID returns a new opaque thread id.
func GenThreadID() string {
	return "th_" + uuid.NewString()
}

// GenMessageID returns a new opaque message id.
func GenMessageID() string {
	return "msg_" + uuid.NewString()
}
