package utils

import "github.com/google/uuid"

// GenMessageID returns a unique message identifier.
func GenMessageID() string {
	return "msg-" + uuid.NewString()
}
