package koala

import "github.com/google/uuid"

// NewRequestID is the default DebugConfig.RequestIDGen.
func NewRequestID() string {
	return uuid.NewString()
}
