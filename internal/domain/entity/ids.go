package entity

import (
	"strings"

	"github.com/google/uuid"
)

// NewRequestID genera un id REQ-XXXXXXXX.
func NewRequestID() string { return "REQ-" + shortID() }

// NewOrderID genera un id ORD-XXXXXXXX.
func NewOrderID() string { return "ORD-" + shortID() }

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
