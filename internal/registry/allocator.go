package registry

import (
	"fmt"

	"github.com/google/uuid"
)

// CodeLength is how many characters of a fresh UUID an allocated code keeps.
// Eight hex characters printed on a small label scan reliably and leave the
// collision probability negligible for a single-site inventory.
const CodeLength = 8

// allocAttempts bounds the redraw loop on collision.
const allocAttempts = 16

// NewCode draws a candidate item code: the leading characters of a random
// UUID. Uniqueness is only decided by the registry under its namespace lock.
func NewCode() string {
	return uuid.NewString()[:CodeLength]
}

// allocateLocked draws codes until one is free. Callers hold r.mu.
func (r *Registry) allocateLocked() (string, error) {
	for i := 0; i < allocAttempts; i++ {
		code := NewCode()
		if _, taken := r.items[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free code after %d draws", allocAttempts)
}
