package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a human-referenceable unique order number,
// e.g. PP-20260831-9F3C21AB.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("PP-%s-%s", now.UTC().Format("20060102"), suffix)
}
