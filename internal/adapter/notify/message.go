package notify

import (
	"fmt"
	"time"
)

const (
	messageSubject  = "Redis connection failure"
	messageHeadline = "The connection to Redis has a problem, please check!"
)

// outageMessage is the human readable text both notifiers send
func outageMessage(reason string, at time.Time) string {
	if reason == "" {
		return fmt.Sprintf("%s\n\nDetected at: %s", messageHeadline, at.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s\n\nReason: %s\nDetected at: %s", messageHeadline, reason, at.UTC().Format(time.RFC3339))
}
