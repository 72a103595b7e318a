package utils

import (
	"log"
	"strings"
)

// LogEvent prints one key=value line tagged with module and action.
// Keep message short and free of credentials.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}
