package instance

import (
	"os"

	"github.com/angelmondragon/shipfee-backend/pkg/env"
)

const fallbackID = "worker-0"

// ID names this process for lock ownership and logs. SHIPFEE_WORKER_ID wins,
// then the hostname.
func ID() string {
	if id := env.Get("SHIPFEE_WORKER_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
