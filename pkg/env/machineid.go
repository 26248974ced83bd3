package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
)

const appID = "amulet"

// MachineID returns an ID identifying this machine, hashed per app.
// The hostname is used when the machine ID is unavailable.
func MachineID() string {
	if id, err := machineid.ProtectedID(appID); err == nil {
		return id[:12]
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return appID
}
