package service

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLength = 32

// DeviceFingerprint derives a stable scoping key from client metadata.
// It is not a security boundary (both inputs are client-controlled); it
// exists so one user can hold independent sessions per device and revoke
// them individually.
func DeviceFingerprint(userAgent, ipAddress string) string {
	hash := sha256.Sum256([]byte(userAgent + "-" + ipAddress))
	return hex.EncodeToString(hash[:])[:fingerprintLength]
}
