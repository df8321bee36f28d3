package peernode

import "time"

// nowSeconds is wall-clock seconds as a float, matching the envelope and
// Transaction timestamp representation (§3, §6).
func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
