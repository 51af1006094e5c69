// Package dsync implements the client side of the DanteSync UDP Time
// Query protocol: the wire codec, the concurrent fleet poller, and the
// audio-grade quality classification and verdict aggregation over the
// returned servo telemetry.
//
// The key metric throughout is the drift rate (us of clock error per
// second). Wall clock offsets measured over UDP carry ~1ms of network
// noise and cannot verify sub-sample sync; the servo internals can.
package dsync

import (
	"fmt"
	"strings"
)

const (
	// Port is the UDP port the DanteSync time query listener binds.
	Port = 31900

	RequestMagic  = 0x4453594E // "DSYN"
	ResponseMagic = 0x44535952 // "DSYR"

	RequestSize  = 8
	ResponseSize = 64
)

// Drift thresholds in us/s, mirroring the servo controller's mode
// boundaries. Every quality tier and fleet verdict hangs off these
// exact values.
const (
	DriftNanoUs = 0.5  // sub-sample precision at 96kHz
	DriftLockUs = 5.0  // lock threshold
	DriftProdUs = 20.0 // production/acquisition boundary
)

// Target is one queryable host. The target set is fixed for a process
// run; it comes from the config file or host arguments, never from a
// mutable registry.
type Target struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

// Mode is the servo's reported sync mode byte.
type Mode byte

const (
	ModeInit Mode = iota
	ModeAcq
	ModeProd
	ModeLock
	ModeNano
	ModeNTPOnly
)

// String renders unknown mode bytes as "?N" rather than failing, so a
// newer daemon never breaks an older monitor.
func (m Mode) String() string {
	switch m {
	case ModeInit:
		return "INIT"
	case ModeAcq:
		return "ACQ"
	case ModeProd:
		return "PROD"
	case ModeLock:
		return "LOCK"
	case ModeNano:
		return "NANO"
	case ModeNTPOnly:
		return "NTP-only"
	}
	return fmt.Sprintf("?%d", byte(m))
}

// GrandmasterID identifies the clock source a servo is tracking.
// Equality is byte-exact; two online hosts with differing IDs means the
// network is segmented.
type GrandmasterID [6]byte

func (id GrandmasterID) String() string {
	parts := make([]string, len(id))
	for i, b := range id {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// TelemetrySample is one decoded 64-byte DSYR response.
type TelemetrySample struct {
	SystemTimeNs     uint64
	MonotonicCounter uint64
	MonotonicFreqHz  uint64
	// PTPOffsetNs is phase versus the grandmaster, relative to device
	// uptime, not UTC. Large values are normal.
	PTPOffsetNs       int64
	DriftRateUsPerSec float64
	FreqAdjPpm        float64
	Mode              Mode
	IsLocked          bool
	Grandmaster       GrandmasterID

	// Protocol v2 extension, response bytes [56-63]. Zero-valued and
	// meaningless when HasNTPFields is false.
	NTPOffsetUs        int32
	AccumulatedPhaseUs int16
	NTPFailed          bool
	Settled            bool
	// HasNTPFields reports whether the remote populated the extension
	// region. See DecodeResponse for the detection caveat.
	HasNTPFields bool
}
