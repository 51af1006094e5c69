package dsync

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// wireResponse mirrors the 64-byte DSYR datagram layout. All fields are
// big-endian on the wire; the blank byte is reserved.
type wireResponse struct {
	Magic            uint32
	RequestID        uint32
	SystemTimeNs     uint64
	MonotonicCounter uint64
	PTPOffsetNs      int64
	DriftScaled      int32
	FreqAdjScaled    int32
	Mode             byte
	Locked           byte
	Grandmaster      [6]byte
	MonotonicFreqHz  uint64
	NTPOffsetUs      int32
	AccumulatedPhase int16
	Flags            byte
	_                byte
}

const (
	flagNTPFailed = 0x01
	flagSettled   = 0x02
)

// EncodeRequest builds the 8-byte DSYN query datagram. The request id
// correlates the response within one exchange; it needs no global
// uniqueness.
func EncodeRequest(requestID uint32) []byte {
	var buffer bytes.Buffer
	binary.Write(&buffer, binary.BigEndian, uint32(RequestMagic))
	binary.Write(&buffer, binary.BigEndian, requestID)
	return buffer.Bytes()
}

// DecodeResponse validates and decodes one response datagram. The id
// check guards against stale or duplicate datagrams, since UDP has no
// session framing.
//
// Extension detection is a heuristic: the region counts as present iff
// any of its bytes is non-zero. A v2 host whose NTP offset, phase, and
// flags are all genuinely zero is indistinguishable from a v1 host; the
// protocol offers no version field to do better.
func DecodeResponse(data []byte, expectRequestID uint32) (*TelemetrySample, error) {
	if len(data) < ResponseSize {
		return nil, &CodecError{Kind: ShortResponse, Detail: fmt.Sprintf("%d bytes", len(data))}
	}

	var resp wireResponse
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &resp); err != nil {
		return nil, &CodecError{Kind: ShortResponse, Detail: err.Error()}
	}

	if resp.Magic != ResponseMagic {
		return nil, &CodecError{Kind: BadMagic, Detail: fmt.Sprintf("0x%08X", resp.Magic)}
	}
	if resp.RequestID != expectRequestID {
		return nil, &CodecError{
			Kind:   IDMismatch,
			Detail: fmt.Sprintf("sent %d, echoed %d", expectRequestID, resp.RequestID),
		}
	}

	sample := &TelemetrySample{
		SystemTimeNs:      resp.SystemTimeNs,
		MonotonicCounter:  resp.MonotonicCounter,
		MonotonicFreqHz:   resp.MonotonicFreqHz,
		PTPOffsetNs:       resp.PTPOffsetNs,
		DriftRateUsPerSec: float64(resp.DriftScaled) / 1000.0,
		FreqAdjPpm:        float64(resp.FreqAdjScaled) / 1000.0,
		Mode:              Mode(resp.Mode),
		IsLocked:          resp.Locked == 1,
		Grandmaster:       resp.Grandmaster,

		NTPOffsetUs:        resp.NTPOffsetUs,
		AccumulatedPhaseUs: resp.AccumulatedPhase,
		NTPFailed:          resp.Flags&flagNTPFailed != 0,
		Settled:            resp.Flags&flagSettled != 0,
		HasNTPFields:       resp.NTPOffsetUs != 0 || resp.AccumulatedPhase != 0 || resp.Flags != 0,
	}
	return sample, nil
}
