package dsync

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildResponse assembles a DSYR datagram field by field, independently
// of the decoder, so an offset bug cannot cancel itself out.
func buildResponse(requestID uint32, sample TelemetrySample, flags byte) []byte {
	data := make([]byte, ResponseSize)
	binary.BigEndian.PutUint32(data[0:4], ResponseMagic)
	binary.BigEndian.PutUint32(data[4:8], requestID)
	binary.BigEndian.PutUint64(data[8:16], sample.SystemTimeNs)
	binary.BigEndian.PutUint64(data[16:24], sample.MonotonicCounter)
	binary.BigEndian.PutUint64(data[24:32], uint64(sample.PTPOffsetNs))
	binary.BigEndian.PutUint32(data[32:36], uint32(int32(math.Round(sample.DriftRateUsPerSec*1000))))
	binary.BigEndian.PutUint32(data[36:40], uint32(int32(math.Round(sample.FreqAdjPpm*1000))))
	data[40] = byte(sample.Mode)
	if sample.IsLocked {
		data[41] = 1
	}
	copy(data[42:48], sample.Grandmaster[:])
	binary.BigEndian.PutUint64(data[48:56], sample.MonotonicFreqHz)
	binary.BigEndian.PutUint32(data[56:60], uint32(sample.NTPOffsetUs))
	binary.BigEndian.PutUint16(data[60:62], uint16(sample.AccumulatedPhaseUs))
	data[62] = flags
	return data
}

func TestEncodeRequest(t *testing.T) {
	request := EncodeRequest(0xCAFEBABE)

	require.Len(t, request, RequestSize)
	assert.Equal(t, []byte{0x44, 0x53, 0x59, 0x4E}, request[0:4], "magic spells DSYN")
	assert.Equal(t, uint32(0xCAFEBABE), binary.BigEndian.Uint32(request[4:8]))
}

func TestDecodeResponseRoundTrip(t *testing.T) {
	want := TelemetrySample{
		SystemTimeNs:     1_757_000_000_123_456_789,
		MonotonicCounter: 987_654_321_000,
		MonotonicFreqHz:  1_000_000_000,
		PTPOffsetNs:      -48_213_999_555,
		// -12.345 us/s stored wire-side as -12345
		DriftRateUsPerSec:  -12.345,
		FreqAdjPpm:         3.25,
		Mode:               ModeNano,
		IsLocked:           true,
		Grandmaster:        GrandmasterID{0x00, 0x1D, 0xC1, 0xAA, 0xBB, 0xCC},
		NTPOffsetUs:        -250,
		AccumulatedPhaseUs: 17,
	}
	data := buildResponse(42, want, flagSettled)

	sample, err := DecodeResponse(data, 42)
	require.NoError(t, err)

	assert.Equal(t, want.SystemTimeNs, sample.SystemTimeNs)
	assert.Equal(t, want.MonotonicCounter, sample.MonotonicCounter)
	assert.Equal(t, want.MonotonicFreqHz, sample.MonotonicFreqHz)
	assert.Equal(t, want.PTPOffsetNs, sample.PTPOffsetNs)
	assert.Equal(t, want.DriftRateUsPerSec, sample.DriftRateUsPerSec)
	assert.Equal(t, want.FreqAdjPpm, sample.FreqAdjPpm)
	assert.Equal(t, ModeNano, sample.Mode)
	assert.True(t, sample.IsLocked)
	assert.Equal(t, "00:1D:C1:AA:BB:CC", sample.Grandmaster.String())
	assert.Equal(t, want.NTPOffsetUs, sample.NTPOffsetUs)
	assert.Equal(t, want.AccumulatedPhaseUs, sample.AccumulatedPhaseUs)
	assert.False(t, sample.NTPFailed)
	assert.True(t, sample.Settled)
	assert.True(t, sample.HasNTPFields)
}

func TestDecodeResponseShort(t *testing.T) {
	data := buildResponse(7, TelemetrySample{}, 0)

	_, err := DecodeResponse(data[:63], 7)

	var codecErr *CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, ShortResponse, codecErr.Kind)
}

func TestDecodeResponseBadMagic(t *testing.T) {
	data := buildResponse(7, TelemetrySample{}, 0)
	binary.BigEndian.PutUint32(data[0:4], RequestMagic) // DSYN, not DSYR

	_, err := DecodeResponse(data, 7)

	var codecErr *CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, BadMagic, codecErr.Kind)
}

func TestDecodeResponseIDMismatch(t *testing.T) {
	data := buildResponse(7, TelemetrySample{}, 0)

	_, err := DecodeResponse(data, 8)

	var codecErr *CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, IDMismatch, codecErr.Kind)
}

func TestDecodeResponseUnknownMode(t *testing.T) {
	data := buildResponse(7, TelemetrySample{Mode: Mode(9)}, 0)

	sample, err := DecodeResponse(data, 7)
	require.NoError(t, err)
	assert.Equal(t, "?9", sample.Mode.String())
}

// A v2 host with genuinely zero NTP state reads exactly like a v1 host;
// the all-zero heuristic must resolve to "absent". This pins the known
// wire-format ambiguity.
func TestDecodeResponseExtensionAllZero(t *testing.T) {
	data := buildResponse(7, TelemetrySample{IsLocked: true, Mode: ModeLock}, 0)

	sample, err := DecodeResponse(data, 7)
	require.NoError(t, err)
	assert.False(t, sample.HasNTPFields)
	assert.False(t, sample.NTPFailed)
	assert.False(t, sample.Settled)
}

func TestDecodeResponseExtensionFlagBits(t *testing.T) {
	data := buildResponse(7, TelemetrySample{}, flagNTPFailed|flagSettled)

	sample, err := DecodeResponse(data, 7)
	require.NoError(t, err)
	assert.True(t, sample.HasNTPFields)
	assert.True(t, sample.NTPFailed)
	assert.True(t, sample.Settled)
}
