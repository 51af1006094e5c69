package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	freq := uint64(1_000_000_000)
	assert.Equal(t, "--", formatUptime(123, 0))
	assert.Equal(t, "5m", formatUptime(5*60*freq, freq))
	assert.Equal(t, "3h 7m", formatUptime((3*3600+7*60)*freq, freq))
	assert.Equal(t, "2d 0h 1m", formatUptime((2*86400+60)*freq, freq))
}

func TestFormatFreq(t *testing.T) {
	assert.Equal(t, "1.00 GHz", formatFreq(1_000_000_000))
	assert.Equal(t, "10 MHz", formatFreq(10_000_000))
	assert.Equal(t, "33 kHz", formatFreq(32_768))
	assert.Equal(t, "999", formatFreq(999))
}

func TestFormatNsOffset(t *testing.T) {
	assert.Equal(t, "+1.500 s", formatNsOffset(1_500_000_000))
	assert.Equal(t, "-2.250 ms", formatNsOffset(-2_250_000))
	assert.Equal(t, "+3.5 us", formatNsOffset(3_500))
	assert.Equal(t, "-42 ns", formatNsOffset(-42))
}

func TestFormatTimeToSample(t *testing.T) {
	assert.Equal(t, "inf", formatTimeToSample(math.Inf(1)))
	assert.Equal(t, "2.0h", formatTimeToSample(7200))
	assert.Equal(t, "1.5m", formatTimeToSample(90))
	assert.Equal(t, "20.8s", formatTimeToSample(20.83))
}
