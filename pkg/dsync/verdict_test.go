package dsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlineOutcome(name string, drift float64, locked bool, gm byte) QueryOutcome {
	return QueryOutcome{
		Target: Target{Name: name, Address: "10.77.9.1"},
		Sample: &TelemetrySample{
			DriftRateUsPerSec: drift,
			IsLocked:          locked,
			Mode:              ModeNano,
			Grandmaster:       GrandmasterID{0x00, 0x1D, 0xC1, 0x00, 0x00, gm},
		},
		RTTUs: 850,
	}
}

func offlineOutcome(name string) QueryOutcome {
	return failure(Target{Name: name}, &TransportError{Kind: TransportTimeout})
}

func TestAggregateSampleLocked(t *testing.T) {
	outcomes := []QueryOutcome{
		onlineOutcome("foh", 0.3, true, 1),
		onlineOutcome("iem", -0.2, true, 1),
		onlineOutcome("stagebox", 0.1, true, 1),
	}

	verdict := Aggregate(outcomes, "foh", 96000)

	assert.Equal(t, FleetSampleLocked, verdict.Tier)
	assert.Equal(t, 0, verdict.ExitCode())
	assert.Equal(t, 0.3, verdict.MaxDriftUsPerSec)
	assert.Equal(t, "foh", verdict.MaxDriftHost)
	assert.Equal(t, "foh", verdict.Reference)
	assert.True(t, verdict.AllLocked)
	assert.True(t, verdict.SameGrandmaster)
}

func TestAggregateFrequencyLocked(t *testing.T) {
	outcomes := []QueryOutcome{
		onlineOutcome("foh", 0.3, true, 1),
		onlineOutcome("iem", 3.2, true, 1),
	}

	verdict := Aggregate(outcomes, "foh", 96000)

	assert.Equal(t, FleetFrequencyLocked, verdict.Tier)
	assert.Equal(t, 0, verdict.ExitCode())
	assert.Equal(t, "iem", verdict.MaxDriftHost)
}

func TestAggregateDegraded(t *testing.T) {
	outcomes := []QueryOutcome{
		onlineOutcome("foh", 0.3, true, 1),
		onlineOutcome("iem", 7.5, true, 1),
	}

	verdict := Aggregate(outcomes, "foh", 96000)

	assert.Equal(t, FleetDegraded, verdict.Tier)
	assert.Equal(t, 1, verdict.ExitCode())
	require.Len(t, verdict.Reasons, 1)
	assert.Contains(t, verdict.Reasons[0], "7.5 us/s")
	assert.Contains(t, verdict.Reasons[0], "iem")
}

func TestAggregateUnlockedHostNamed(t *testing.T) {
	outcomes := []QueryOutcome{
		onlineOutcome("foh", 0.3, true, 1),
		onlineOutcome("iem", 0.2, false, 1),
		onlineOutcome("stagebox", 0.1, true, 1),
	}

	verdict := Aggregate(outcomes, "foh", 96000)

	assert.Equal(t, FleetNotSynced, verdict.Tier)
	assert.Equal(t, 1, verdict.ExitCode())
	require.NotEmpty(t, verdict.Reasons)
	assert.Contains(t, verdict.Reasons[0], "iem")
}

// Excellent drift cannot save a segmented network: two grandmasters
// means two independent clock domains.
func TestAggregateGrandmasterSegmentation(t *testing.T) {
	outcomes := []QueryOutcome{
		onlineOutcome("foh", 0.1, true, 1),
		onlineOutcome("iem", 0.1, true, 2),
	}

	verdict := Aggregate(outcomes, "foh", 96000)

	assert.Equal(t, FleetNotSynced, verdict.Tier)
	assert.Equal(t, 2, verdict.Grandmasters)
	require.NotEmpty(t, verdict.Reasons)
	assert.Contains(t, verdict.Reasons[0], "2 distinct grandmasters")
}

func TestAggregateOfflineHostsExcluded(t *testing.T) {
	outcomes := []QueryOutcome{
		onlineOutcome("foh", 0.3, true, 1),
		offlineOutcome("iem"),
	}

	verdict := Aggregate(outcomes, "foh", 96000)

	assert.Equal(t, FleetSampleLocked, verdict.Tier)
	assert.Equal(t, 1, verdict.Online)
	assert.Equal(t, 2, verdict.Total)
}

func TestAggregateReferenceFallback(t *testing.T) {
	outcomes := []QueryOutcome{
		offlineOutcome("foh"),
		onlineOutcome("iem", 0.2, true, 1),
		onlineOutcome("stagebox", 0.1, true, 1),
	}

	verdict := Aggregate(outcomes, "foh", 96000)

	// Named reference is down; first online host by name order serves.
	assert.Equal(t, "iem", verdict.Reference)
	assert.Equal(t, FleetSampleLocked, verdict.Tier)
}

func TestAggregateAllOffline(t *testing.T) {
	outcomes := []QueryOutcome{offlineOutcome("foh"), offlineOutcome("iem")}

	verdict := Aggregate(outcomes, "foh", 96000)

	assert.Equal(t, FleetNotSynced, verdict.Tier)
	assert.Equal(t, 1, verdict.ExitCode())
	assert.Equal(t, []string{"no hosts responding"}, verdict.Reasons)
	assert.Empty(t, verdict.Reference)
}

func TestAggregateEmpty(t *testing.T) {
	verdict := Aggregate(nil, "foh", 96000)

	assert.Equal(t, FleetNotSynced, verdict.Tier)
	assert.Equal(t, []string{"insufficient data: no targets"}, verdict.Reasons)
}

// Aggregation is pure: running it twice over the same round must give
// identical verdicts.
func TestAggregateIdempotent(t *testing.T) {
	outcomes := []QueryOutcome{
		onlineOutcome("foh", 0.3, true, 1),
		onlineOutcome("iem", 6.2, false, 2),
		offlineOutcome("stagebox"),
	}

	first := Aggregate(outcomes, "foh", 96000)
	second := Aggregate(outcomes, "foh", 96000)
	assert.Equal(t, first, second)
}
