package dsync

import (
	"fmt"
	"math"
	"strings"
)

// FleetTier is the fleet-wide verdict, best first.
type FleetTier int

const (
	FleetSampleLocked FleetTier = iota
	FleetFrequencyLocked
	FleetDegraded
	FleetNotSynced
)

func (t FleetTier) String() string {
	switch t {
	case FleetSampleLocked:
		return "SAMPLE-LOCKED"
	case FleetFrequencyLocked:
		return "FREQUENCY-LOCKED"
	case FleetDegraded:
		return "DEGRADED"
	}
	return "NOT SYNCED"
}

// FleetVerdict reduces one poll round to a single answer plus the
// detail needed to explain it.
type FleetVerdict struct {
	Tier FleetTier
	// Reference is the host that actually served as reference, which
	// falls back to the first online host when the configured one is
	// down. Empty when no host responded.
	Reference string

	Online int
	Total  int

	AllLocked       bool
	SameGrandmaster bool
	Grandmasters    int

	MaxDriftUsPerSec      float64
	MaxDriftSamplesPerSec float64
	MaxDriftHost          string

	Reasons []string
}

// ExitCode maps the verdict to the process exit convention: 0 only for
// a fleet that holds sample or frequency lock.
func (v FleetVerdict) ExitCode() int {
	if v.Tier == FleetSampleLocked || v.Tier == FleetFrequencyLocked {
		return 0
	}
	return 1
}

// Aggregate reduces a round's outcomes to a fleet verdict. It never
// fails: an empty or fully offline round degrades to NOT SYNCED with an
// explanatory reason, because "the fleet is unreachable" is data, not a
// crash.
func Aggregate(outcomes []QueryOutcome, referenceName string, sampleRateHz int) FleetVerdict {
	verdict := FleetVerdict{Total: len(outcomes)}

	if len(outcomes) == 0 {
		verdict.Tier = FleetNotSynced
		verdict.Reasons = []string{"insufficient data: no targets"}
		return verdict
	}

	var online []QueryOutcome
	for _, outcome := range outcomes {
		if outcome.Online() {
			online = append(online, outcome)
		}
	}
	verdict.Online = len(online)

	if len(online) == 0 {
		verdict.Tier = FleetNotSynced
		verdict.Reasons = []string{"no hosts responding"}
		return verdict
	}

	// Outcomes arrive sorted by name, so the fallback reference is the
	// first online host in name order.
	reference := online[0]
	for _, outcome := range online {
		if outcome.Target.Name == referenceName {
			reference = outcome
			break
		}
	}
	verdict.Reference = reference.Target.Name

	allLocked := true
	var unlocked []string
	grandmasters := make(map[GrandmasterID]struct{})
	maxDrift := -1.0
	maxDriftHost := ""
	for _, outcome := range online {
		sample := outcome.Sample
		if !sample.IsLocked {
			allLocked = false
			unlocked = append(unlocked, outcome.Target.Name)
		}
		grandmasters[sample.Grandmaster] = struct{}{}
		if drift := math.Abs(sample.DriftRateUsPerSec); drift > maxDrift {
			maxDrift = drift
			maxDriftHost = outcome.Target.Name
		}
	}

	verdict.AllLocked = allLocked
	verdict.Grandmasters = len(grandmasters)
	verdict.SameGrandmaster = len(grandmasters) == 1
	verdict.MaxDriftUsPerSec = maxDrift
	verdict.MaxDriftSamplesPerSec = DriftSamplesPerSec(maxDrift, sampleRateHz)
	verdict.MaxDriftHost = maxDriftHost

	switch {
	case allLocked && verdict.SameGrandmaster && maxDrift < DriftNanoUs:
		verdict.Tier = FleetSampleLocked
	case allLocked && verdict.SameGrandmaster && maxDrift < DriftLockUs:
		verdict.Tier = FleetFrequencyLocked
	case allLocked && verdict.SameGrandmaster:
		verdict.Tier = FleetDegraded
		verdict.Reasons = append(verdict.Reasons, driftReason(verdict))
	default:
		verdict.Tier = FleetNotSynced
		if !allLocked {
			verdict.Reasons = append(verdict.Reasons,
				fmt.Sprintf("unlocked: %s", strings.Join(unlocked, ", ")))
		}
		if !verdict.SameGrandmaster {
			verdict.Reasons = append(verdict.Reasons,
				fmt.Sprintf("%d distinct grandmasters", len(grandmasters)))
		}
		if maxDrift >= DriftLockUs {
			verdict.Reasons = append(verdict.Reasons, driftReason(verdict))
		}
	}
	return verdict
}

func driftReason(v FleetVerdict) string {
	return fmt.Sprintf("max drift %.1f us/s = %.1f samples/sec (%s)",
		v.MaxDriftUsPerSec, v.MaxDriftSamplesPerSec, v.MaxDriftHost)
}
