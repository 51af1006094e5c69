package dsync

import "math"

// QualityTier rates one host's sync quality, best first.
type QualityTier int

const (
	TierSampleLocked QualityTier = iota
	TierGood
	TierMarginal
	TierDrifting
	TierOffline
)

func (t QualityTier) String() string {
	switch t {
	case TierSampleLocked:
		return "SAMPLE-LOCKED"
	case TierGood:
		return "GOOD"
	case TierMarginal:
		return "MARGINAL"
	case TierDrifting:
		return "DRIFTING"
	}
	return "OFFLINE"
}

// AudioMetrics expresses a drift rate in audio terms at a given sample
// rate.
type AudioMetrics struct {
	SamplePeriodUs     float64
	DriftSamplesPerSec float64
	// TimeToOneSampleSec is the seconds until one full sample of
	// accumulated error; +Inf when drift is effectively zero.
	TimeToOneSampleSec float64
}

// SamplePeriodUs is the duration of one audio sample in microseconds.
func SamplePeriodUs(sampleRateHz int) float64 {
	return 1_000_000.0 / float64(sampleRateHz)
}

// DriftSamplesPerSec converts a drift rate (us/s) to samples of error
// per second.
func DriftSamplesPerSec(driftUsPerSec float64, sampleRateHz int) float64 {
	return math.Abs(driftUsPerSec) / SamplePeriodUs(sampleRateHz)
}

// Classify rates a sample against the servo drift thresholds. An
// unlocked servo is DRIFTING no matter how small its drift reads; a
// drift estimate is only trustworthy once the servo has converged.
func Classify(sample *TelemetrySample, sampleRateHz int) (QualityTier, AudioMetrics) {
	metrics := deriveMetrics(sample.DriftRateUsPerSec, sampleRateHz)
	drift := math.Abs(sample.DriftRateUsPerSec)

	var tier QualityTier
	switch {
	case !sample.IsLocked:
		tier = TierDrifting
	case drift < DriftNanoUs:
		tier = TierSampleLocked
	case drift < DriftLockUs:
		tier = TierGood
	case drift < DriftProdUs:
		tier = TierMarginal
	default:
		tier = TierDrifting
	}
	return tier, metrics
}

// ClassifyOutcome rates a poll outcome; failures rate OFFLINE and
// contribute nothing to drift statistics.
func ClassifyOutcome(outcome QueryOutcome, sampleRateHz int) QualityTier {
	if !outcome.Online() {
		return TierOffline
	}
	tier, _ := Classify(outcome.Sample, sampleRateHz)
	return tier
}

func deriveMetrics(driftUsPerSec float64, sampleRateHz int) AudioMetrics {
	period := SamplePeriodUs(sampleRateHz)
	drift := math.Abs(driftUsPerSec)

	metrics := AudioMetrics{
		SamplePeriodUs:     period,
		DriftSamplesPerSec: drift / period,
	}
	if drift < 0.001 {
		metrics.TimeToOneSampleSec = math.Inf(1)
	} else {
		metrics.TimeToOneSampleSec = period / drift
	}
	return metrics
}
