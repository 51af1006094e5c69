package main

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/dantesync/dsyncmon/pkg/dsync"
)

type jsonHost struct {
	Host    string `json:"host"`
	Address string `json:"address"`
	Error   string `json:"error,omitempty"`

	SystemTimeNs     uint64 `json:"system_time_ns,omitempty"`
	MonotonicCounter uint64 `json:"monotonic_counter,omitempty"`
	MonotonicFreqHz  uint64 `json:"monotonic_freq,omitempty"`
	PTPOffsetNs      int64  `json:"ptp_offset_ns,omitempty"`

	DriftRateUsPerSec float64 `json:"drift_rate_us_per_sec"`
	FreqAdjPpm        float64 `json:"freq_adj_ppm"`
	Mode              string  `json:"mode,omitempty"`
	IsLocked          bool    `json:"is_locked"`
	GrandmasterID     string  `json:"gm_uuid,omitempty"`
	RTTUs             float64 `json:"rtt_us"`

	NTPOffsetUs        int32 `json:"ntp_offset_us"`
	AccumulatedPhaseUs int16 `json:"accumulated_phase_us"`
	NTPFailed          bool  `json:"ntp_failed"`
	Settled            bool  `json:"settled"`
	HasNTPFields       bool  `json:"has_ntp_fields"`

	AudioQuality       string   `json:"audio_quality,omitempty"`
	DriftSamplesPerSec float64  `json:"drift_samples_per_sec"`
	TimeToOneSampleSec *float64 `json:"time_to_one_sample_sec"`
	WallOffsetUs       *float64 `json:"wall_offset_us,omitempty"`
}

type jsonSummary struct {
	Online                int     `json:"online"`
	Total                 int     `json:"total"`
	AllLocked             bool    `json:"all_locked"`
	AllSameGM             bool    `json:"all_same_gm"`
	MaxDriftUsPerSec      float64 `json:"max_drift_us_per_sec"`
	MaxDriftSamplesPerSec float64 `json:"max_drift_samples_per_sec"`
	MaxDriftHost          string  `json:"max_drift_host,omitempty"`
	Verdict               string  `json:"verdict"`
	Reasons               []string `json:"reasons,omitempty"`
}

type jsonReport struct {
	QueryTime      string      `json:"query_time"`
	Reference      string      `json:"reference"`
	SampleRateHz   int         `json:"sample_rate"`
	SamplePeriodUs float64     `json:"sample_period_us"`
	Hosts          []jsonHost  `json:"hosts"`
	Summary        jsonSummary `json:"summary"`
}

func printJSON(outcomes []dsync.QueryOutcome, verdict dsync.FleetVerdict, cfg dsync.Config) {
	reference := referenceOutcome(outcomes, verdict.Reference)

	report := jsonReport{
		QueryTime:      time.Now().Format(time.RFC3339),
		Reference:      verdict.Reference,
		SampleRateHz:   cfg.SampleRateHz,
		SamplePeriodUs: dsync.SamplePeriodUs(cfg.SampleRateHz),
		Summary: jsonSummary{
			Online:                verdict.Online,
			Total:                 verdict.Total,
			AllLocked:             verdict.AllLocked,
			AllSameGM:             verdict.SameGrandmaster,
			MaxDriftUsPerSec:      verdict.MaxDriftUsPerSec,
			MaxDriftSamplesPerSec: verdict.MaxDriftSamplesPerSec,
			MaxDriftHost:          verdict.MaxDriftHost,
			Verdict:               verdict.Tier.String(),
			Reasons:               verdict.Reasons,
		},
	}

	for _, outcome := range outcomes {
		host := jsonHost{Host: outcome.Target.Name, Address: outcome.Target.Address}
		if !outcome.Online() {
			host.Error = outcome.Err.Error()
			report.Hosts = append(report.Hosts, host)
			continue
		}

		sample := outcome.Sample
		tier, metrics := dsync.Classify(sample, cfg.SampleRateHz)

		host.SystemTimeNs = sample.SystemTimeNs
		host.MonotonicCounter = sample.MonotonicCounter
		host.MonotonicFreqHz = sample.MonotonicFreqHz
		host.PTPOffsetNs = sample.PTPOffsetNs
		host.DriftRateUsPerSec = sample.DriftRateUsPerSec
		host.FreqAdjPpm = sample.FreqAdjPpm
		host.Mode = sample.Mode.String()
		host.IsLocked = sample.IsLocked
		host.GrandmasterID = sample.Grandmaster.String()
		host.RTTUs = outcome.RTTUs
		host.NTPOffsetUs = sample.NTPOffsetUs
		host.AccumulatedPhaseUs = sample.AccumulatedPhaseUs
		host.NTPFailed = sample.NTPFailed
		host.Settled = sample.Settled
		host.HasNTPFields = sample.HasNTPFields
		host.AudioQuality = tier.String()
		host.DriftSamplesPerSec = metrics.DriftSamplesPerSec

		// JSON has no Inf; effectively-zero drift serializes as null.
		if !math.IsInf(metrics.TimeToOneSampleSec, 1) {
			t := metrics.TimeToOneSampleSec
			host.TimeToOneSampleSec = &t
		}
		if reference != nil && outcome.Target.Name != verdict.Reference {
			offsetUs := (float64(sample.SystemTimeNs) - float64(reference.Sample.SystemTimeNs)) / 1000
			host.WallOffsetUs = &offsetUs
		}

		report.Hosts = append(report.Hosts, host)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(report)
}
