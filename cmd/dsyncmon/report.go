package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dantesync/dsyncmon/internal/ui"
	"github.com/dantesync/dsyncmon/pkg/dsync"
)

const reportWidth = 120

func styleVerdict(tier dsync.FleetTier) string {
	switch tier {
	case dsync.FleetSampleLocked, dsync.FleetFrequencyLocked:
		return ui.GoodStyle(tier.String())
	case dsync.FleetDegraded:
		return ui.WarnStyle(tier.String())
	}
	return ui.BadStyle(tier.String())
}

func referenceOutcome(outcomes []dsync.QueryOutcome, name string) *dsync.QueryOutcome {
	for i := range outcomes {
		if outcomes[i].Target.Name == name && outcomes[i].Online() {
			return &outcomes[i]
		}
	}
	return nil
}

func verdictLine(verdict dsync.FleetVerdict) string {
	line := fmt.Sprintf("VERDICT: %s", styleVerdict(verdict.Tier))
	if len(verdict.Reasons) > 0 {
		line += fmt.Sprintf(" (%s)", strings.Join(verdict.Reasons, ", "))
	} else {
		line += fmt.Sprintf(" (max drift %.2f us/s = %.3f samples/sec)",
			verdict.MaxDriftUsPerSec, verdict.MaxDriftSamplesPerSec)
	}
	return line
}

func printBrief(outcomes []dsync.QueryOutcome, verdict dsync.FleetVerdict, cfg dsync.Config) {
	periodUs := dsync.SamplePeriodUs(cfg.SampleRateHz)
	fmt.Printf("%s %d/%d hosts online  [%.0fkHz, 1 sample = %.1fus]\n\n",
		ui.TitleStyle("DanteSync Status:"),
		verdict.Online, verdict.Total, float64(cfg.SampleRateHz)/1000, periodUs)

	if verdict.Online == 0 {
		fmt.Println(ui.BadStyle("ERROR: No hosts responding!"))
		return
	}

	reference := referenceOutcome(outcomes, verdict.Reference)

	fmt.Printf("%-14s %-6s %-6s %-12s %-10s %-14s Status\n",
		"Host", "Mode", "Lock", "Drift us/s", "Samp/sec", "Quality")
	fmt.Println(strings.Repeat("-", 80))

	for _, outcome := range outcomes {
		if !outcome.Online() {
			fmt.Printf("%-14s %-6s %-6s %-12s %-10s %-14s %v\n",
				outcome.Target.Name, "--", "--", "--", "--", "OFFLINE", outcome.Err)
			continue
		}
		sample := outcome.Sample
		tier, metrics := dsync.Classify(sample, cfg.SampleRateHz)

		lock := "no"
		if sample.IsLocked {
			lock = "YES"
		}
		status := "PROBLEM"
		switch {
		case outcome.Target.Name == verdict.Reference:
			status = "REFERENCE"
		case tier == dsync.TierSampleLocked, tier == dsync.TierGood:
			status = "OK"
		case tier == dsync.TierMarginal:
			status = "WARN"
		}
		if reference != nil && sample.Grandmaster != reference.Sample.Grandmaster {
			status += " GM-DIFF!"
		}

		fmt.Printf("%-14s %-6s %-6s %+10.2f  %8.3f  %-14s %s\n",
			outcome.Target.Name, sample.Mode, lock,
			sample.DriftRateUsPerSec, metrics.DriftSamplesPerSec, tier, status)
	}

	fmt.Println()
	fmt.Println(verdictLine(verdict))
}

func printReport(outcomes []dsync.QueryOutcome, verdict dsync.FleetVerdict, cfg dsync.Config) {
	rule := strings.Repeat("=", reportWidth)
	thin := strings.Repeat("-", reportWidth)
	periodUs := dsync.SamplePeriodUs(cfg.SampleRateHz)
	reference := referenceOutcome(outcomes, verdict.Reference)

	fmt.Println(rule)
	fmt.Println(ui.TitleStyle("DANTESYNC AUDIO-GRADE SYNC VERIFICATION REPORT"))
	fmt.Println(rule)
	fmt.Printf("  Query Time:    %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Sample Rate:   %d Hz (1 sample = %.1f us)\n", cfg.SampleRateHz, periodUs)
	fmt.Printf("  Reference:     %s\n", verdict.Reference)
	fmt.Printf("  Hosts:         %d online, %d offline, %d total\n",
		verdict.Online, verdict.Total-verdict.Online, verdict.Total)
	fmt.Println()
	fmt.Println("  The proof of audio sync is in the servo internals (drift rate, mode), not in wall")
	fmt.Println("  clock offsets measured via UDP, which carry ~1ms of network noise.")
	fmt.Println(rule)
	fmt.Println()

	// Table 1: audio sync quality
	fmt.Println(ui.TitleStyle("TABLE 1: AUDIO SYNC QUALITY"))
	fmt.Printf("  Thresholds: SAMPLE-LOCKED < %.1f us/s | GOOD < %.1f us/s | MARGINAL < %.1f us/s | DRIFTING\n",
		dsync.DriftNanoUs, dsync.DriftLockUs, dsync.DriftProdUs)
	fmt.Println(thin)
	fmt.Printf("%-15s%-7s%-6s%-14s%-11s%-16s%-15s%-8s\n",
		"Host", "Mode", "Lock", "Drift (us/s)", "Samp/sec", "Time to 1 samp", "Quality", "Settled")
	fmt.Println(thin)
	for _, outcome := range outcomes {
		if !outcome.Online() {
			fmt.Printf("%-15s%-7s%-6s%-14s%-11s%-16s%-15s%-8s\n",
				outcome.Target.Name, "--", "--", "--", "--", "--", "OFFLINE", "--")
			continue
		}
		sample := outcome.Sample
		tier, metrics := dsync.Classify(sample, cfg.SampleRateHz)
		lock := "no"
		if sample.IsLocked {
			lock = "YES"
		}
		settled := "--"
		if sample.HasNTPFields {
			settled = "no"
			if sample.Settled {
				settled = "YES"
			}
		}
		fmt.Printf("%-15s%-7s%-6s%+12.2f  %9.3f  %14s  %-15s%-8s\n",
			outcome.Target.Name, sample.Mode, lock, sample.DriftRateUsPerSec,
			metrics.DriftSamplesPerSec, formatTimeToSample(metrics.TimeToOneSampleSec),
			tier, settled)
	}
	fmt.Println()

	// Table 2: frequency discipline
	fmt.Println(ui.TitleStyle("TABLE 2: FREQUENCY DISCIPLINE"))
	fmt.Println("  Servo internals: drift rate near 0 means clocks tick at the same rate. PTP offset")
	fmt.Println("  is phase vs the grandmaster in device uptime, not UTC; large values are normal.")
	fmt.Println(thin)
	fmt.Printf("%-15s%-14s%-14s%-18s%-16s%-7s%-22s%-5s\n",
		"Host", "Drift (us/s)", "Freq Adj PPM", "PTP Offset", "Raw (ns)", "Mode", "GM UUID", "GM")
	fmt.Println(thin)
	for _, outcome := range outcomes {
		if !outcome.Online() {
			fmt.Printf("%-15s%-14s%-14s%-18s%-16s%-7s%-22s--\n",
				outcome.Target.Name, "--", "--", "--", "--", "--", "--")
			continue
		}
		sample := outcome.Sample
		gmMatch := "OK"
		if reference != nil && sample.Grandmaster != reference.Sample.Grandmaster {
			gmMatch = "DIFF"
		}
		fmt.Printf("%-15s%+12.2f  %+12.2f  %-18s%-16d%-7s%-22s%-5s\n",
			outcome.Target.Name, sample.DriftRateUsPerSec, sample.FreqAdjPpm,
			formatNsOffset(sample.PTPOffsetNs), sample.PTPOffsetNs, sample.Mode,
			sample.Grandmaster, gmMatch)
	}
	fmt.Println()

	// Table 3: UTC alignment
	fmt.Println(ui.TitleStyle("TABLE 3: UTC TIME ALIGNMENT"))
	fmt.Println("  Wall offset vs reference includes round-trip noise and cannot verify sub-sample")
	fmt.Println("  precision. NTP columns come from the expanded protocol; '--' means an older daemon.")
	fmt.Println(thin)
	fmt.Printf("%-15s%-12s%-16s%-14s%-13s%-13s%-8s%-10s\n",
		"Host", "Wall Clock", "Wall Offset", "+-Uncertainty", "NTP Offset", "Accum Phase", "NTP OK", "RTT (us)")
	fmt.Println(thin)
	for _, outcome := range outcomes {
		if !outcome.Online() {
			fmt.Printf("%-15s%-12s%-16s%-14s%-13s%-13s%-8s%-10s\n",
				outcome.Target.Name, "--", "--", "--", "--", "--", "--", "--")
			continue
		}
		sample := outcome.Sample

		wall := "?"
		uncertainty := ""
		if outcome.Target.Name == verdict.Reference {
			wall = "(reference)"
		} else if reference != nil {
			offsetUs := (float64(sample.SystemTimeNs) - float64(reference.Sample.SystemTimeNs)) / 1000
			wall = fmt.Sprintf("%+.1f us", offsetUs)
			uncertainty = fmt.Sprintf("+/-%.0f us", outcome.RTTUs/2)
		}

		ntpOffset, phase, ntpOK := "--", "--", "--"
		if sample.HasNTPFields {
			ntpOffset = fmt.Sprintf("%+d us", sample.NTPOffsetUs)
			phase = fmt.Sprintf("%+d us", sample.AccumulatedPhaseUs)
			ntpOK = "OK"
			if sample.NTPFailed {
				ntpOK = "FAIL"
			}
		}

		fmt.Printf("%-15s%-12s%-16s%-14s%-13s%-13s%-8s%8.0f\n",
			outcome.Target.Name, formatHumanTime(sample.SystemTimeNs), wall, uncertainty,
			ntpOffset, phase, ntpOK, outcome.RTTUs)
	}
	fmt.Println()

	// Table 4: hardware & network
	fmt.Println(ui.TitleStyle("TABLE 4: HARDWARE & NETWORK"))
	fmt.Println(thin)
	fmt.Printf("%-15s%-10s%-24s%-14s%-14s%-10s%-22s\n",
		"Host", "Platform", "Counter", "Frequency", "Uptime", "RTT (us)", "GM UUID")
	fmt.Println(thin)
	for _, outcome := range outcomes {
		if !outcome.Online() {
			fmt.Printf("%-15s%-10s%-24s%-14s%-14s%-10s--\n",
				outcome.Target.Name, "--", "--", "--", "--", "--")
			continue
		}
		sample := outcome.Sample
		platform := "Windows"
		if sample.MonotonicFreqHz == 1_000_000_000 {
			platform = "Linux"
		}
		fmt.Printf("%-15s%-10s%-24d%-14s%-14s%8.0f  %s\n",
			outcome.Target.Name, platform, sample.MonotonicCounter,
			formatFreq(sample.MonotonicFreqHz), formatUptime(sample.MonotonicCounter, sample.MonotonicFreqHz),
			outcome.RTTUs, sample.Grandmaster)
	}
	fmt.Println()

	printSummary(outcomes, verdict, cfg)
}

func printSummary(outcomes []dsync.QueryOutcome, verdict dsync.FleetVerdict, cfg dsync.Config) {
	rule := strings.Repeat("=", reportWidth)
	thin := strings.Repeat("-", reportWidth)

	fmt.Println(rule)
	fmt.Println(ui.TitleStyle("SUMMARY"))
	fmt.Println(thin)

	if verdict.Online == 0 {
		fmt.Println("  " + ui.BadStyle("ERROR: No hosts responding!"))
		fmt.Println(rule)
		return
	}

	var offline []string
	tierHosts := make(map[dsync.QualityTier][]string)
	for _, outcome := range outcomes {
		tier := dsync.ClassifyOutcome(outcome, cfg.SampleRateHz)
		if tier == dsync.TierOffline {
			offline = append(offline, outcome.Target.Name)
			continue
		}
		tierHosts[tier] = append(tierHosts[tier], outcome.Target.Name)
	}

	fmt.Printf("  Hosts responding:    %d/%d\n", verdict.Online, verdict.Total)
	if len(offline) > 0 {
		fmt.Printf("  Offline hosts:       %s\n", strings.Join(offline, ", "))
	}
	fmt.Println()
	fmt.Printf("  Audio Sync @ %.0fkHz:\n", float64(cfg.SampleRateHz)/1000)
	fmt.Printf("    Max drift rate:    %.2f us/s  (%s)\n", verdict.MaxDriftUsPerSec, verdict.MaxDriftHost)
	fmt.Printf("    As samples/sec:    %.3f samples/sec of error\n", verdict.MaxDriftSamplesPerSec)

	timeToSample := math.Inf(1)
	if verdict.MaxDriftUsPerSec >= 0.001 {
		timeToSample = dsync.SamplePeriodUs(cfg.SampleRateHz) / verdict.MaxDriftUsPerSec
	}
	fmt.Printf("    Time to 1 sample:  %s until 1 sample of accumulated error\n",
		formatTimeToSample(timeToSample))
	fmt.Println()

	fmt.Println("  Servo Health:")
	allLocked := "YES"
	if !verdict.AllLocked {
		allLocked = ui.BadStyle("NO  <-- some hosts not locked!")
	}
	sameGM := "YES"
	if !verdict.SameGrandmaster {
		sameGM = ui.BadStyle(fmt.Sprintf("NO  <-- %d grandmasters, network segmentation!", verdict.Grandmasters))
	}
	fmt.Printf("    All locked:        %s\n", allLocked)
	fmt.Printf("    Same grandmaster:  %s\n", sameGM)

	var breakdown []string
	for _, tier := range []dsync.QualityTier{
		dsync.TierSampleLocked, dsync.TierGood, dsync.TierMarginal, dsync.TierDrifting,
	} {
		if hosts := tierHosts[tier]; len(hosts) > 0 {
			breakdown = append(breakdown, fmt.Sprintf("%d %s", len(hosts), tier))
		}
	}
	fmt.Printf("    Quality breakdown: %s\n", strings.Join(breakdown, ", "))
	fmt.Println()

	fmt.Println("  " + verdictLine(verdict))
	fmt.Println(rule)
}
