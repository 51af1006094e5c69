package main

import (
	"fmt"
	"math"
	"time"
)

func formatHumanTime(ns uint64) string {
	t := time.Unix(0, int64(ns))
	return fmt.Sprintf("%s.%03d", t.Format("15:04:05"), (ns%1_000_000_000)/1_000_000)
}

func formatUptime(counter, freqHz uint64) string {
	if freqHz == 0 {
		return "--"
	}
	totalSecs := counter / freqHz
	days := totalSecs / 86400
	hours := (totalSecs % 86400) / 3600
	mins := (totalSecs % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

func formatFreq(freqHz uint64) string {
	switch {
	case freqHz >= 1_000_000_000:
		return fmt.Sprintf("%.2f GHz", float64(freqHz)/1e9)
	case freqHz >= 1_000_000:
		return fmt.Sprintf("%.0f MHz", float64(freqHz)/1e6)
	case freqHz >= 1_000:
		return fmt.Sprintf("%.0f kHz", float64(freqHz)/1e3)
	}
	return fmt.Sprintf("%d", freqHz)
}

func formatNsOffset(ns int64) string {
	abs := ns
	sign := "+"
	if ns < 0 {
		abs = -ns
		sign = "-"
	}
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%s%.3f s", sign, float64(abs)/1e9)
	case abs >= 1_000_000:
		return fmt.Sprintf("%s%.3f ms", sign, float64(abs)/1e6)
	case abs >= 1_000:
		return fmt.Sprintf("%s%.1f us", sign, float64(abs)/1e3)
	}
	return fmt.Sprintf("%s%d ns", sign, abs)
}

func formatTimeToSample(secs float64) string {
	switch {
	case math.IsInf(secs, 1):
		return "inf"
	case secs >= 3600:
		return fmt.Sprintf("%.1fh", secs/3600)
	case secs >= 60:
		return fmt.Sprintf("%.1fm", secs/60)
	}
	return fmt.Sprintf("%.1fs", secs)
}
