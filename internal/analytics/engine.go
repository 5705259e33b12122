// Package analytics derives team performance numbers from hunt snapshots:
// velocity over a trailing window, per-role utilization, quality metrics over
// completed hunts, per-phase duration analysis, and bottleneck detection.
// All computations are pure and tolerate malformed input — a missing duration
// counts as zero and a missing history as empty, never as an error.
package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/packworks/packtrack/internal/hunt"
	"github.com/packworks/packtrack/internal/topology"
)

// Trend classifications for velocity.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient data"
)

// Engine accumulates hunt snapshots and computes derived metrics. Recording
// is append-only with no de-duplication: feeding the same hunt twice
// double-counts it, which is the caller's responsibility to avoid.
type Engine struct {
	metrics []*hunt.Hunt
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{}
}

// NewFromSnapshot creates an engine pre-loaded with a registry snapshot.
func NewFromSnapshot(hunts []*hunt.Hunt) *Engine {
	e := New()
	for _, h := range hunts {
		e.RecordHuntMetrics(h)
	}
	return e
}

// RecordHuntMetrics appends one hunt snapshot to the metrics list.
func (e *Engine) RecordHuntMetrics(h *hunt.Hunt) {
	if h == nil {
		return
	}
	e.metrics = append(e.metrics, h)
}

// Velocity summarizes completion throughput over a trailing window.
type Velocity struct {
	CompletedHunts int     `json:"completedHunts"`
	HuntsPerDay    float64 `json:"huntsPerDay"`
	HuntsPerWeek   float64 `json:"huntsPerWeek"`
	HuntsPerMonth  float64 `json:"huntsPerMonth"`
	Trend          string  `json:"trend"`
}

// PackVelocity computes throughput over the trailing window of the given
// number of months. The trend compares the average duration of the
// chronological first half against the second half.
func (e *Engine) PackVelocity(months int) Velocity {
	if months < 1 {
		months = 1
	}
	cutoff := timeNow().UTC().AddDate(0, -months, 0)

	var window []*hunt.Hunt
	for _, h := range e.metrics {
		if h.Status != hunt.StatusCompleted || h.CompletedAt == nil {
			continue
		}
		if h.CompletedAt.Before(cutoff) {
			continue
		}
		window = append(window, h)
	}
	sort.Slice(window, func(i, j int) bool {
		return window[i].CompletedAt.Before(*window[j].CompletedAt)
	})

	days := float64(months) * 30
	perDay := float64(len(window)) / days

	return Velocity{
		CompletedHunts: len(window),
		HuntsPerDay:    perDay,
		HuntsPerWeek:   perDay * 7,
		HuntsPerMonth:  perDay * 30,
		Trend:          classifyTrend(window),
	}
}

// classifyTrend splits the window into chronological halves and compares
// average total duration. A second half at or below 90% of the first is
// improving; at or above 110% is declining.
func classifyTrend(window []*hunt.Hunt) string {
	if len(window) < 2 {
		return TrendInsufficientData
	}
	mid := len(window) / 2
	first := averageTotalDuration(window[:mid])
	second := averageTotalDuration(window[mid:])
	if first == 0 {
		if second == 0 {
			return TrendStable
		}
		return TrendDeclining
	}
	ratio := second / first
	switch {
	case ratio <= 0.9:
		return TrendImproving
	case ratio >= 1.1:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func averageTotalDuration(hunts []*hunt.Hunt) float64 {
	if len(hunts) == 0 {
		return 0
	}
	total := 0
	for _, h := range hunts {
		total += h.Metrics.TotalDuration
	}
	return float64(total) / float64(len(hunts))
}

// RoleStats aggregates phase records attributed to one role.
type RoleStats struct {
	Role           topology.Role `json:"role"`
	TaskCount      int           `json:"taskCount"`
	CompletedTasks int           `json:"completedTasks"`
	TotalMinutes   int           `json:"totalMinutes"`
	AverageMinutes float64       `json:"averageMinutes"`
}

// RoleUtilization aggregates every recorded phase record onto the roles of
// its column, across all hunts regardless of completion status. Merged
// columns attribute their records to each role they carry.
func (e *Engine) RoleUtilization() []RoleStats {
	stats := make(map[topology.Role]*RoleStats)

	for _, h := range e.metrics {
		columns, err := topology.Columns(h.TeamSize)
		if err != nil {
			continue // unknown team size in old data; skip rather than fail
		}
		rolesByColumn := make(map[string][]topology.Role, len(columns))
		for _, c := range columns {
			rolesByColumn[c.ID] = c.Roles
			for _, role := range c.Roles {
				if stats[role] == nil {
					stats[role] = &RoleStats{Role: role}
				}
			}
		}
		for _, rec := range h.PhaseHistory {
			minutes := 0
			if rec.Duration != nil {
				minutes = *rec.Duration
			}
			for _, role := range rolesByColumn[rec.Phase] {
				s := stats[role]
				s.TaskCount++
				s.TotalMinutes += minutes
				if h.Status == hunt.StatusCompleted {
					s.CompletedTasks++
				}
			}
		}
	}

	out := make([]RoleStats, 0, len(stats))
	for _, s := range stats {
		if s.TaskCount > 0 {
			s.AverageMinutes = float64(s.TotalMinutes) / float64(s.TaskCount)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

// QualityMetrics summarizes total durations over completed hunts.
type QualityMetrics struct {
	CompletedHunts  int     `json:"completedHunts"`
	AverageDuration float64 `json:"averageDuration"`
	MedianDuration  float64 `json:"medianDuration"`
	FastestHunt     int     `json:"fastestHunt"`
	SlowestHunt     int     `json:"slowestHunt"`
}

// QualityMetrics computes average, median, min and max total duration over
// completed hunts only.
func (e *Engine) QualityMetrics() QualityMetrics {
	var durations []int
	for _, h := range e.metrics {
		if h.Status != hunt.StatusCompleted {
			continue
		}
		durations = append(durations, h.Metrics.TotalDuration)
	}
	if len(durations) == 0 {
		return QualityMetrics{}
	}
	sort.Ints(durations)

	total := 0
	for _, d := range durations {
		total += d
	}
	median := float64(durations[len(durations)/2])
	if len(durations)%2 == 0 {
		median = float64(durations[len(durations)/2-1]+durations[len(durations)/2]) / 2
	}

	return QualityMetrics{
		CompletedHunts:  len(durations),
		AverageDuration: float64(total) / float64(len(durations)),
		MedianDuration:  median,
		FastestHunt:     durations[0],
		SlowestHunt:     durations[len(durations)-1],
	}
}

// PhaseStats aggregates all records of one phase column.
type PhaseStats struct {
	Phase          string  `json:"phase"`
	Count          int     `json:"count"`
	TotalMinutes   int     `json:"totalMinutes"`
	AverageMinutes float64 `json:"averageMinutes"`
	MinMinutes     int     `json:"minMinutes"`
	MaxMinutes     int     `json:"maxMinutes"`
}

// PhaseAnalysis aggregates count, total, average, min and max duration per
// phase column across every recorded hunt.
func (e *Engine) PhaseAnalysis() []PhaseStats {
	stats := make(map[string]*PhaseStats)

	for _, h := range e.metrics {
		for _, rec := range h.PhaseHistory {
			minutes := 0
			if rec.Duration != nil {
				minutes = *rec.Duration
			}
			s := stats[rec.Phase]
			if s == nil {
				s = &PhaseStats{Phase: rec.Phase, MinMinutes: minutes}
				stats[rec.Phase] = s
			}
			s.Count++
			s.TotalMinutes += minutes
			if minutes < s.MinMinutes {
				s.MinMinutes = minutes
			}
			if minutes > s.MaxMinutes {
				s.MaxMinutes = minutes
			}
		}
	}

	out := make([]PhaseStats, 0, len(stats))
	for _, s := range stats {
		s.AverageMinutes = float64(s.TotalMinutes) / float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phase < out[j].Phase })
	return out
}

// Bottleneck flags a role whose average phase duration stands out.
type Bottleneck struct {
	Role           topology.Role `json:"role"`
	AverageMinutes float64       `json:"averageMinutes"`
	Severity       string        `json:"severity"`
	Recommendation string        `json:"recommendation"`
}

// bottleneckFactor: a role is flagged when its average exceeds this multiple
// of the mean of all roles' averages.
const bottleneckFactor = 1.5

// IdentifyBottlenecks flags roles whose average phase duration exceeds 1.5x
// the mean of all active roles' averages. Roles with no recorded work are
// left out of the baseline.
func (e *Engine) IdentifyBottlenecks() []Bottleneck {
	var active []RoleStats
	for _, s := range e.RoleUtilization() {
		if s.TaskCount > 0 {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return nil
	}

	sum := 0.0
	for _, s := range active {
		sum += s.AverageMinutes
	}
	overall := sum / float64(len(active))
	if overall == 0 {
		return nil
	}

	var out []Bottleneck
	for _, s := range active {
		if s.AverageMinutes <= overall*bottleneckFactor {
			continue
		}
		slower := int(math.Round((s.AverageMinutes/overall - 1) * 100))
		out = append(out, Bottleneck{
			Role:           s.Role,
			AverageMinutes: s.AverageMinutes,
			Severity:       "high",
			Recommendation: fmt.Sprintf("%s phases run %d%% slower than the pack average; consider pairing or splitting this work", s.Role, slower),
		})
	}
	return out
}
