// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package resolver holds the pure merge rules applied when a server snapshot
// meets locally mutated state. Nothing here keeps state or does I/O.
package resolver

import (
	"sort"

	"github.com/MKhiriev/tally-sync/models"
)

// Outcome is the decision taken by [MergeWeeklyProgress].
type Outcome int

const (
	// AdoptedServer means the server record replaced the local one.
	AdoptedServer Outcome = iota
	// PreservedLocal means a recent optimistic increment was kept while the
	// schedule metadata moved to the server's.
	PreservedLocal
	// KeptLocalAnomaly means the server reported fewer completions with no
	// recent local activity; the local record was kept and the delivery is
	// suspected to be stale or out of order.
	KeptLocalAnomaly
)

func (o Outcome) String() string {
	switch o {
	case AdoptedServer:
		return "adopted_server"
	case PreservedLocal:
		return "preserved_local"
	case KeptLocalAnomaly:
		return "kept_local_anomaly"
	default:
		return "unknown"
	}
}

// MergeWeeklyProgress merges server record s into local record l (nil when
// there is none). recentActivity tells whether the user mutated this habit
// within the cooldown window.
//
// Rules, in order:
//  1. no local record: adopt s.
//  2. recent activity and l has more completions: keep l's count and local
//     timestamp, take s's target and week bounds.
//  3. s has at least as many completions, or no recent activity: adopt s.
//  4. otherwise (l ahead of s without recent activity): keep l.
//
// Rule 3 already takes every inactive case, so rule 4 is only the final
// return. Server-behind deliveries adopted under rule 3 are reported by
// [IsAnomaly].
func MergeWeeklyProgress(l *models.WeeklyProgressRecord, s models.WeeklyProgressRecord, recentActivity bool) (models.WeeklyProgressRecord, Outcome) {
	if l == nil {
		return s.Normalize(), AdoptedServer
	}

	if recentActivity && l.CurrentCompletions > s.CurrentCompletions {
		merged := models.WeeklyProgressRecord{
			HabitID:            s.HabitID,
			CurrentCompletions: l.CurrentCompletions,
			TargetCompletions:  s.TargetCompletions,
			WeekStart:          s.WeekStart,
			WeekEnd:            s.WeekEnd,
			ServerTimestamp:    l.ServerTimestamp,
			LocalUpdatedAt:     l.LocalUpdatedAt,
		}
		if merged.HabitID == "" {
			merged.HabitID = l.HabitID
		}
		return merged.Normalize(), PreservedLocal
	}

	if s.CurrentCompletions >= l.CurrentCompletions || !recentActivity {
		return s.Normalize(), AdoptedServer
	}

	return l.Normalize(), KeptLocalAnomaly
}

// IsAnomaly reports whether a merge where the server is behind the local
// record was settled in the server's favour only because the cooldown
// elapsed. Callers log these as suspected stale deliveries.
func IsAnomaly(l *models.WeeklyProgressRecord, s models.WeeklyProgressRecord, recentActivity bool, outcome Outcome) bool {
	if outcome == KeptLocalAnomaly {
		return true
	}
	return l != nil && !recentActivity && outcome == AdoptedServer && l.CurrentCompletions > s.CurrentCompletions
}

// MergeResult is one merged weekly record with the decision that produced it.
type MergeResult struct {
	Record  models.WeeklyProgressRecord
	Outcome Outcome
	Anomaly bool
}

// MergeWeeklyProgressSet merges whole collections keyed by habit id, keeping
// at most one record per habit.
//
//   - a server record for the same week goes through [MergeWeeklyProgress].
//   - a server record for a newer week replaces the local one.
//   - a server record for an older week than the local one is ignored while
//     the habit is recently active, and adopted otherwise.
//   - a local record with no server counterpart survives only if recent
//     reports true for its habit.
//
// The result is sorted by habit id.
func MergeWeeklyProgressSet(local, server []models.WeeklyProgressRecord, recent func(habitID string) bool) []MergeResult {
	if recent == nil {
		recent = func(string) bool { return false }
	}

	localByHabit := make(map[string]models.WeeklyProgressRecord, len(local))
	for _, l := range local {
		if cur, ok := localByHabit[l.HabitID]; !ok || l.WeekStart > cur.WeekStart {
			localByHabit[l.HabitID] = l
		}
	}

	serverByHabit := make(map[string]models.WeeklyProgressRecord, len(server))
	for _, s := range server {
		if s.HabitID == "" {
			continue
		}
		if cur, ok := serverByHabit[s.HabitID]; !ok || s.WeekStart > cur.WeekStart {
			serverByHabit[s.HabitID] = s
		}
	}

	results := make([]MergeResult, 0, len(serverByHabit)+len(localByHabit))
	for habitID, s := range serverByHabit {
		active := recent(habitID)
		l, ok := localByHabit[habitID]

		switch {
		case !ok:
			merged, outcome := MergeWeeklyProgress(nil, s, active)
			results = append(results, MergeResult{Record: merged, Outcome: outcome})
		case s.WeekStart == l.WeekStart:
			merged, outcome := MergeWeeklyProgress(&l, s, active)
			results = append(results, MergeResult{
				Record:  merged,
				Outcome: outcome,
				Anomaly: IsAnomaly(&l, s, active, outcome),
			})
		case s.WeekStart > l.WeekStart || !active:
			results = append(results, MergeResult{Record: s.Normalize(), Outcome: AdoptedServer})
		default:
			results = append(results, MergeResult{Record: l.Normalize(), Outcome: KeptLocalAnomaly, Anomaly: true})
		}
	}

	for habitID, l := range localByHabit {
		if _, ok := serverByHabit[habitID]; ok {
			continue
		}
		if recent(habitID) {
			results = append(results, MergeResult{Record: l.Normalize(), Outcome: PreservedLocal})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Record.HabitID < results[j].Record.HabitID
	})
	return results
}

// Records extracts the merged records.
func Records(results []MergeResult) []models.WeeklyProgressRecord {
	out := make([]models.WeeklyProgressRecord, 0, len(results))
	for _, r := range results {
		out = append(out, r.Record)
	}
	return out
}
