// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resolver

import (
	"sort"

	"github.com/MKhiriev/tally-sync/models"
)

// MergeVerifiedFlags merges the daily verified-today maps key by key. The
// server value is taken only for keys absent locally, so a local true is
// never downgraded; only an explicit reset clears it.
func MergeVerifiedFlags(local, server map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(local)+len(server))
	for habitID, verified := range server {
		merged[habitID] = verified
	}
	for habitID, verified := range local {
		merged[habitID] = verified
	}
	return merged
}

// MergeVerifications unions two verification lists by id. The server copy
// wins for a shared id, which is how backfilled streak metadata arrives.
// The result is sorted newest first.
func MergeVerifications(local, server []models.VerificationRecord) []models.VerificationRecord {
	byID := make(map[string]models.VerificationRecord, len(local)+len(server))
	order := make([]string, 0, len(local)+len(server))

	for _, v := range local {
		if _, ok := byID[v.ID]; !ok {
			order = append(order, v.ID)
		}
		byID[v.ID] = v
	}
	for _, v := range server {
		if _, ok := byID[v.ID]; !ok {
			order = append(order, v.ID)
		}
		byID[v.ID] = v
	}

	out := make([]models.VerificationRecord, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VerifiedAt.After(out[j].VerifiedAt)
	})
	return out
}

// MergeVerificationMap applies [MergeVerifications] per key. Keys known only
// locally are kept when keep reports true for them.
func MergeVerificationMap(local, server map[string][]models.VerificationRecord, keep func(key string) bool) map[string][]models.VerificationRecord {
	merged := make(map[string][]models.VerificationRecord, len(server))
	for key, records := range server {
		merged[key] = MergeVerifications(local[key], records)
	}
	for key, records := range local {
		if _, ok := server[key]; ok {
			continue
		}
		if keep != nil && keep(key) {
			merged[key] = MergeVerifications(records, nil)
		}
	}
	return merged
}
