package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schemascribe/scribe-engine/pkg/models"
)

const runKeyLayout = "20060102150405"

// ReconcileWrites computes the minimal write-set recording this synthesis
// run: one sentinel entry, one entry per change discovered only in embedded
// comments, and one entry per manual previous-change line not yet persisted.
// Every write is guarded against the existing snapshot so repeated runs over
// an applied result produce an empty set; the guards are computed against
// the snapshot the engine read, not a live re-check.
func ReconcileWrites(now time.Time, entries []models.ChangeEntry, previousLines []string, existing []models.MetadataEntry) []models.MetadataEntry {
	runKey := now.Format(runKeyLayout)

	existingValues := make(map[string]struct{}, len(existing))
	historyValues := make(map[string]struct{})
	historyKeys := make(map[string]struct{})
	for _, entry := range existing {
		value := strings.TrimSpace(entry.Value)
		existingValues[value] = struct{}{}
		if strings.HasPrefix(strings.ToLower(entry.Key), HistoryKeyPrefix) {
			historyValues[value] = struct{}{}
			// Dates may drift between the comment and property copies of
			// one logical change; guard on author+description as well so
			// a drifted date never re-inserts the same change every run.
			if parsed, ok := ParseHistoryProperty(value, ""); ok {
				historyKeys[parsed.DedupKey()] = struct{}{}
			}
		}
	}

	var writes []models.MetadataEntry

	if _, have := existingValues[SentinelSentence]; !have {
		writes = append(writes, models.MetadataEntry{
			Key:   HistoryKeyPrefix + runKey,
			Value: SentinelSentence,
		})
	}

	for _, entry := range entries {
		// The leading dash keeps the stored value parseable by the same
		// grammar as header lines on later runs.
		value := "- " + entry.RenderLine()
		if _, have := historyValues[value]; have {
			continue
		}
		if _, have := historyKeys[entry.DedupKey()]; have {
			continue
		}
		writes = append(writes, models.MetadataEntry{
			Key:   historyEntryKey(entry),
			Value: value,
		})
	}

	counter := 0
	for _, raw := range dedupLines(previousLines) {
		if _, have := existingValues[raw]; have {
			continue
		}
		counter++
		writes = append(writes, models.MetadataEntry{
			Key:   fmt.Sprintf("%s-%s-%d", PreviousKeyPrefix, runKey, counter),
			Value: raw,
		})
	}

	return writes
}

// historyEntryKey builds a date-derived key with a fresh unique suffix so
// two changes on the same day never collide.
func historyEntryKey(entry models.ChangeEntry) string {
	datePart := strings.ReplaceAll(entry.Date, "-", "")
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s%s-%s", HistoryKeyPrefix, datePart, suffix)
}
