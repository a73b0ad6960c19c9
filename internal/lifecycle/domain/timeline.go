package domain

import "time"

// ProjectTimeline derives one row per catalog stage from the subject's
// current stage and its stored history. The result depends on now, so it is
// recomputed on every read and never stored.
func ProjectTimeline(catalog *Catalog, s *Subject, now time.Time) []TimelineEntry {
	current, err := catalog.IndexOf(s.stage)
	if err != nil {
		current = -1
	}

	out := make([]TimelineEntry, 0, catalog.Len())
	for i, stage := range catalog.stages {
		entry := TimelineEntry{
			StageKey: stage.Key,
			Title:    stage.Name,
			Status:   TimelinePending,
		}

		hist := latestHistory(s.timeline, stage.Key)
		if d, ok := s.expectedDates[stage.Key]; ok {
			entry.ExpectedDate = timePtr(d)
		} else if hist != nil && hist.ExpectedDate != nil {
			entry.ExpectedDate = timePtr(*hist.ExpectedDate)
		}

		switch {
		case i < current:
			entry.Status = TimelineCompleted
			if done := latestCompletion(s.timeline, stage.Key); done != nil && done.CompletedDate != nil {
				entry.CompletedDate = timePtr(*done.CompletedDate)
			}
		case i == current:
			entry.Status = TimelineCurrent
		}

		if entry.Status != TimelinePending &&
			entry.CompletedDate == nil &&
			entry.ExpectedDate != nil &&
			now.After(*entry.ExpectedDate) {
			entry.Status = TimelineDelayed
		}

		out = append(out, entry)
	}
	return out
}

func latestHistory(history []TimelineEntry, stageKey string) *TimelineEntry {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].StageKey == stageKey {
			return &history[i]
		}
	}
	return nil
}

// latestCompletion returns the most recent completed entry for the stage.
// A skip recorded after a rollback is undated and hides older dates.
func latestCompletion(history []TimelineEntry, stageKey string) *TimelineEntry {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].StageKey == stageKey && history[i].Status == TimelineCompleted {
			return &history[i]
		}
	}
	return nil
}
