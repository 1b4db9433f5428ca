package studylog

// ComputeStreak derives the streak from the recent window and today's date.
//
// When the newest entry was logged today every retained entry counts, so
// several sessions on the same day each add one. Otherwise a non-empty window
// yields 1. The newest entry is chosen by insertion order, not by comparing
// date strings.
func ComputeStreak(logs []Entry, today string) int {
	if len(logs) == 0 {
		return 0
	}
	newest := logs[0]
	for _, l := range logs[1:] {
		if l.CreatedAt.After(newest.CreatedAt) ||
			(l.CreatedAt.Equal(newest.CreatedAt) && l.ID > newest.ID) {
			newest = l
		}
	}
	if newest.Date == today {
		return len(logs)
	}
	return 1
}
