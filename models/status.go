package models

import "strings"

// StatusBucket is the coarse display state derived from free-text status
type StatusBucket string

const (
	BucketWaiting    StatusBucket = "waiting"
	BucketInProgress StatusBucket = "in_progress"
	BucketDone       StatusBucket = "done"
)

// Keyword lists are checked in priority order: done, then in progress.
var (
	doneKeywords = []string{"selesai", "siap diambil", "completed", "finished", "done"}

	inProgressKeywords = []string{
		"proses", "process", "dikerjakan", "pengerjaan",
		"pembongkaran", "finishing", "in progress",
	}
)

// ClassifyStatus maps any status text to exactly one bucket.
// Unrecognized and empty text is waiting.
func ClassifyStatus(status string) StatusBucket {
	s := strings.ToLower(status)
	if containsAny(s, doneKeywords) {
		return BucketDone
	}
	if containsAny(s, inProgressKeywords) {
		return BucketInProgress
	}
	return BucketWaiting
}

// ParseStatusBucket accepts the bucket names used in query strings
func ParseStatusBucket(raw string) (StatusBucket, bool) {
	switch StatusBucket(strings.ToLower(strings.TrimSpace(raw))) {
	case BucketWaiting:
		return BucketWaiting, true
	case BucketInProgress:
		return BucketInProgress, true
	case BucketDone:
		return BucketDone, true
	}
	return "", false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
