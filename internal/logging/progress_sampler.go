package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the message changes or the percentage crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize  int
	lastMessage string
	lastBucket  int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 25%) or when the message changes.
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. Percentages
// that move backwards never emit on their own.
func (s *ProgressSampler) ShouldLog(percent int, message string) bool {
	if s == nil {
		return true
	}
	emit := false
	message = strings.TrimSpace(message)
	if message != "" && message != s.lastMessage {
		s.lastMessage = message
		emit = true
	}
	if percent >= 0 {
		if percent > 100 {
			percent = 100
		}
		bucket := percent / s.bucketSize
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state when a new job starts.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastMessage = ""
	s.lastBucket = -1
}
