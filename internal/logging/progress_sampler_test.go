package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize int
		wantSize   int
	}{
		{"default bucket size for zero", 0, 25},
		{"default bucket size for negative", -1, 25},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "message") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSamplerBucketsAndMessages(t *testing.T) {
	s := NewProgressSampler(25)

	if !s.ShouldLog(0, "preparing") {
		t.Error("first update should log")
	}
	if s.ShouldLog(10, "preparing") {
		t.Error("same bucket and message should not log")
	}
	if !s.ShouldLog(30, "preparing") {
		t.Error("crossing a bucket should log")
	}
	if !s.ShouldLog(30, "summarizing") {
		t.Error("new message should log")
	}
	if s.ShouldLog(5, "summarizing") {
		t.Error("backwards percent with same message should not log")
	}
	if !s.ShouldLog(150, "summarizing") {
		t.Error("clamped 100 should log as final bucket")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(25)
	s.ShouldLog(80, "summarizing")
	s.Reset()
	if s.lastBucket != -1 || s.lastMessage != "" {
		t.Fatalf("expected reset state, got bucket=%d message=%q", s.lastBucket, s.lastMessage)
	}
	if !s.ShouldLog(0, "") {
		t.Error("first bucket after reset should log")
	}
}
