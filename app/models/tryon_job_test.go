package models

import (
	"testing"
	"time"
)

func TestTryOnJobIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{status: TryOnStatusQueued, want: false},
		{status: TryOnStatusProcessing, want: false},
		{status: TryOnStatusDone, want: true},
		{status: TryOnStatusFailed, want: true},
	}

	for _, tt := range tests {
		job := &TryOnJob{Status: tt.status}
		if got := job.IsTerminal(); got != tt.want {
			t.Fatalf("IsTerminal() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestTryOnJobIsExpired(t *testing.T) {
	now := time.Now()
	job := &TryOnJob{ExpiresAt: now.Add(TryOnJobTTL)}

	if job.IsExpired(now) {
		t.Fatal("fresh job should not be expired")
	}
	if job.IsExpired(job.ExpiresAt) {
		t.Fatal("expiry instant itself is not yet expired")
	}
	if !job.IsExpired(job.ExpiresAt.Add(time.Second)) {
		t.Fatal("job past its expiry should be expired")
	}
}
