package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

const bucketProviderID = "64f000000000000000000001"

func TestBucketIDs_CoversRange(t *testing.T) {
	bucket := 5 * time.Minute
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"aligned single bucket", start, start.Add(5 * time.Minute), 1},
		{"aligned multi bucket", start, start.Add(30 * time.Minute), 6},
		{"unaligned start", start.Add(2 * time.Minute), start.Add(7 * time.Minute), 2},
		{"sub-bucket range", start.Add(time.Minute), start.Add(2 * time.Minute), 1},
		{"end on boundary excluded", start, start.Add(10 * time.Minute), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := BucketIDs(bucketProviderID, tt.start, tt.end, bucket)
			if len(ids) != tt.want {
				t.Errorf("expected %d bucket IDs, got %d: %v", tt.want, len(ids), ids)
			}
		})
	}
}

func TestBucketIDs_Format(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 3, 0, 0, time.UTC)
	ids := BucketIDs(bucketProviderID, start, start.Add(time.Minute), 5*time.Minute)
	if len(ids) != 1 {
		t.Fatalf("expected 1 ID, got %d", len(ids))
	}

	aligned := start.Truncate(5 * time.Minute)
	want := fmt.Sprintf("slot_%s_%d", bucketProviderID, aligned.Unix())
	if ids[0] != want {
		t.Errorf("expected %s, got %s", want, ids[0])
	}
}

// Two ranges of the same provider that overlap in time must always claim at
// least one common bucket, otherwise the lock cannot arbitrate them. Touching
// ranges must claim disjoint buckets when they meet on a bucket boundary.
func TestBucketIDs_OverlapSharesABucket(t *testing.T) {
	bucket := 5 * time.Minute
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	for offsetMin := 0; offsetMin < 30; offsetMin++ {
		for durMin := 1; durMin <= 45; durMin += 7 {
			aStart := base.Add(time.Duration(offsetMin) * time.Minute)
			aEnd := aStart.Add(time.Duration(durMin) * time.Minute)
			bStart := base.Add(13 * time.Minute)
			bEnd := bStart.Add(30 * time.Minute)

			overlaps := aStart.Before(bEnd) && aEnd.After(bStart)
			if !overlaps {
				continue
			}

			a := BucketIDs(bucketProviderID, aStart, aEnd, bucket)
			b := BucketIDs(bucketProviderID, bStart, bEnd, bucket)
			if !shareID(a, b) {
				t.Errorf("overlapping ranges [%s,%s) and [%s,%s) share no bucket",
					aStart.Format("15:04"), aEnd.Format("15:04"),
					bStart.Format("15:04"), bEnd.Format("15:04"))
			}
		}
	}
}

func TestBucketIDs_TouchingOnBoundaryDisjoint(t *testing.T) {
	bucket := 5 * time.Minute
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	mid := start.Add(30 * time.Minute)

	a := BucketIDs(bucketProviderID, start, mid, bucket)
	b := BucketIDs(bucketProviderID, mid, mid.Add(30*time.Minute), bucket)
	if shareID(a, b) {
		t.Error("back-to-back ranges meeting on a bucket boundary must not contend")
	}
}

func TestBucketIDs_DifferentProvidersNeverCollide(t *testing.T) {
	bucket := 5 * time.Minute
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	a := BucketIDs("64f000000000000000000001", start, start.Add(30*time.Minute), bucket)
	b := BucketIDs("64f000000000000000000002", start, start.Add(30*time.Minute), bucket)
	if shareID(a, b) {
		t.Error("bucket IDs of different providers must be disjoint")
	}
	for _, id := range a {
		if !strings.HasPrefix(id, "slot_64f000000000000000000001_") {
			t.Errorf("unexpected ID format: %s", id)
		}
	}
}

func shareID(a, b []string) bool {
	seen := make(map[string]bool, len(a))
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if seen[id] {
			return true
		}
	}
	return false
}
