package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(0)
	if s.bucketSize != 10 {
		t.Fatalf("bucketSize = %v, want 10", s.bucketSize)
	}
	if !s.ShouldLog(0, "decode") {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(5, "decode") {
		t.Fatal("same bucket should not log")
	}
	if !s.ShouldLog(12, "decode") {
		t.Fatal("new bucket should log")
	}
	if !s.ShouldLog(12, "window") {
		t.Fatal("stage change should log")
	}
	if !s.ShouldLog(150, "window") {
		t.Fatal("completion should log")
	}
	if s.ShouldLog(100, "window") {
		t.Fatal("repeated completion should not log")
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "stage") {
		t.Fatal("nil sampler should always log")
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 4); got != 25 {
		t.Fatalf("Percent(1,4) = %v", got)
	}
	if got := Percent(1, 0); got != -1 {
		t.Fatalf("Percent(1,0) = %v", got)
	}
}

func TestFanoutHandlerCollapsesNil(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
}
