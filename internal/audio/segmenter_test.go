package audio

import "testing"

func loudFrame(size int) []int16 {
	f := make([]int16, size)
	for i := range f {
		f[i] = 2000
	}
	return f
}

func silentFrame(size int) []int16 {
	return make([]int16, size)
}

func testConfig() SegmenterConfig {
	return SegmenterConfig{
		FrameSize:       64,
		EnergyThreshold: 500,
		SilenceFrames:   3,
		MaxBufferFrames: 10,
	}
}

func TestSegmenterFinalizesAfterSilence(t *testing.T) {
	s := NewSegmenter(testConfig())

	for i := 0; i < 5; i++ {
		if _, ok := s.Ingest(loudFrame(64)); ok {
			t.Fatal("finalized during speech")
		}
	}
	var utterance []int16
	finalized := false
	for i := 0; i < 4; i++ {
		if out, ok := s.Ingest(silentFrame(64)); ok {
			utterance = out
			finalized = true
		}
	}
	if !finalized {
		t.Fatal("never finalized after silence run")
	}
	if len(utterance) != 5*64 {
		t.Errorf("utterance has %d samples, want %d", len(utterance), 5*64)
	}
}

func TestSegmenterFinalizeOnce(t *testing.T) {
	s := NewSegmenter(testConfig())
	for i := 0; i < 3; i++ {
		s.Ingest(loudFrame(64))
	}

	count := 0
	for i := 0; i < 20; i++ {
		if _, ok := s.Ingest(silentFrame(64)); ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("finalized %d times for one silence run, want 1", count)
	}
	if s.Speaking() {
		t.Error("still speaking after finalize")
	}
}

func TestSegmenterRingEviction(t *testing.T) {
	cfg := testConfig()
	s := NewSegmenter(cfg)

	for i := 0; i < cfg.MaxBufferFrames+7; i++ {
		s.Ingest(loudFrame(64))
	}
	var utterance []int16
	for i := 0; i < 4; i++ {
		if out, ok := s.Ingest(silentFrame(64)); ok {
			utterance = out
		}
	}
	if len(utterance) != cfg.MaxBufferFrames*64 {
		t.Errorf("buffer not bounded: %d samples, want %d", len(utterance), cfg.MaxBufferFrames*64)
	}
}

func TestSegmenterMalformedFrameDropped(t *testing.T) {
	s := NewSegmenter(testConfig())
	s.Ingest(loudFrame(64))

	if _, ok := s.Ingest(loudFrame(13)); ok {
		t.Fatal("malformed frame finalized an utterance")
	}
	if !s.Speaking() {
		t.Error("malformed frame corrupted VAD state")
	}

	// The open utterance still finalizes normally.
	finalized := false
	for i := 0; i < 4; i++ {
		if _, ok := s.Ingest(silentFrame(64)); ok {
			finalized = true
		}
	}
	if !finalized {
		t.Error("utterance lost after malformed frame")
	}
}

func TestSegmenterFlush(t *testing.T) {
	s := NewSegmenter(testConfig())

	if _, ok := s.Flush(); ok {
		t.Fatal("flush of empty segmenter produced an utterance")
	}

	s.Ingest(loudFrame(64))
	s.Ingest(loudFrame(64))
	out, ok := s.Flush()
	if !ok {
		t.Fatal("flush did not force-finalize buffered speech")
	}
	if len(out) != 2*64 {
		t.Errorf("flushed %d samples, want %d", len(out), 2*64)
	}
	if _, ok := s.Flush(); ok {
		t.Error("second flush produced an utterance")
	}
}
