package similarity

import "testing"

func TestIsValid(t *testing.T) {
	for _, a := range []Algorithm{EditDistance, SequenceRatio, Embedding} {
		if !a.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", a)
		}
	}
	for _, a := range []Algorithm{"", "cosine", "EMBEDDING", "levenshtein"} {
		if a.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", a)
		}
	}
}

func TestParse(t *testing.T) {
	a, err := Parse("")
	if err != nil || a != Embedding {
		t.Errorf("Parse(\"\") = %q, %v; want embedding", a, err)
	}
	a, err = Parse("sequence_ratio")
	if err != nil || a != SequenceRatio {
		t.Errorf("Parse(sequence_ratio) = %q, %v", a, err)
	}
	if _, err := Parse("jaccard"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestEditDistanceThresholdMatchesRawCutoff(t *testing.T) {
	for d := 0; d < 30; d++ {
		passes := FromDistance(d) >= EditDistanceThreshold
		if passes != (d < EditDistanceMaxRaw) {
			t.Errorf("d=%d: normalized pass=%v, raw pass=%v", d, passes, d < EditDistanceMaxRaw)
		}
	}
}

func TestFromDistance(t *testing.T) {
	if FromDistance(0) != 1 {
		t.Errorf("FromDistance(0) = %v, want 1", FromDistance(0))
	}
	if FromDistance(1) != 0.5 {
		t.Errorf("FromDistance(1) = %v, want 0.5", FromDistance(1))
	}
	if FromDistance(-3) != 1 {
		t.Errorf("negative distance should clamp to 0")
	}
	if FromDistance(5) <= FromDistance(6) {
		t.Error("smaller distance must score higher")
	}
}

func TestDefaultThreshold(t *testing.T) {
	if EditDistance.DefaultThreshold() != 0.1 {
		t.Errorf("edit distance threshold = %v", EditDistance.DefaultThreshold())
	}
	if SequenceRatio.DefaultThreshold() != 0.7 || Embedding.DefaultThreshold() != 0.7 {
		t.Error("ratio and embedding thresholds must be 0.7")
	}
}
