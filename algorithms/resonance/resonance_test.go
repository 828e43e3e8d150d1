package resonance

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-rf/logging"
	"github.com/RyanBlaney/sonido-rf/series"
)

const tol = 1e-9

// triangle builds a sweep from 90 to 110 with 1 dB of roll-off per unit
// frequency either side of a 0 dB peak at 100
func triangle(t *testing.T) *series.Series {
	t.Helper()
	var freqs, amps []float64
	for f := 90.0; f <= 110; f++ {
		freqs = append(freqs, f)
		amps = append(amps, -math.Abs(f-100))
	}
	s, err := series.New("triangle", freqs, amps)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustSeries(t *testing.T, freqs, amps []float64) *series.Series {
	t.Helper()
	s, err := series.New("sweep", freqs, amps)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func quiet() Option {
	return WithLogger(&logging.NoOpLogger{})
}

func TestNearestOrdersByDistance(t *testing.T) {
	s := mustSeries(t, []float64{1, 2, 3, 4, 5}, []float64{-8, -4, 0, -2, -3})

	got := Nearest(s, 3)
	wantFreqs := []float64{5, 2, 4, 3, 1}
	if len(got) != len(wantFreqs) {
		t.Fatalf("got %d matches, want %d", len(got), len(wantFreqs))
	}
	for i, f := range wantFreqs {
		if got[i].Frequency != f {
			t.Errorf("rank %d: frequency %v, want %v (%+v)", i, got[i].Frequency, f, got)
		}
	}
	if got[0].Distance != 0 {
		t.Errorf("exact sample should have distance 0, got %v", got[0].Distance)
	}
}

func TestNearestTiesKeepIndexOrder(t *testing.T) {
	s := mustSeries(t, []float64{1, 2, 3}, []float64{-3, 0, -3})
	got := Nearest(s, 3)
	if got[0].Frequency != 1 || got[1].Frequency != 3 {
		t.Errorf("ties should keep index order: %+v", got)
	}
}

func TestNearestUsesOwnPeakAndHandlesEmpty(t *testing.T) {
	s := mustSeries(t, []float64{1, 2}, []float64{-10, -13})
	if got := Nearest(s, 3); got[0].Frequency != 2 {
		t.Errorf("target should be own peak minus drop: %+v", got)
	}

	empty := mustSeries(t, nil, nil)
	if got := Nearest(empty, 3); got == nil || len(got) != 0 {
		t.Errorf("empty series should give an empty, non-nil slice: %#v", got)
	}
}

func TestNearestToPutsNaNLast(t *testing.T) {
	s := mustSeries(t, []float64{1, 2, 3}, []float64{math.NaN(), -5, -3})
	got := NearestTo(s, -3)
	if got[0].Frequency != 3 || got[2].Frequency != 1 {
		t.Errorf("NaN amplitude should rank last: %+v", got)
	}
}

func TestAnalyzeSymmetricPeak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SixDB = true

	r, err := NewAnalyzer(cfg, quiet()).Analyze(triangle(t))
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"fmax", r.FMax, 100},
		{"f1", r.F1, 97},
		{"f2", r.F2, 103},
		{"f3", r.F3, 94},
		{"f4", r.F4, 106},
		{"f0", r.F0, 100},
		{"bw", r.BW, 6},
		{"bw6", r.BW6, 12},
		{"q", r.Q, 100.0 / 6.0},
		{"a", r.A, 1},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > tol {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if !(r.F1 < r.FMax && r.FMax < r.F2) || r.BW <= 0 {
		t.Errorf("expected f1 < fmax < f2 and BW > 0, got %+v", r)
	}
	if r.F0 != (r.F1+r.F2)/2 || r.Q != r.F0/r.BW {
		t.Errorf("f0/Q identities broken: %+v", r)
	}
	for _, p := range []Point{F1, F2, F3, F4} {
		if r.Score(p) != 1 {
			t.Errorf("score[%s] = %v, want exactly 1", p, r.Score(p))
		}
	}
	if low := r.LowConfidence(); len(low) != 0 {
		t.Errorf("no point should be low confidence, got %v", low)
	}
}

func TestAnalyzeSkipsSixDBByDefault(t *testing.T) {
	r, err := NewAnalyzer(nil, quiet()).Analyze(triangle(t))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(r.F3) || !math.IsNaN(r.F4) || !math.IsNaN(r.Score(F3)) {
		t.Errorf("6 dB points should be unset: %+v", r)
	}
	for _, f := range r.Describe() {
		if f.Key == "f3" || f.Key == "BW6" {
			t.Errorf("Describe should omit %s when the 6 dB search is off", f.Key)
		}
	}
}

func TestAnalyzeUnderSampledSweep(t *testing.T) {
	s := mustSeries(t, []float64{1, 2, 3, 4, 5}, []float64{-8, -4, 0, -4, -8})
	r, err := NewAnalyzer(nil, quiet()).Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if r.F1 != 2 || r.F2 != 4 {
		t.Errorf("f1/f2 = %v/%v, want 2/4", r.F1, r.F2)
	}
	if r.Score(F1) != 0 || r.Score(F2) != 0 {
		t.Errorf("1 dB off target should score 0, got %v", r.Scores())
	}
	low := r.LowConfidence()
	if len(low) != 2 || low[0] != F1 || low[1] != F2 {
		t.Errorf("LowConfidence = %v", low)
	}
}

func TestAnalyzePeakOnEdge(t *testing.T) {
	s := mustSeries(t, []float64{1, 2, 3, 4, 5}, []float64{-10, -6, -3, -1, 0})
	r, err := NewAnalyzer(nil, quiet()).Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if r.F1 != 3 || r.Score(F1) != 1 {
		t.Errorf("f1 = %v score %v, want 3 and 1", r.F1, r.Score(F1))
	}
	if r.F2 != 5 || r.Score(F2) != -2 {
		t.Errorf("edge f2 = %v score %v, want 5 and -2", r.F2, r.Score(F2))
	}
}

func TestAnalyzeModesDisagreeOnAsymmetricSweep(t *testing.T) {
	s := mustSeries(t,
		[]float64{1, 2, 3, 4, 5, 6, 7},
		[]float64{-3.2, -2.9, -1, 0, -6, -9, -12})

	split, err := NewAnalyzer(nil, quiet()).Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if split.F1 != 2 || split.F2 != 5 {
		t.Errorf("split mode f1/f2 = %v/%v, want 2/5", split.F1, split.F2)
	}

	cfg := DefaultConfig()
	cfg.Mode = WholeSeries
	whole, err := NewAnalyzer(cfg, quiet()).Analyze(s)
	if err != nil {
		t.Fatal(err)
	}
	if whole.F1 != 1 || whole.F2 != 2 {
		t.Errorf("whole mode f1/f2 = %v/%v, want 1/2", whole.F1, whole.F2)
	}
	if whole.F2 >= whole.FMax {
		t.Errorf("both whole-mode crossings should sit below the peak, got f2 %v", whole.F2)
	}
}

func TestAnalyzeOverrides(t *testing.T) {
	r, err := NewAnalyzer(nil, quiet(), WithOverride(F1, 96.5)).Analyze(triangle(t))
	if err != nil {
		t.Fatal(err)
	}
	if r.F1 != 96.5 || r.Score(F1) != 1 || r.F2 != 103 {
		t.Errorf("override not applied: %+v", r)
	}
	if math.Abs(r.BW-6.5) > tol {
		t.Errorf("BW = %v, want 6.5", r.BW)
	}
}

func TestAnalyzeZeroBandwidthIsInfinite(t *testing.T) {
	r, err := NewAnalyzer(nil, quiet(), WithOverride(F1, 100), WithOverride(F2, 100)).Analyze(triangle(t))
	if err != nil {
		t.Fatalf("degenerate bandwidth must not be an error: %v", err)
	}
	if r.BW != 0 || !math.IsInf(r.Q, 1) {
		t.Errorf("BW = %v Q = %v, want 0 and +Inf", r.BW, r.Q)
	}
	if !math.IsNaN(quality(0, 0)) {
		t.Error("0/0 should be NaN")
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	a := NewAnalyzer(nil, quiet())

	short := mustSeries(t, []float64{1, 2}, []float64{0, -3})
	if _, err := a.Analyze(short); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}

	flat := mustSeries(t, []float64{1, 2, 3}, []float64{-5, -5, -5})
	if _, err := a.Analyze(flat); !errors.Is(err, ErrNoPeak) {
		t.Errorf("expected ErrNoPeak, got %v", err)
	}

	nan := math.NaN()
	blank := mustSeries(t, []float64{1, 2, 3}, []float64{nan, nan, nan})
	if _, err := a.Analyze(blank); !errors.Is(err, ErrNoPeak) {
		t.Errorf("all-NaN sweep: expected ErrNoPeak, got %v", err)
	}

	smooth := DefaultConfig()
	smooth.SmoothWidth = 3
	gap := mustSeries(t, []float64{1, 2, 3, 4, 5}, []float64{-6, nan, 0, -3, -6})
	if _, err := NewAnalyzer(smooth, quiet()).Analyze(gap); !errors.Is(err, ErrNoPeak) {
		t.Errorf("smoothed NaN sweep: expected ErrNoPeak, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.SmoothWidth = 4
	if _, err := NewAnalyzer(cfg, quiet()).Analyze(triangle(t)); err == nil {
		t.Error("expected error for even smoothing width")
	}
}

func TestAnalyzeWithSmoothingKeepsSymmetry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmoothWidth = 3
	r, err := NewAnalyzer(cfg, quiet()).Analyze(triangle(t))
	if err != nil {
		t.Fatal(err)
	}
	if r.FMax != 100 || math.Abs(r.F0-100) > tol {
		t.Errorf("smoothing moved the resonance: fmax %v f0 %v", r.FMax, r.F0)
	}
}

func TestParseMode(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("whole")); err != nil || m != WholeSeries {
		t.Errorf("UnmarshalText(whole) = %v, %v", m, err)
	}
	if _, err := ParseMode("diagonal"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if text, _ := SplitAtPeak.MarshalText(); string(text) != "split" {
		t.Errorf("MarshalText = %q", text)
	}
}
