package snr

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-rf/series"
)

const tol = 1e-9

func testTable(t *testing.T) *series.Table {
	t.Helper()
	tbl, err := series.NewTable([]float64{0.9, 0.95, 1.0, 1.01, 1.05, 1.1})
	if err != nil {
		t.Fatal(err)
	}
	columns := []struct {
		name   string
		values []float64
	}{
		{"sharp", []float64{-80, -70, -10, -20, -75, -90}},
		{"shoulder", []float64{-80, -70, -30, -5, -75, -90}},
	}
	for _, c := range columns {
		if err := tbl.AddColumn(c.name, c.values); err != nil {
			t.Fatal(err)
		}
	}
	return tbl
}

func TestDescribe(t *testing.T) {
	got, err := Describe(testTable(t), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d stats, want 2", len(got))
	}

	tests := []struct {
		want Stat
	}{
		{Stat{Name: "sharp", Frequency: 1.0, AtFreq: -10, Signal: -15, NoiseFloor: -78.75, SN: 68.75}},
		{Stat{Name: "shoulder", Frequency: 1.0, AtFreq: -30, Signal: -17.5, NoiseFloor: -78.75, SN: 61.25}},
	}
	for i, tt := range tests {
		g := got[i]
		if g.Name != tt.want.Name || g.Frequency != tt.want.Frequency || g.AtFreq != tt.want.AtFreq {
			t.Errorf("stat %d = %+v, want %+v", i, g, tt.want)
		}
		for _, c := range []struct {
			field     string
			got, want float64
		}{
			{"signal", g.Signal, tt.want.Signal},
			{"noise", g.NoiseFloor, tt.want.NoiseFloor},
			{"sn", g.SN, tt.want.SN},
		} {
			if math.Abs(c.got-c.want) > tol {
				t.Errorf("%s %s = %v, want %v", g.Name, c.field, c.got, c.want)
			}
		}
	}
}

func TestDescribeProbeOutsideTrace(t *testing.T) {
	s, err := series.New("trace", []float64{1, 2, 3, 4}, []float64{-60, -50, -40, -30})
	if err != nil {
		t.Fatal(err)
	}

	st, err := NewDescriber(nil).DescribeSeries(s, 10)
	if err != nil {
		t.Fatal(err)
	}
	if st.Frequency != 4 || st.AtFreq != -30 {
		t.Errorf("nearest sample = %v/%v, want 4/-30", st.Frequency, st.AtFreq)
	}
	if !math.IsNaN(st.Signal) {
		t.Errorf("empty band should average to NaN, got %v", st.Signal)
	}
	// 25th percentile of [-60 -50 -40 -30] is -52.5
	if math.Abs(st.SN-22.5) > tol {
		t.Errorf("SN = %v, want 22.5 from the point value alone", st.SN)
	}
}

func TestDescribeCustomConfig(t *testing.T) {
	s, err := series.New("trace", []float64{1, 2, 3, 4, 5}, []float64{-50, -40, -30, -20, -10})
	if err != nil {
		t.Fatal(err)
	}

	d := NewDescriber(&Config{Window: 1, NoisePercentile: 50})
	st, err := d.DescribeSeries(s, 3)
	if err != nil {
		t.Fatal(err)
	}
	if st.Signal != -30 || st.NoiseFloor != -30 || st.SN != 0 {
		t.Errorf("got %+v", st)
	}
}

func TestDescribeErrors(t *testing.T) {
	empty, _ := series.New("empty", nil, nil)
	if _, err := NewDescriber(nil).DescribeSeries(empty, 1); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}

	s, _ := series.New("trace", []float64{1, 2}, []float64{0, 0})
	for _, cfg := range []*Config{
		{Window: -1, NoisePercentile: 25},
		{Window: 0.02, NoisePercentile: 101},
	} {
		if _, err := NewDescriber(cfg).DescribeSeries(s, 1); err == nil {
			t.Errorf("expected validation error for %+v", cfg)
		}
	}
}
