package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-rf/algorithms/capbank"
	"github.com/RyanBlaney/sonido-rf/algorithms/resonance"
	"github.com/RyanBlaney/sonido-rf/instrument"
	"github.com/RyanBlaney/sonido-rf/logging"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sonido.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
resonance:
  mode: whole
  six_db: true
bank:
  c_initial: 120
  c_res: 5
  c_num: 9
  lmh: 39
  offset: global
instrument:
  machine: N9010A
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Resonance.Mode != resonance.WholeSeries || !cfg.Resonance.SixDB {
		t.Errorf("resonance = %+v", cfg.Resonance)
	}
	if !cfg.Resonance.Slope || cfg.Resonance.ScoreThreshold != resonance.DefaultScoreThreshold {
		t.Errorf("unset resonance keys should keep defaults: %+v", cfg.Resonance)
	}
	want := capbank.Params{CInitial: 120, CRes: 5, CNum: 9, LmH: 39, Offset: capbank.OffsetGlobal}
	if cfg.Bank != want {
		t.Errorf("bank = %+v, want %+v", cfg.Bank, want)
	}
	if cfg.Instrument.Machine != instrument.N9010A {
		t.Errorf("instrument = %+v", cfg.Instrument)
	}
	if cfg.SNR.Window != 0.02 || cfg.SNR.NoisePercentile != 25 {
		t.Errorf("snr section should keep defaults: %+v", cfg.SNR)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "logging: [", "failed to parse"},
		{"bad mode", "resonance:\n  mode: diagonal\n", "failed to parse"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"even smoothing", "resonance:\n  smooth_width: 4\n", "resonance"},
		{"huge bank", "bank:\n  c_num: 40\n", "bank"},
		{"bad machine", "instrument:\n  machine: HP8591\n", "instrument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LoggingConfig{Level: "warn", Format: "text"}.NewLogger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", logging.Fields{"k": 1})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "k=1") {
		t.Errorf("missing warn line: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Error("colors should be off")
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LoggingConfig{Level: "info", Format: "json"}.NewLogger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("imported", logging.Fields{"files": 2})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("not JSON: %q: %v", buf.String(), err)
	}
	if entry["msg"] != "imported" || entry["files"] != float64(2) {
		t.Errorf("entry = %v", entry)
	}

	if _, err := (LoggingConfig{Format: "xml"}).NewLogger(&buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
