package config

import (
	"reflect"
	"strings"
	"testing"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test. Blank counts as unset for the loader.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LOG_LEVEL", "TABULAR_LOG_LEVEL", "LOG_FORMAT", "TABULAR_LOG_FORMAT",
		"TABULAR_SKIP_BOM", "TABULAR_SANITIZE_UTF8", "TABULAR_CHECK_INTERVAL",
		"TABULAR_AUTO_WIDTH", "TABULAR_WIDTH_PADDING", "TABULAR_MAX_WIDTH", "TABULAR_DEFAULT_SHEET",
		"TABULAR_REMOTE_MAX_BYTES", "TABULAR_USER_AGENT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %s, want %s", cfg, Default())
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TABULAR_SKIP_BOM", "false")
	t.Setenv("TABULAR_CHECK_INTERVAL", "500")
	t.Setenv("TABULAR_WIDTH_PADDING", "3.5")
	t.Setenv("TABULAR_DEFAULT_SHEET", "Data")
	t.Setenv("TABULAR_REMOTE_MAX_BYTES", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Document.SkipBOM {
		t.Error("Document.SkipBOM = true, want false")
	}
	if cfg.Document.CheckInterval != 500 {
		t.Errorf("Document.CheckInterval = %d, want %d", cfg.Document.CheckInterval, 500)
	}
	if cfg.Workbook.WidthPadding != 3.5 {
		t.Errorf("Workbook.WidthPadding = %g, want %g", cfg.Workbook.WidthPadding, 3.5)
	}
	if cfg.Workbook.DefaultSheet != "Data" {
		t.Errorf("Workbook.DefaultSheet = %q, want %q", cfg.Workbook.DefaultSheet, "Data")
	}
	if cfg.Remote.MaxBytes != 1024 {
		t.Errorf("Remote.MaxBytes = %d, want %d", cfg.Remote.MaxBytes, 1024)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	clearEnv(t)
	t.Setenv("TABULAR_LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantMsg string
	}{
		{name: "bad integer", env: "TABULAR_CHECK_INTERVAL", value: "often", wantMsg: "invalid integer"},
		{name: "bad bool", env: "TABULAR_AUTO_WIDTH", value: "sometimes", wantMsg: "invalid boolean"},
		{name: "bad float", env: "TABULAR_MAX_WIDTH", value: "wide", wantMsg: "invalid float"},
		{name: "validation failure", env: "TABULAR_CHECK_INTERVAL", value: "0", wantMsg: "TABULAR_CHECK_INTERVAL"},
		{name: "width beyond excel limit", env: "TABULAR_MAX_WIDTH", value: "300", wantMsg: "TABULAR_MAX_WIDTH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error for %s=%q", tt.env, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"
	cfg.Workbook.DefaultSheet = "  "

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"LOG_LEVEL", "LOG_FORMAT", "TABULAR_DEFAULT_SHEET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestSetField_StringSlice(t *testing.T) {
	var target struct{ Names []string }
	v := reflect.ValueOf(&target).Elem().Field(0)

	if err := setField(v, "a, b ,,c"); err != nil {
		t.Fatalf("setField() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(target.Names, want) {
		t.Errorf("Names = %v, want %v", target.Names, want)
	}
}

func TestConfigString(t *testing.T) {
	str := Default().String()
	for _, want := range []string{`Level: "info"`, "CheckInterval: 100", `DefaultSheet: "Sheet1"`, "MaxBytes: 268435456"} {
		if !strings.Contains(str, want) {
			t.Errorf("String() = %s, missing %s", str, want)
		}
	}
}
