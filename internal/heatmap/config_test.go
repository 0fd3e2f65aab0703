package heatmap

import (
	"errors"
	"testing"

	"habitmap/internal/habit"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig("", DefaultDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ViewType != Yearly {
		t.Errorf("expected yearly, got %q", cfg.ViewType)
	}
	if cfg.DateField != "date" {
		t.Errorf("expected date field 'date', got %q", cfg.DateField)
	}
	if diff := cmp.Diff([]string{"value"}, cfg.ValueFields); diff != "" {
		t.Errorf("value fields mismatch (-want +got):\n%s", diff)
	}
	if cfg.WeekStart != Monday {
		t.Errorf("expected monday, got %q", cfg.WeekStart)
	}
	if cfg.Aggregation != "" {
		t.Errorf("expected no aggregation override, got %q", cfg.Aggregation)
	}
	if cfg.DefaultValue != nil {
		t.Errorf("expected no default value, got %v", *cfg.DefaultValue)
	}
	if cfg.MonthScope != AllMonths {
		t.Errorf("expected all months, got %q", cfg.MonthScope)
	}
}

func TestParseConfig_SettingsDefaults(t *testing.T) {
	cfg, err := ParseConfig("type: monthly", Defaults{ValueField: "minutes", WeekStart: Sunday})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ValueFields[0] != "minutes" || cfg.WeekStart != Sunday || cfg.DateField != "date" {
		t.Errorf("settings defaults not applied: %+v", cfg)
	}
}

func TestParseConfig_DefaultView(t *testing.T) {
	d := DefaultDefaults()
	d.ViewType = Monthly
	cfg, _ := ParseConfig("", d)
	if cfg.ViewType != Monthly {
		t.Errorf("expected settings view monthly, got %q", cfg.ViewType)
	}
	cfg, _ = ParseConfig("type: yearly", d)
	if cfg.ViewType != Yearly {
		t.Errorf("expected block to override the view, got %q", cfg.ViewType)
	}
}

func TestParseConfig_AllKeys(t *testing.T) {
	source := `
# habit block
type: Monthly
search_path: "Journal/Daily"
date_field: file.name
value_field: pages, 'minutes'
default_value: 1.5
week_start_day: Sunday
aggregation: average
month_scope: current
color: green
note: a: b
`
	cfg, err := ParseConfig(source, DefaultDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := 1.5
	want := Config{
		ViewType:     Monthly,
		SearchPath:   "Journal/Daily",
		DateField:    "file.name",
		ValueFields:  []string{"pages", "minutes"},
		DefaultValue: &def,
		WeekStart:    Sunday,
		Aggregation:  habit.Average,
		MonthScope:   CurrentMonth,
		Extra:        map[string]string{"color": "green", "note": "a: b"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfig_ValueFieldLists(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"single", "value_field: steps", []string{"steps"}},
		{"comma", "value_field: a,b , c", []string{"a", "b", "c"}},
		{"flow list", `value_field: [done, "minutes"]`, []string{"done", "minutes"}},
		{"block list", "value_field:\n  - done\n  - minutes\ntype: yearly", []string{"done", "minutes"}},
		{"empty keeps default", "value_field:", []string{"value"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig(tt.source, DefaultDefaults())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, cfg.ValueFields); diff != "" {
				t.Errorf("value fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
	}{
		{"no colon", "type: yearly\njust some text", 2},
		{"empty key", ": value", 1},
		{"unknown type", "type: weekly", 0},
		{"unknown aggregation", "aggregation: median", 0},
		{"unknown week start", "week_start_day: friday", 0},
		{"bad default", "default_value: lots", 0},
		{"bad scope", "month_scope: some", 0},
		{"bad flow list", "value_field: [a, b", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.source, DefaultDefaults())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cerr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, cerr.Line)
			}
		})
	}
}

func TestParseConfig_CommentsAndQuotes(t *testing.T) {
	cfg, err := ParseConfig("  # comment: ignored\n\nsearch_path: '#habit'\n", DefaultDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SearchPath != "#habit" {
		t.Errorf("expected #habit, got %q", cfg.SearchPath)
	}
	if cfg.Extra != nil {
		t.Errorf("comment should not become a key, got %v", cfg.Extra)
	}
}

func TestConfigFields(t *testing.T) {
	cfg, _ := ParseConfig("date_field: day\nvalue_field: a, b\ndefault_value: 2", DefaultDefaults())
	f := cfg.Fields()
	if f.DateField != "day" || len(f.ValueFields) != 2 || f.DefaultValue == nil || *f.DefaultValue != 2 {
		t.Errorf("unexpected fields %+v", f)
	}
}
