package heatmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"habitmap/internal/habit"

	"gopkg.in/yaml.v3"
)

// ViewType selects the layout algorithm
type ViewType string

const (
	Yearly  ViewType = "yearly"
	Monthly ViewType = "monthly"
)

// MonthScope selects which months a monthly view shows
type MonthScope string

const (
	AllMonths    MonthScope = "all"     // every month present in the data
	CurrentMonth MonthScope = "current" // only the month containing today
)

// ErrInvalidConfig is wrapped by every configuration parse error
var ErrInvalidConfig = errors.New("invalid heatmap config")

// ConfigError describes a rejected configuration line
type ConfigError struct {
	Line   int // 1-based, 0 when the error is not tied to a line
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Config is the parsed body of a heatmap-habit code block
type Config struct {
	ViewType     ViewType
	SearchPath   string
	DateField    string
	ValueFields  []string
	DefaultValue *float64
	WeekStart    WeekStart
	Aggregation  habit.Method // empty means the global setting applies
	MonthScope   MonthScope
	Extra        map[string]string // keys this version does not use
}

// Defaults fill in keys a block leaves out
type Defaults struct {
	ViewType   ViewType
	DateField  string
	ValueField string
	WeekStart  WeekStart
}

// DefaultDefaults returns the built-in fallbacks
func DefaultDefaults() Defaults {
	return Defaults{
		ViewType:   Yearly,
		DateField:  "date",
		ValueField: "value",
		WeekStart:  Monday,
	}
}

// Fields returns the extraction settings of the block
func (c Config) Fields() habit.Fields {
	return habit.Fields{
		DateField:    c.DateField,
		ValueFields:  c.ValueFields,
		DefaultValue: c.DefaultValue,
	}
}

// ParseConfig reads `key: value` lines. Blank lines and lines starting with
// '#' are skipped, only the first colon splits, and matching quotes around a
// value are removed. A key with an empty value followed by `- item` lines is
// read as a list.
func ParseConfig(source string, d Defaults) (Config, error) {
	raw := make(map[string]string)
	lists := make(map[string][]string)
	var order []string
	listKey := ""

	for i, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if listKey != "" && strings.HasPrefix(trimmed, "- ") {
			lists[listKey] = append(lists[listKey], stripQuotes(strings.TrimSpace(trimmed[2:])))
			continue
		}
		listKey = ""

		idx := strings.Index(trimmed, ":")
		if idx == -1 {
			return Config{}, &ConfigError{Line: i + 1, Reason: fmt.Sprintf("expected key: value, got %q", trimmed)}
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:idx]))
		if key == "" {
			return Config{}, &ConfigError{Line: i + 1, Reason: "missing key before ':'"}
		}
		value := stripQuotes(strings.TrimSpace(trimmed[idx+1:]))

		if _, seen := raw[key]; !seen {
			order = append(order, key)
		}
		raw[key] = value
		if value == "" {
			listKey = key
		}
	}

	cfg := Config{
		ViewType:   Yearly,
		DateField:  d.DateField,
		WeekStart:  d.WeekStart,
		MonthScope: AllMonths,
	}
	if d.ViewType == Monthly {
		cfg.ViewType = Monthly
	}
	if cfg.DateField == "" {
		cfg.DateField = "date"
	}
	if cfg.WeekStart == "" {
		cfg.WeekStart = Monday
	}
	if d.ValueField != "" {
		cfg.ValueFields = []string{d.ValueField}
	} else {
		cfg.ValueFields = []string{"value"}
	}

	for _, key := range order {
		value := raw[key]
		switch key {
		case "type":
			switch ViewType(strings.ToLower(value)) {
			case "":
			case Yearly:
				cfg.ViewType = Yearly
			case Monthly:
				cfg.ViewType = Monthly
			default:
				return Config{}, &ConfigError{Reason: fmt.Sprintf("unknown type %q (want yearly or monthly)", value)}
			}
		case "search_path":
			cfg.SearchPath = value
		case "date_field":
			if value != "" {
				cfg.DateField = value
			}
		case "value_field":
			fields, err := parseFieldList(value, lists[key])
			if err != nil {
				return Config{}, err
			}
			if len(fields) > 0 {
				cfg.ValueFields = fields
			}
		case "default_value":
			if value == "" {
				continue
			}
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Config{}, &ConfigError{Reason: fmt.Sprintf("default_value %q is not a number", value)}
			}
			cfg.DefaultValue = &f
		case "week_start_day":
			if value == "" {
				continue
			}
			ws, err := ParseWeekStart(value)
			if err != nil {
				return Config{}, &ConfigError{Reason: err.Error()}
			}
			cfg.WeekStart = ws
		case "aggregation":
			if value == "" {
				continue
			}
			m, err := habit.ParseMethod(value)
			if err != nil {
				return Config{}, &ConfigError{Reason: err.Error()}
			}
			cfg.Aggregation = m
		case "month_scope":
			switch MonthScope(strings.ToLower(value)) {
			case AllMonths, "":
				cfg.MonthScope = AllMonths
			case CurrentMonth:
				cfg.MonthScope = CurrentMonth
			default:
				return Config{}, &ConfigError{Reason: fmt.Sprintf("unknown month_scope %q (want all or current)", value)}
			}
		default:
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]string)
			}
			cfg.Extra[key] = value
		}
	}

	return cfg, nil
}

// parseFieldList accepts `a`, `a, b`, a YAML flow list `[a, b]`, or block
// list items collected by the caller.
func parseFieldList(value string, items []string) ([]string, error) {
	if value == "" {
		return cleanFields(items), nil
	}
	if strings.HasPrefix(value, "[") {
		var fields []string
		if err := yaml.Unmarshal([]byte(value), &fields); err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("value_field list %q: %v", value, err)}
		}
		return cleanFields(fields), nil
	}
	return cleanFields(strings.Split(value, ",")), nil
}

func cleanFields(in []string) []string {
	var out []string
	for _, f := range in {
		f = stripQuotes(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
