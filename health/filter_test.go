package health

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func registrations(names ...string) []Registration {
	regs := make([]Registration, len(names))
	for i, n := range names {
		regs[i] = Registration{Name: n, Checker: okChecker(n)}
	}
	return regs
}

func names(regs []Registration) []string {
	out := make([]string, len(regs))
	for i, r := range regs {
		out[i] = r.Name
	}
	return out
}

func TestFilter(t *testing.T) {
	regs := registrations("db", "cache", "queue")

	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{"nil selects all", nil, []string{"db", "cache", "queue"}},
		{"empty selects all", []string{}, []string{"db", "cache", "queue"}},
		{"single", []string{"db"}, []string{"db"}},
		{"registry order wins", []string{"queue", "db"}, []string{"db", "queue"}},
		{"case insensitive", []string{"CACHE", "Db"}, []string{"db", "cache"}},
		{"repeated names", []string{"db", "DB"}, []string{"db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(regs, tt.requested)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			if !reflect.DeepEqual(names(got), tt.want) {
				t.Errorf("Filter() = %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestFilter_Missing(t *testing.T) {
	regs := registrations("db")

	got, err := Filter(regs, []string{"db", "cache"})
	if got != nil {
		t.Errorf("Filter() = %v, want nil on error", names(got))
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Filter() error = %v, want ErrConfiguration", err)
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Filter() error type = %T, want *ConfigurationError", err)
	}
	if !reflect.DeepEqual(cfgErr.Missing, []string{"cache"}) {
		t.Errorf("Missing = %v, want [cache]", cfgErr.Missing)
	}
	if !reflect.DeepEqual(cfgErr.Registered, []string{"db"}) {
		t.Errorf("Registered = %v, want [db]", cfgErr.Registered)
	}
	if msg := err.Error(); !strings.Contains(msg, "'cache'") || !strings.Contains(msg, "'db'") {
		t.Errorf("Error() = %q, want missing and registered names", msg)
	}
}

func TestFilter_MissingListsEachNameOnce(t *testing.T) {
	_, err := Filter(registrations("db", "cache"), []string{"a", "A", "b"})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Filter() error = %v, want *ConfigurationError", err)
	}
	if !reflect.DeepEqual(cfgErr.Missing, []string{"a", "b"}) {
		t.Errorf("Missing = %v, want [a b]", cfgErr.Missing)
	}
	if !reflect.DeepEqual(cfgErr.Registered, []string{"db", "cache"}) {
		t.Errorf("Registered = %v, want [db cache]", cfgErr.Registered)
	}
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	regs := registrations("db")

	got, _ := Filter(regs, nil)
	got[0].Name = "changed"

	if regs[0].Name != "db" {
		t.Errorf("input mutated: %v", regs[0].Name)
	}
}

func TestRegistry_Filter(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddCheck("db", okChecker("db"))
	_ = reg.AddCheck("cache", okChecker("cache"))

	got, err := reg.Filter([]string{"db"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if !reflect.DeepEqual(names(got), []string{"db"}) {
		t.Errorf("Filter() = %v, want [db]", names(got))
	}
}
