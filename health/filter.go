package health

import "strings"

// Filter returns the registrations to execute for the requested names.
//
// An empty names slice selects every registration. Otherwise registrations
// are matched case-insensitively and returned in regs order; unrequested
// registrations are dropped. Any requested name without a registration
// yields a *ConfigurationError listing the missing and registered names.
func Filter(regs []Registration, names []string) ([]Registration, error) {
	if len(names) == 0 {
		out := make([]Registration, len(regs))
		copy(out, regs)
		return out, nil
	}

	requested := make(map[string]struct{}, len(names))
	for _, n := range names {
		requested[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	registered := make(map[string]struct{}, len(regs))
	out := make([]Registration, 0, len(names))
	for _, reg := range regs {
		key := strings.ToLower(reg.Name)
		registered[key] = struct{}{}
		if _, ok := requested[key]; ok {
			out = append(out, reg)
		}
	}

	var missing []string
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if _, ok := registered[key]; ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		missing = append(missing, n)
	}

	if len(missing) > 0 {
		all := make([]string, len(regs))
		for i, reg := range regs {
			all[i] = reg.Name
		}
		return nil, &ConfigurationError{Missing: missing, Registered: all}
	}

	return out, nil
}
