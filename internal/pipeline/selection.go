package pipeline

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"tunepull/internal/services"
	"tunepull/internal/track"
)

// Select returns the records at the given 0-based indices, in the given
// order. A nil selection returns every record.
func Select(records []track.Record, selection []int) ([]track.Record, error) {
	if selection == nil {
		return records, nil
	}
	out := make([]track.Record, 0, len(selection))
	for _, idx := range selection {
		if idx < 0 || idx >= len(records) {
			return nil, services.Wrap(services.ErrValidation, "pipeline", "select",
				fmt.Sprintf("track %d out of range (1-%d)", idx+1, len(records)), nil)
		}
		out = append(out, records[idx])
	}
	return out, nil
}

// ParseSelection parses a 1-based selection such as "1,3-5" into 0-based
// indices in ascending order without duplicates. An empty value selects
// everything and yields nil.
func ParseSelection(value string, total int) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	seen := make(map[int]struct{})
	var picked []int
	add := func(n int) error {
		if n < 1 || n > total {
			return services.Wrap(services.ErrValidation, "pipeline", "selection",
				fmt.Sprintf("track %d out of range (1-%d)", n, total), nil)
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			picked = append(picked, n)
		}
		return nil
	}

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, invalidSelection(part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || end < start {
				return nil, invalidSelection(part)
			}
		}
		for n := start; n <= end; n++ {
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}
	if len(picked) == 0 {
		return nil, invalidSelection(value)
	}

	indices := make([]int, len(picked))
	for i, n := range picked {
		indices[i] = n - 1
	}
	slices.Sort(indices)
	return indices, nil
}

func invalidSelection(part string) error {
	return services.Wrap(services.ErrValidation, "pipeline", "selection", fmt.Sprintf("invalid selection %q", part), nil)
}
