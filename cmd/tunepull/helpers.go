package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"tunepull/internal/services"
)

// describeError appends a next step to err when one is known.
func describeError(err error) string {
	if hint := services.Hint(err); hint != "" {
		return fmt.Sprintf("%v\nhint: %s", err, hint)
	}
	return err.Error()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func humanBytes(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
