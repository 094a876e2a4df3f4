package main

import (
	"strings"
	"time"
)

// firstLine returns the first non-empty line of value.
func firstLine(value string) string {
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// formatTimestamp renders an API timestamp in local time.
func formatTimestamp(value string) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.Local().Format("2006-01-02 15:04")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func okKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}
