package main

import (
	"fmt"
	"strings"
)

// parseAssignment splits "KEY:stem1,stem2" into its key and stems.
func parseAssignment(arg string) (string, []string, error) {
	key, list, ok := strings.Cut(arg, ":")
	if !ok {
		return "", nil, fmt.Errorf("invalid format %q, use DIR:COMP1,COMP2,...", arg)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil, fmt.Errorf("invalid format %q, directory is empty", arg)
	}
	stems := splitStems(list)
	if len(stems) == 0 {
		return "", nil, fmt.Errorf("no valid components specified for %q", key)
	}
	return key, stems, nil
}

// splitStems splits a comma separated list, dropping blanks and a trailing
// ".pdf" a user may have typed.
func splitStems(list string) []string {
	var stems []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if strings.HasSuffix(strings.ToLower(part), ".pdf") {
			part = part[:len(part)-len(".pdf")]
		}
		if part != "" {
			stems = append(stems, part)
		}
	}
	return stems
}
