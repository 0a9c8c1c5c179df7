package main

import "cantiere/internal/core"

// euro renders a money amount for terminal output.
func euro(m core.Money) string {
	return "€ " + m.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
