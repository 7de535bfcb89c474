// Package parser converts user-supplied time expressions into event time
// labels.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/eventlife/eventlife/internal/timeutil"
)

// TimeLabel turns a user expression into an "HH:MM" label. Canonical labels
// pass through unchanged; anything else goes through natural language
// parsing ("5pm", "in 2 hours", "noon").
func TimeLabel(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty time expression")
	}

	if _, _, ok := timeutil.ParseTimeOfDay(input); ok {
		return input, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return "", fmt.Errorf("cannot parse time %q: %w", input, err)
	}

	return result.Time.Format("15:04"), nil
}
