package enrich

import (
	_ "embed"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/tripstash/placeimport/internal/model"
)

//go:embed visit_windows.yaml
var visitWindowsYAML []byte

var visitWindows = mustVisitWindows()

func mustVisitWindows() map[model.Category]string {
	var raw map[string]string
	if err := yaml.Unmarshal(visitWindowsYAML, &raw); err != nil {
		panic(eris.Wrap(err, "enrich: parse visit windows table"))
	}
	out := make(map[model.Category]string, len(raw))
	for k, v := range raw {
		out[model.Category(k)] = v
	}
	return out
}

// firstTimeRe matches the first clock time in an opening-hours line,
// e.g. "09:00", "9:00 AM", "7 PM".
var firstTimeRe = regexp.MustCompile(`(?i)\b([0-9]{1,2})(?::([0-9]{2}))?\s*(am|pm)?\b`)

// InferVisitTime proposes a visiting window from the category table.
// It runs only when no suggestion is present; user- and hours-derived
// suggestions are never replaced.
func InferVisitTime(d model.Draft) model.Draft {
	if d.Visit != nil {
		return d
	}
	window, ok := visitWindows[d.Category]
	if !ok {
		return d
	}
	d.Visit = &model.VisitSuggestion{
		Window:     window,
		Source:     model.VisitSourceInferred,
		Confidence: model.ConfidenceLow,
	}
	return d
}

// VisitFromHours derives a visiting window from published opening
// hours. The first opening time of the first listed day picks the
// window; unparseable hours leave the draft unchanged so the category
// heuristic can still run.
func VisitFromHours(d model.Draft) model.Draft {
	if d.Visit != nil || d.Hours == nil || len(d.Hours.Raw) == 0 {
		return d
	}
	hour, ok := firstOpeningHour(d.Hours.Raw)
	if !ok {
		return d
	}
	d.Visit = &model.VisitSuggestion{
		Window:     windowForHour(hour),
		Source:     model.VisitSourceHours,
		Confidence: model.ConfidenceMedium,
	}
	return d
}

func firstOpeningHour(raw []string) (int, bool) {
	for _, line := range raw {
		if strings.Contains(strings.ToLower(line), "closed") {
			continue
		}
		m := firstTimeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour > 23 {
			continue
		}
		switch strings.ToLower(m[3]) {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		return hour, true
	}
	return 0, false
}

func windowForHour(hour int) string {
	switch {
	case hour < 11:
		return "morning"
	case hour < 14:
		return "lunch"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}
