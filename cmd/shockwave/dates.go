package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateParser = newDateParser()

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(periodRule())
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

var periodOffsets = map[string]int{"last": -1, "this": 0, "next": 1}

// periodRule resolves "last month", "this week", "next year" and the like to the first day of
// that period. Weeks start on Monday.
func periodRule() rules.Rule {
	return &rules.F{
		RegExp: regexp.MustCompile(`(?i)(?:\W|^)(last|this|next)\s+(week|month|year)(?:\W|$)`),
		Applier: func(m *rules.Match, c *rules.Context, o *rules.Options, ref time.Time) (bool, error) {
			offset := periodOffsets[strings.ToLower(m.Captures[0])]
			year, month, day := ref.Date()

			switch strings.ToLower(m.Captures[1]) {
			case "week":
				day -= (int(ref.Weekday())+6)%7 - 7*offset
			case "month":
				month += time.Month(offset)
				day = 1
			case "year":
				year += offset
				month, day = time.January, 1
			}

			start := time.Date(year, month, day, ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())
			c.Duration = start.Sub(ref)
			return true, nil
		},
	}
}

// parseDate turns an ISO date or a natural language expression such as "yesterday",
// "last month" or "in 2 weeks" into YYYY-MM-DD, relative to now and in now's location.
func parseDate(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if t, err := time.Parse(time.DateOnly, input); err == nil {
		return t.Format(time.DateOnly), nil
	}

	r, err := dateParser.Parse(input, now)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("parsing date %q: expected YYYY-MM-DD or a date like \"yesterday\"", input)
	}
	return r.Time.In(now.Location()).Format(time.DateOnly), nil
}
