package parser

import (
	"regexp"
	"strings"
	"time"

	"bsrqc/internal/model"
)

var (
	isoDateFind   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	looseDateFind = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
)

const periodMarker = "monitoring period"

// DetectPeriod 从 Rosco 原始内容中提取监测周期
// 优先取含 "Monitoring Period" 标记的行，其次扫描整表；先找 ISO 日期，再找 m/d/y 日期
func DetectPeriod(rows [][]string) (model.Period, error) {
	lines := make([]string, 0, len(rows))
	marker := -1
	for i, row := range rows {
		text := strings.Join(row, " ")
		lines = append(lines, text)
		if marker < 0 && strings.Contains(strings.ToLower(text), periodMarker) {
			marker = i
		}
	}

	if marker >= 0 {
		if p, ok := extractPeriod(lines[marker]); ok {
			return p, nil
		}
	}
	if p, ok := extractPeriod(strings.Join(lines, " ")); ok {
		return p, nil
	}
	return model.Period{}, ErrPeriodNotFound
}

func extractPeriod(text string) (model.Period, bool) {
	if dates := parseAll(isoDateFind.FindAllString(text, -1)); len(dates) >= 2 {
		return newPeriod(dates[0], dates[1]), true
	}
	if dates := parseAll(looseDateFind.FindAllString(text, -1)); len(dates) >= 2 {
		return newPeriod(dates[0], dates[1]), true
	}
	return model.Period{}, false
}

func parseAll(found []string) []time.Time {
	out := make([]time.Time, 0, 2)
	for _, s := range found {
		if t, ok := parseDateText(s); ok {
			out = append(out, t)
			if len(out) == 2 {
				break
			}
		}
	}
	return out
}

func newPeriod(a, b time.Time) model.Period {
	if b.Before(a) {
		a, b = b, a
	}
	return model.Period{Start: a, End: b}
}
