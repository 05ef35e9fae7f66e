package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	looseDatePattern = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})`)
	isoDatePattern   = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
)

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"15:04:05.000",
}

// ParseDate 解析日期单元格，返回当天 00:00 (UTC)
// 支持 ISO、m/d/y（月份越界时按 d/m/y）、dd.mm.yyyy、日期时间字符串、Excel 序列号
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return dateOnly(x), true
	case float64:
		return serialDate(x)
	case int:
		return serialDate(float64(x))
	case int64:
		return serialDate(float64(x))
	case string:
		return parseDateText(x)
	default:
		return time.Time{}, false
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func serialDate(f float64) (time.Time, bool) {
	// 1955-01-01 .. 2118-12-31 之间的序列号才当作日期
	if f < 20000 || f > 80000 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return dateOnly(t), true
}

func parseDateText(s string) (time.Time, bool) {
	s = cleanSpaces(s)
	if s == "" {
		return time.Time{}, false
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := looseDatePattern.FindStringSubmatch(s); m != nil {
		sep := s[len(m[1])]
		if sep == '.' {
			// 欧式 dd.mm.yyyy
			return buildDate(m[3], m[2], m[1])
		}
		if t, ok := buildDate(m[3], m[1], m[2]); ok {
			return t, true
		}
		return buildDate(m[3], m[2], m[1])
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialDate(f)
	}
	for _, layout := range []string{"2 January 2006", "January 2, 2006", "2 Jan 2006", "Jan 2, 2006", "02-Jan-2006", "02-Jan-06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func buildDate(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if len(year) == 2 {
		y += 2000
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(m) {
		return time.Time{}, false
	}
	return t, true
}

// ParseClock 解析时刻，返回距当天 00:00 的时长
// 支持 HH:MM[:SS]、12 小时制、日期时间字符串、Excel 小数（一天的比例）
func ParseClock(v any) (time.Duration, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		return clockOf(x), true
	case time.Duration:
		return x, true
	case float64:
		return fractionOfDay(x)
	case string:
		return parseClockText(x)
	default:
		return 0, false
	}
}

func clockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

func fractionOfDay(f float64) (time.Duration, bool) {
	if f < 0 || f >= 1 {
		return 0, false
	}
	return time.Duration(f*24*float64(time.Hour)).Round(time.Second), true
}

func parseClockText(s string) (time.Duration, bool) {
	s = cleanSpaces(s)
	if s == "" {
		return 0, false
	}
	// 日期时间字符串只取时间部分
	if i := strings.LastIndex(s, " "); i > 0 && strings.Contains(s[i+1:], ":") && !strings.HasSuffix(strings.ToUpper(s), "M") {
		s = s[i+1:]
	}
	if i := strings.Index(s, "T"); i > 0 && strings.Contains(s[i+1:], ":") {
		s = s[i+1:]
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return clockOf(t), true
		}
	}
	// 24:00:00 之类的写法
	if parts := strings.Split(s, ":"); len(parts) >= 2 && len(parts) <= 3 {
		total := 0
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, false
			}
			switch i {
			case 0:
				total += n * 3600
			case 1:
				total += n * 60
			case 2:
				total += n
			}
		}
		return time.Duration(total) * time.Second, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fractionOfDay(f)
	}
	return 0, false
}

// ParseDateTime 以日期列 + 时刻列组合出时间点；时刻列本身带日期时优先使用
func ParseDateTime(date, clock any) (time.Time, bool) {
	if t, ok := clock.(time.Time); ok && t.Year() > 1900 {
		return t.UTC(), true
	}
	if s, ok := clock.(string); ok {
		if d, ok := parseDateText(s); ok && strings.Contains(s, ":") {
			c, _ := parseClockText(s)
			return d.Add(c), true
		}
	}
	d, ok := ParseDate(date)
	if !ok {
		return time.Time{}, false
	}
	c, ok := ParseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	return d.Add(c), true
}
