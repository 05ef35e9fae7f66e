package parser

import (
	"errors"
	"testing"
	"time"

	"bsrqc/internal/model"
)

func TestResolve_TrailingSpaceAndAliasOrder(t *testing.T) {
	t.Parallel()

	cols := []string{"Market", "date ", "Air Date"}
	got, ok := Resolve(cols, []string{"Date", "DATE", "Air Date"})
	if !ok || got != "date " {
		t.Fatalf("Resolve got=%q ok=%v want=%q", got, ok, "date ")
	}

	got, ok = Resolve(cols, []string{"Air Date", "Date"})
	if !ok || got != "Air Date" {
		t.Fatalf("alias order got=%q want=%q", got, "Air Date")
	}
}

func TestResolve_NotFound(t *testing.T) {
	t.Parallel()

	got, ok := Resolve([]string{"Market"}, []string{"Date", "Air Date"})
	if ok || got != "" {
		t.Fatalf("expected not found, got=%q", got)
	}
	if _, ok := Resolve(nil, nil); ok {
		t.Fatalf("expected not found on empty input")
	}
}

func TestFieldMapper_FallbackToFieldName(t *testing.T) {
	t.Parallel()

	tbl := model.NewTable([]string{"Combined", "TV-Channel"})
	m := NewFieldMapper(tbl, map[string][]string{"tv_channel": {"TV Channel", "TV-Channel"}})

	if ref := m.Get("tv_channel"); ref.Name != "TV-Channel" {
		t.Fatalf("tv_channel got=%q", ref.Name)
	}
	if ref := m.Get("combined"); ref.Name != "Combined" {
		t.Fatalf("combined fallback got=%q", ref.Name)
	}
	_, missing := m.Lookup("tv_channel", "date")
	if len(missing) != 1 || missing[0] != "date" {
		t.Fatalf("missing got=%v", missing)
	}
}

func TestIsPresent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{"", false},
		{"   ", false},
		{"nan", false},
		{"None", false},
		{0.0, true},
		{0, true},
		{"0", true},
		{"Sky", true},
	}
	for _, c := range cases {
		if got := IsPresent(c.in); got != c.want {
			t.Fatalf("IsPresent(%#v) got=%v want=%v", c.in, got, c.want)
		}
	}
}

func TestNormalizeChannel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Sky Sports (HD)":         "sky sports",
		"DAZN 1 [OTT] - Spain":    "dazn 1",
		"  Movistar+ LaLiga  ":    "movistar laliga",
		"beIN Sports — MENA":      "bein sports",
		"Canal+ Sport 360 (Test)": "canal sport 360",
	}
	for in, want := range cases {
		if got := NormalizeChannel(in); got != want {
			t.Fatalf("NormalizeChannel(%q) got=%q want=%q", in, got, want)
		}
	}
}

func TestParseDurationMinutes(t *testing.T) {
	t.Parallel()

	if got, ok := ParseDurationMinutes("01:30:00"); !ok || got != 90 {
		t.Fatalf("01:30:00 got=%v ok=%v", got, ok)
	}
	if _, ok := ParseDurationMinutes(""); ok {
		t.Fatalf("empty string should be unknown")
	}
	if _, ok := ParseDurationMinutes(nil); ok {
		t.Fatalf("nil should be unknown")
	}
	if got, ok := ParseDurationMinutes(45); !ok || got != 45 {
		t.Fatalf("45 got=%v ok=%v", got, ok)
	}
	if got, ok := ParseDurationMinutes("1:05"); !ok || got != 65 {
		t.Fatalf("1:05 got=%v", got)
	}
	if got, ok := ParseDurationMinutes("2:00:30s"); !ok || got != 120.5 {
		t.Fatalf("2:00:30s got=%v", got)
	}
	if got, ok := ParseDurationMinutes("95.5"); !ok || got != 95.5 {
		t.Fatalf("95.5 got=%v", got)
	}
	if _, ok := ParseDurationMinutes("about an hour"); ok {
		t.Fatalf("free text should be unknown")
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, in := range []any{"2025-01-10", "01/10/2025", "01-10-25", "10.01.2025", "2025-01-10 20:00:00", 45667.0} {
		got, ok := ParseDate(in)
		if !ok || !got.Equal(want) {
			t.Fatalf("ParseDate(%v) got=%v ok=%v want=%v", in, got, ok, want)
		}
	}
	// 月份越界时按日/月/年解析
	got, ok := ParseDate("25/01/2025")
	if !ok || got.Day() != 25 || got.Month() != time.January {
		t.Fatalf("day-first fallback got=%v ok=%v", got, ok)
	}
	if _, ok := ParseDate("not a date"); ok {
		t.Fatalf("expected failure")
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	cases := map[any]time.Duration{
		"10:30":               10*time.Hour + 30*time.Minute,
		"22:15:30":            22*time.Hour + 15*time.Minute + 30*time.Second,
		"2025-01-10 20:00:00": 20 * time.Hour,
		"8:00 PM":             20 * time.Hour,
		0.5:                   12 * time.Hour,
	}
	for in, want := range cases {
		got, ok := ParseClock(in)
		if !ok || got != want {
			t.Fatalf("ParseClock(%v) got=%v ok=%v want=%v", in, got, ok, want)
		}
	}
}

func TestDetectHeaderRow(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Broadcast Summary Report"},
		{"Client:", "LaLiga"},
		{},
		{"Market", "TV-Channel", "Date", "Start (UTC)", "End (UTC)"},
		{"Spain", "DAZN 1", "2025-01-10", "20:00", "22:00"},
	}
	got, err := DetectHeaderRow(rows, []string{"Market", "TV-Channel", "Date", "Start"}, 200)
	if err != nil {
		t.Fatalf("DetectHeaderRow: %v", err)
	}
	if got.Row != 3 {
		t.Fatalf("header row got=%d want=3", got.Row)
	}

	_, err = DetectHeaderRow(rows[:3], []string{"Market", "TV-Channel"}, 200)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("expected ErrHeaderNotFound, got=%v", err)
	}

	// 超出扫描窗口
	_, err = DetectHeaderRow(rows, []string{"Market", "TV-Channel"}, 2)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("expected ErrHeaderNotFound with small window, got=%v", err)
	}
}

func TestDetectHeaderRow_DefaultWindow(t *testing.T) {
	t.Parallel()

	header := []string{"Market", "TV-Channel", "Date"}
	withHeaderAt := func(row int) [][]string {
		rows := make([][]string, row+2)
		for i := 0; i < row; i++ {
			rows[i] = []string{"note", "filler"}
		}
		rows[row] = header
		rows[row+1] = []string{"Spain", "DAZN 1", "2025-01-10"}
		return rows
	}
	terms := []string{"Market", "TV-Channel", "Date"}

	got, err := DetectHeaderRow(withHeaderAt(DefaultHeaderScanRows-1), terms, 0)
	if err != nil || got.Row != DefaultHeaderScanRows-1 {
		t.Fatalf("last row in window: got=%d err=%v want=%d", got.Row, err, DefaultHeaderScanRows-1)
	}

	_, err = DetectHeaderRow(withHeaderAt(DefaultHeaderScanRows), terms, 0)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("header past window: err=%v want ErrHeaderNotFound", err)
	}
	if DefaultHeaderScanRows != 200 {
		t.Fatalf("default window got=%d want=200", DefaultHeaderScanRows)
	}
}

func TestHeaderNames(t *testing.T) {
	t.Parallel()

	got := HeaderNames([]string{" Market ", "", "Date", "Date"}, 5)
	want := []string{"Market", "Unnamed: 1", "Date", "Date.1", "Unnamed: 4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("HeaderNames[%d] got=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestDetectPeriod(t *testing.T) {
	t.Parallel()

	day := func(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

	rows := [][]string{
		{"ROSCO", "Generated 2024-12-01"},
		{"Monitoring Periods:", "2025-01-01 to 2025-01-31"},
	}
	p, err := DetectPeriod(rows)
	if err != nil {
		t.Fatalf("DetectPeriod: %v", err)
	}
	if !p.Start.Equal(day(2025, 1, 1)) || !p.End.Equal(day(2025, 1, 31)) {
		t.Fatalf("marker row got=%v..%v", p.Start, p.End)
	}

	p, err = DetectPeriod([][]string{{"From", "2025-02-01"}, {"Until", "2025-02-28"}})
	if err != nil || !p.Start.Equal(day(2025, 2, 1)) || !p.End.Equal(day(2025, 2, 28)) {
		t.Fatalf("whole sheet fallback got=%v err=%v", p, err)
	}

	p, err = DetectPeriod([][]string{{"Monitoring period", "03/01/2025 - 03/31/2025"}})
	if err != nil || !p.Start.Equal(day(2025, 3, 1)) || !p.End.Equal(day(2025, 3, 31)) {
		t.Fatalf("loose fallback got=%v err=%v", p, err)
	}

	_, err = DetectPeriod([][]string{{"Monitoring Period", "TBD"}})
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got=%v", err)
	}
}
