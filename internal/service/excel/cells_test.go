package excel

import "testing"

func TestNumFmtKind(t *testing.T) {
	t.Parallel()
	cases := map[string]cellKind{
		"dd/mm/yyyy":           kindDate,
		"d-mmm-yy":             kindDate,
		"[$-409]mmmm d, yyyy":  kindDate,
		"hh:mm":                kindTime,
		"[h]:mm:ss":            kindTime,
		"mm:ss.0":              kindTime,
		"dd/mm/yyyy hh:mm":     kindDateTime,
		"0.00":                 kindNumber,
		"#,##0;[Red]-#,##0":    kindNumber,
		`0" days"`:             kindNumber,
		`\d0`:                  kindNumber,
		"General":              kindNumber,
		`yyyy-mm-dd;"invalid"`: kindDate,
		`[Blue]0.0" hrs"`:      kindNumber,
	}
	for code, want := range cases {
		if got := numFmtKind(code); got != want {
			t.Errorf("numFmtKind(%q) got=%d want=%d", code, got, want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()
	cases := []struct {
		serial float64
		want   string
	}{
		{0, "00:00:00"},
		{20.0 / 24, "20:00:00"},
		{0.5 + 1.0/86400, "12:00:01"},
		{1.25, "30:00:00"},
	}
	for _, c := range cases {
		if got := formatClock(c.serial); got != c.want {
			t.Errorf("formatClock(%v) got=%s want=%s", c.serial, got, c.want)
		}
	}
}
