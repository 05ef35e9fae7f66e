package qc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
)

func newTable(columns []string, rows ...[]any) *model.Table {
	t := model.NewTable(columns)
	for _, r := range rows {
		t.AppendRow(r...)
	}
	return t
}

func defaultRules() *config.Rules {
	return config.DefaultRules()
}

func verdicts(t *model.Table, c Concern) []model.Verdict {
	col := t.Column(c.OK)
	out := make([]model.Verdict, len(col))
	for i, v := range col {
		out[i] = v.(model.Verdict)
	}
	return out
}

func remarks(t *model.Table, c Concern) []string {
	col := t.Column(c.Remark)
	out := make([]string, len(col))
	for i, v := range col {
		out[i], _ = v.(string)
	}
	return out
}

// requireComplete 每个 *_OK 单元格都必须是三种结论之一
func requireComplete(t *testing.T, tbl *model.Table) {
	t.Helper()
	for _, c := range tbl.VerdictColumns() {
		for i, v := range tbl.Column(c) {
			_, ok := v.(model.Verdict)
			require.Truef(t, ok, "%s row %d holds %#v", c, i, v)
		}
	}
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

const (
	P = model.Pass
	F = model.Fail
	N = model.NotApplicable
)
