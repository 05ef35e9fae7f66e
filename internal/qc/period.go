package qc

import (
	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// Period 播出日期必须落在监测周期内（含首尾）
// 找不到日期列时整列失败
func Period(t *model.Table, period model.Period, bsr config.Aliases) *model.Table {
	cols := parser.NewFieldMapper(t, bsr)
	dateRef := cols.Get("date")
	if !dateRef.Found() {
		return whole(t, PeriodConcern, model.Fail, "Date column not found")
	}

	out := newOutcome(t.Len(), model.Pass, "")
	for i := 0; i < t.Len(); i++ {
		d, ok := parser.ParseDate(cell(t, i, dateRef))
		switch {
		case !ok:
			out.set(i, model.Fail, "Invalid or missing date")
		case !period.Contains(d):
			out.set(i, model.Fail, "Date outside monitoring period")
		}
	}
	return out.apply(t, PeriodConcern)
}
