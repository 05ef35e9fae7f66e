package qc

import (
	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// RatesRatings 观众数据来源：估算值与实测值必须有且只有一个
// 只读取源列，重复执行结果相同
func RatesRatings(t *model.Table, bsr config.Aliases) *model.Table {
	cols := parser.NewFieldMapper(t, bsr)
	estRef, metRef := cols.Get("aud_estimates"), cols.Get("aud_metered")
	if !estRef.Found() && !metRef.Found() {
		return whole(t, RatesRatingsConcern, model.Fail, "Audience columns not found")
	}

	out := newOutcome(t.Len(), model.Pass, "Valid: one rating source available")
	for i := 0; i < t.Len(); i++ {
		est, met := present(t, i, estRef), present(t, i, metRef)
		switch {
		case !est && !met:
			out.set(i, model.Fail, "Missing audience ratings (both empty)")
		case est && met:
			out.set(i, model.Fail, "Invalid: both metered and estimated present")
		}
	}
	return out.apply(t, RatesRatingsConcern)
}
