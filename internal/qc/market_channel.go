package qc

import (
	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// MarketChannel BSR 的 (市场, 频道) 组合必须出现在 Rosco 频道表中
// 频道名比较前去掉括号注释与破折号后缀
func MarketChannel(t *model.Table, rosco model.Reference, mappings config.ColumnMappings) *model.Table {
	cols := parser.NewFieldMapper(t, mappings.BSR)
	refs, missing := cols.Lookup("market", "tv_channel")
	if len(missing) > 0 {
		return whole(t, MarketChannelConcern, model.Fail, missingColumnsRemark("BSR columns not found", missing))
	}

	pairs, problem := roscoPairs(rosco, mappings.Rosco)

	out := newOutcome(t.Len(), model.Pass, "OK")
	for i := 0; i < t.Len(); i++ {
		market := text(t, i, refs["market"])
		channel := parser.NormalizeChannel(cell(t, i, refs["tv_channel"]))
		switch {
		case market == "" || channel == "":
			out.set(i, model.Fail, "Missing market or channel")
		case problem != "":
			out.set(i, model.NotApplicable, problem)
		case !pairs[market+"\x00"+channel]:
			out.set(i, model.Fail, "Market+Channel not found in ROSCO")
		}
	}
	return out.apply(t, MarketChannelConcern)
}

func roscoPairs(rosco model.Reference, aliases config.Aliases) (map[string]bool, string) {
	if !rosco.Available() {
		if rosco.Problem != "" {
			return nil, rosco.Problem
		}
		return nil, "Rosco channel list unavailable"
	}
	ro := parser.NewFieldMapper(rosco.Table, aliases)
	refs, missing := ro.Lookup("channel_country", "channel_name")
	if len(missing) > 0 {
		return nil, missingColumnsRemark("Rosco columns not found", missing)
	}
	pairs := make(map[string]bool, rosco.Table.Len())
	rt := rosco.Table
	for r := 0; r < rt.Len(); r++ {
		market := text(rt, r, refs["channel_country"])
		channel := parser.NormalizeChannel(cell(rt, r, refs["channel_name"]))
		if market != "" && channel != "" {
			pairs[market+"\x00"+channel] = true
		}
	}
	return pairs, ""
}
