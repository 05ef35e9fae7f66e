package qc

import (
	"fmt"
	"strings"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// DomesticMarket 本土联赛在本土市场的每个轮次至少有一场直播或延播
// 集锦/杂志类节目不适用；非目标联赛或非本土市场的行不适用
func DomesticMarket(t *model.Table, bsr config.Aliases, project config.ProjectRules) *model.Table {
	cols := parser.NewFieldMapper(t, bsr)
	refs, missing := cols.Lookup("market", "competition", "event", "type_of_program", "match_day")
	if len(missing) > 0 {
		return whole(t, DomesticMarketConcern, model.NotApplicable, missingColumnsRemark("Required column missing", missing))
	}

	domestic := strings.ToLower(strings.TrimSpace(project.DomesticMarket))
	keywords := lowerAll(project.DomesticLeagueKeywords)
	out := newOutcome(t.Len(), model.NotApplicable, "Not Applicable")
	if domestic == "" || len(keywords) == 0 {
		return out.apply(t, DomesticMarketConcern)
	}

	// 轮次 -> 目标行
	byMatchday := make(map[string][]int)
	var order []string
	covered := make(map[string]bool)
	for i := 0; i < t.Len(); i++ {
		inLeague := parser.ContainsAny(text(t, i, refs["competition"]), keywords) ||
			parser.ContainsAny(text(t, i, refs["event"]), keywords)
		if !inLeague || !strings.Contains(text(t, i, refs["market"]), domestic) {
			continue
		}
		progType := text(t, i, refs["type_of_program"])
		if strings.Contains(progType, "highlight") || strings.Contains(progType, "magazine") {
			out.set(i, model.NotApplicable, "Not applicable for highlights or magazine programs")
			continue
		}
		md := raw(t, i, refs["match_day"])
		if md == "" {
			continue
		}
		if _, ok := byMatchday[md]; !ok {
			order = append(order, md)
		}
		byMatchday[md] = append(byMatchday[md], i)
		if strings.Contains(progType, CategoryLive) || strings.Contains(progType, CategoryDelayed) {
			covered[md] = true
		}
	}

	for _, md := range order {
		for _, i := range byMatchday[md] {
			if covered[md] {
				out.set(i, model.Pass, fmt.Sprintf("Live/Delayed coverage present for matchday %s", md))
			} else {
				out.set(i, model.Fail, fmt.Sprintf("No live/delayed coverage for matchday %s", md))
			}
		}
	}
	return out.apply(t, DomesticMarketConcern)
}
