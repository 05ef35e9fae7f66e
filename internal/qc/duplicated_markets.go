package qc

import (
	"fmt"
	"strings"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// DuplicationRule 宏观表中的一条复制规则：源 (市场, 频道) -> 目标 (市场, 频道)
type DuplicationRule struct {
	OrigMarket  string
	OrigChannel string
	DupMarket   string
	DupChannel  string
}

// DuplicationRules 读取宏观表中属于指定联赛的复制规则
func DuplicationRules(macro model.Reference, aliases config.Aliases, leagueKeyword string) ([]DuplicationRule, string) {
	if !macro.Available() {
		if macro.Problem != "" {
			return nil, macro.Problem
		}
		return nil, "Macro file missing"
	}
	m := parser.NewFieldMapper(macro.Table, aliases)
	refs, missing := m.Lookup("projects", "orig_market", "orig_channel", "dup_market", "dup_channel")
	if len(missing) > 0 {
		return nil, missingColumnsRemark("Macro columns not found", missing)
	}

	mt := macro.Table
	var rules []DuplicationRule
	for r := 0; r < mt.Len(); r++ {
		if leagueKeyword != "" && !parser.ContainsAny(raw(mt, r, refs["projects"]), []string{leagueKeyword}) {
			continue
		}
		rule := DuplicationRule{
			OrigMarket:  raw(mt, r, refs["orig_market"]),
			OrigChannel: raw(mt, r, refs["orig_channel"]),
			DupMarket:   raw(mt, r, refs["dup_market"]),
			DupChannel:  raw(mt, r, refs["dup_channel"]),
		}
		if rule.OrigMarket == "" || rule.OrigChannel == "" || rule.DupMarket == "" || rule.DupChannel == "" {
			continue
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, fmt.Sprintf("No duplication rules found for %s", leagueKeyword)
	}
	return rules, ""
}

// DuplicatedMarkets 源组合播出的赛事必须全部出现在目标组合中
// 源组合没有赛事时不适用；规则按顺序作用于源与目标两侧的行
func DuplicatedMarkets(t *model.Table, macro model.Reference, mappings config.ColumnMappings, project config.ProjectRules) *model.Table {
	rules, problem := DuplicationRules(macro, mappings.Macro, project.LeagueKeyword)
	if problem != "" {
		return whole(t, DuplicatedMarketsConcern, model.NotApplicable, problem)
	}

	cols := parser.NewFieldMapper(t, mappings.BSR)
	refs, missing := cols.Lookup("market", "tv_channel", "event")
	if len(missing) > 0 {
		return whole(t, DuplicatedMarketsConcern, model.Fail, missingColumnsRemark("BSR columns not found", missing))
	}
	compRef := cols.Get("competition")

	league := strings.ToLower(strings.TrimSpace(project.LeagueKeyword))
	inLeague := make([]bool, t.Len())
	found := false
	for i := range inLeague {
		inLeague[i] = league == "" ||
			strings.Contains(text(t, i, compRef), league) ||
			strings.Contains(text(t, i, refs["event"]), league)
		found = found || inLeague[i]
	}

	if !found {
		return whole(t, DuplicatedMarketsConcern, model.NotApplicable, fmt.Sprintf("No events found for %s", project.LeagueKeyword))
	}
	out := newOutcome(t.Len(), model.NotApplicable, "Not Applicable")

	pairRows := func(market, channel string) []int {
		market = parser.NormalizeText(market)
		channel = parser.NormalizeText(channel)
		var rows []int
		for i := 0; i < t.Len(); i++ {
			if inLeague[i] && text(t, i, refs["market"]) == market && text(t, i, refs["tv_channel"]) == channel {
				rows = append(rows, i)
			}
		}
		return rows
	}
	events := func(rows []int) map[string]bool {
		set := make(map[string]bool, len(rows))
		for _, i := range rows {
			if e := text(t, i, refs["event"]); e != "" {
				set[e] = true
			}
		}
		return set
	}

	for _, rule := range rules {
		origRows := pairRows(rule.OrigMarket, rule.OrigChannel)
		dupRows := pairRows(rule.DupMarket, rule.DupChannel)
		origEvents, dupEvents := events(origRows), events(dupRows)

		var v model.Verdict
		var remark string
		switch {
		case len(origEvents) == 0:
			v = model.NotApplicable
			remark = fmt.Sprintf("No events found in %s / %s", rule.OrigMarket, rule.OrigChannel)
		default:
			missingEvents := 0
			for e := range origEvents {
				if !dupEvents[e] {
					missingEvents++
				}
			}
			if missingEvents == 0 {
				v = model.Pass
				remark = fmt.Sprintf("All events correctly duplicated to %s / %s", rule.DupMarket, rule.DupChannel)
			} else {
				v = model.Fail
				remark = fmt.Sprintf("Missing %d events in %s / %s", missingEvents, rule.DupMarket, rule.DupChannel)
			}
		}
		for _, i := range origRows {
			out.set(i, v, remark)
		}
		for _, i := range dupRows {
			out.set(i, v, remark)
		}
	}
	return out.apply(t, DuplicatedMarketsConcern)
}
