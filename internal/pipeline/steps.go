package pipeline

import (
	"fmt"
	"strings"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/qc"
)

// Variant 流水线变体
type Variant string

const (
	VariantGeneral Variant = "general"
	VariantLeague  Variant = "league"
)

// ParseVariant 解析变体名称
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantGeneral, "":
		return VariantGeneral, nil
	case VariantLeague:
		return VariantLeague, nil
	default:
		return "", fmt.Errorf("unknown variant %q (want general or league)", s)
	}
}

// references 一次运行中加载的只读输入
type references struct {
	rules    *config.Rules
	period   model.Period
	fixtures model.Reference
	rosco    model.Reference
	macro    model.Reference
}

// step 流水线中的一个检查
type step struct {
	name     string
	concerns []qc.Concern
	apply    func(t *model.Table, refs *references) *model.Table
}

var (
	periodStep = step{"Period", []qc.Concern{qc.PeriodConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.Period(t, r.period, r.rules.ColumnMappings.BSR)
	}}
	completenessStep = step{"Completeness", []qc.Concern{qc.CompletenessConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.Completeness(t, r.rules.ColumnMappings.BSR, r.rules.QCRules)
	}}
	overlapStep = step{"OverlapDuplicateDaybreak", []qc.Concern{qc.OverlapConcern, qc.DuplicateConcern, qc.DaybreakConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.OverlapDuplicateDaybreak(t, r.rules.ColumnMappings.BSR, r.rules.QCRules.OverlapCheck)
	}}
	categoryStep = step{"ProgramCategory", []qc.Concern{qc.ProgramCategoryConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.ProgramCategory(t, r.fixtures, r.rules.ColumnMappings, r.rules.QCRules.ProgramCategory)
	}}
	eventStep = step{"EventMatchday", []qc.Concern{qc.EventMatchdayConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.EventMatchday(t, r.fixtures, r.rules.ColumnMappings)
	}}
	marketChannelStep = step{"MarketChannel", []qc.Concern{qc.MarketChannelConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.MarketChannel(t, r.rosco, r.rules.ColumnMappings)
	}}
	ratesStep = step{"RatesRatings", []qc.Concern{qc.RatesRatingsConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.RatesRatings(t, r.rules.ColumnMappings.BSR)
	}}
	channelIDStep = step{"ChannelIDs", []qc.Concern{qc.ChannelIDConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.ChannelIDs(t, r.rules.ColumnMappings.BSR)
	}}
	clientStep = step{"ClientSource", []qc.Concern{qc.ClientSourceConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.ClientSource(t, r.rules.ColumnMappings.BSR, r.rules.QCRules.ClientCheck)
	}}
	domesticStep = step{"DomesticMarket", []qc.Concern{qc.DomesticMarketConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.DomesticMarket(t, r.rules.ColumnMappings.BSR, r.rules.ProjectRules)
	}}
	duplicatedMarketsStep = step{"DuplicatedMarkets", []qc.Concern{qc.DuplicatedMarketsConcern}, func(t *model.Table, r *references) *model.Table {
		return qc.DuplicatedMarkets(t, r.macro, r.rules.ColumnMappings, r.rules.ProjectRules)
	}}
)

// sequence 变体对应的检查顺序
func sequence(v Variant) []step {
	common := []step{
		periodStep,
		completenessStep,
		overlapStep,
		categoryStep,
		eventStep,
		marketChannelStep,
		ratesStep,
		channelIDStep,
		clientStep,
	}
	if v == VariantLeague {
		return append(common, domesticStep, duplicatedMarketsStep)
	}
	// 通用变体最后再校验一次观众数据
	return append(common, ratesStep)
}

// CheckNames 变体包含的检查名（按执行顺序）
func CheckNames(v Variant) []string {
	steps := sequence(v)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	return names
}
