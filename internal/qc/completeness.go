package qc

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

var fieldDisplayNames = map[string]string{
	"tv_channel":      "TV Channel",
	"channel_id":      "Channel ID",
	"match_day":       "Match Day",
	"source":          "Source",
	"home_team":       "Home Team",
	"away_team":       "Away Team",
	"market_id":       "Market ID",
	"type_of_program": "Type of Program",
}

// DisplayName 逻辑字段的展示名：tv_channel -> TV Channel
func DisplayName(field string) string {
	if name, ok := fieldDisplayNames[field]; ok {
		return name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

// Completeness 关键字段完整性
// 必填字段缺失、观众数据两项同时为空或同时有值、直播类节目缺主客队都会失败
func Completeness(t *model.Table, bsr config.Aliases, rules config.QCRules) *model.Table {
	cols := parser.NewFieldMapper(t, bsr)
	mandatory := rules.Completeness.MandatoryFields
	mandatoryRefs := make([]parser.ColumnRef, len(mandatory))
	for i, f := range mandatory {
		mandatoryRefs[i] = cols.Get(f)
	}
	estRef, metRef := cols.Get("aud_estimates"), cols.Get("aud_metered")
	typeRef := cols.Get("type_of_program")
	homeRef, awayRef := cols.Get("home_team"), cols.Get("away_team")

	liveTypes := lowerAll(rules.ProgramCategory.LiveTypes)
	relaxedTypes := lowerAll(rules.ProgramCategory.RelaxedTypes)

	out := newOutcome(t.Len(), model.Pass, "All key fields present")
	for i := 0; i < t.Len(); i++ {
		var missing []string

		for _, ref := range mandatoryRefs {
			switch {
			case !ref.Found():
				missing = append(missing, DisplayName(ref.Field)+" (column not found)")
			case !present(t, i, ref):
				missing = append(missing, DisplayName(ref.Field))
			}
		}

		if !estRef.Found() && !metRef.Found() {
			missing = append(missing, "Audience (Estimates/Metered) (columns not found)")
		} else {
			est, met := present(t, i, estRef), present(t, i, metRef)
			switch {
			case !est && !met:
				missing = append(missing, "Audience fields are both empty")
			case est && met:
				missing = append(missing, "Both Audience fields are filled")
			}
		}

		progType := text(t, i, typeRef)
		switch {
		case parser.InList(progType, liveTypes):
			missing = append(missing, teamGaps(t, i, homeRef, awayRef, true)...)
		case !parser.InList(progType, relaxedTypes):
			missing = append(missing, teamGaps(t, i, homeRef, awayRef, false)...)
		}

		if len(missing) > 0 {
			out.fail(i, missing)
		}
	}
	return out.apply(t, CompletenessConcern)
}

// teamGaps 主客队缺失项；strict 时列不存在也算缺失
func teamGaps(t *model.Table, row int, home, away parser.ColumnRef, strict bool) []string {
	var gaps []string
	for _, ref := range []parser.ColumnRef{home, away} {
		switch {
		case !ref.Found():
			if strict {
				gaps = append(gaps, DisplayName(ref.Field)+" (column not found)")
			}
		case !present(t, row, ref):
			gaps = append(gaps, DisplayName(ref.Field))
		}
	}
	return gaps
}
