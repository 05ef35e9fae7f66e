package qc

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// 赛程推导的节目类型
const (
	CategoryLive    = "live"
	CategoryDelayed = "delayed"
	CategoryRepeat  = "repeat"
)

// FixtureMatch 赛程匹配结果
type FixtureMatch struct {
	Expected string // live / delayed / repeat；空表示无法判断
	Note     string // 无法判断时的原因
}

// ProgramCategory 节目类型与时长一致性
// 集锦/杂志类检查时长区间；比赛类按赛程推导期望类型（首播在开球容差内为 live，否则 delayed，之后为 repeat）
func ProgramCategory(t *model.Table, fixtures model.Reference, mappings config.ColumnMappings, rules config.ProgramCategoryRules) *model.Table {
	cols := parser.NewFieldMapper(t, mappings.BSR)
	typeRef := cols.Get("type_of_program")
	if !typeRef.Found() {
		out := whole(t, ProgramCategoryConcern, model.Fail, "Type of program column not found")
		out.SetColumn(ProgramCategoryExpectedColumn, make([]any, t.Len()))
		return out
	}
	descRef := cols.Get("program_desc")
	sourceRef := cols.Get("source")

	liveTypes := lowerAll(rules.LiveTypes)
	relaxedTypes := lowerAll(rules.RelaxedTypes)
	durations := Durations(t, mappings.BSR)

	matches, fixtureProblem := MatchFixtures(t, fixtures, mappings, rules)

	out := newOutcome(t.Len(), model.Fail, "")
	expected := make([]any, t.Len())
	for i := 0; i < t.Len(); i++ {
		actual := text(t, i, typeRef)
		duration := durations[i]

		switch {
		case parser.InList(actual, relaxedTypes):
			expected[i] = actual
			v, remark := checkSupportDuration(actual, duration, text(t, i, descRef), rules)
			out.set(i, v, remark)

		case parser.InList(actual, liveTypes):
			m, matched := matches[i]
			switch {
			case fixtureProblem != "":
				out.set(i, model.Fail, fixtureProblem)
			case !matched:
				out.set(i, model.Fail, "No matching fixture found")
			case m.Expected == "":
				out.set(i, model.Fail, m.Note)
			case m.Expected == actual:
				expected[i] = m.Expected
				out.set(i, model.Pass, "OK")
			default:
				expected[i] = m.Expected
				out.set(i, model.Fail, fmt.Sprintf("Expected '%s', found '%s'", m.Expected, actual))
			}

		default:
			out.set(i, model.Fail, fmt.Sprintf("Invalid Actual Type: '%s'", actual))
		}

		// BSA 来源的直播/重播不得超过最大时长
		if out.verdicts[i] == model.Pass && (actual == CategoryLive || actual == CategoryRepeat) &&
			rules.BSASourceKeyword != "" && parser.ContainsAny(text(t, i, sourceRef), []string{rules.BSASourceKeyword}) {
			switch {
			case math.IsNaN(duration):
				out.set(i, model.Fail, fmt.Sprintf("BSA %s has invalid duration (NaN)", DisplayName(actual)))
			case duration > rules.BSAMaxDuration:
				out.set(i, model.Fail, fmt.Sprintf("BSA %s > %s mins (Invalid)", DisplayName(actual), formatMinutes(rules.BSAMaxDuration)))
			}
		}
	}

	result := out.apply(t, ProgramCategoryConcern)
	result.SetColumn(ProgramCategoryExpectedColumn, expected)
	return result
}

func checkSupportDuration(actual string, duration float64, desc string, rules config.ProgramCategoryRules) (model.Verdict, string) {
	if math.IsNaN(duration) {
		return model.Fail, fmt.Sprintf("Invalid duration (NaN or unreadable) for %s", actual)
	}
	band := rules.Band(actual)
	if duration < band.Min || duration > band.Max {
		return model.Fail, fmt.Sprintf("Invalid duration (%.2f min) for %s (Rule: %s-%s min)",
			duration, actual, formatMinutes(band.Min), formatMinutes(band.Max))
	}
	if keywords := rules.Keywords(actual); len(keywords) > 0 && !parser.ContainsAny(desc, keywords) {
		return model.Pass, "OK (Duration valid, but keywords missing)"
	}
	return model.Pass, "OK"
}

func formatMinutes(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Durations 每行时长（分钟）：优先用开始/结束时间，其次用时长列；无法得到时为 NaN
func Durations(t *model.Table, bsr config.Aliases) []float64 {
	cols := parser.NewFieldMapper(t, bsr)
	startRef, endRef := cols.Get("start_time"), cols.Get("end_time")
	durationRef := cols.Get("duration")

	out := make([]float64, t.Len())
	for i := range out {
		out[i] = math.NaN()
		start, okStart := parser.ParseClock(cell(t, i, startRef))
		end, okEnd := parser.ParseClock(cell(t, i, endRef))
		if okStart && okEnd {
			d := end - start
			if d < 0 {
				d += 24 * time.Hour
			}
			out[i] = d.Minutes()
			continue
		}
		if m, ok := parser.ParseDurationMinutes(cell(t, i, durationRef)); ok {
			out[i] = m
		}
	}
	return out
}

// MatchFixtures 按 (主队, 客队, 日期) 将 BSR 行匹配到赛程，返回行号 -> 期望类型
// 赛程不可用时返回原因
func MatchFixtures(t *model.Table, fixtures model.Reference, mappings config.ColumnMappings, rules config.ProgramCategoryRules) (map[int]FixtureMatch, string) {
	if !fixtures.Available() {
		problem := fixtures.Problem
		if problem == "" {
			problem = "Fixture list sheet missing"
		}
		return nil, problem
	}
	fix := parser.NewFieldMapper(fixtures.Table, mappings.Fixture)
	fixRefs, missing := fix.Lookup("home_team", "away_team")
	if len(missing) > 0 {
		return nil, missingColumnsRemark("Fixture list columns not found", missing)
	}
	fixDate, fixStart := fix.Get("date"), fix.Get("start_time")

	cols := parser.NewFieldMapper(t, mappings.BSR)
	homeRef, awayRef := cols.Get("home_team"), cols.Get("away_team")
	dateRef, startRef := cols.Get("date"), cols.Get("start_time")
	typeRef := cols.Get("type_of_program")
	liveTypes := lowerAll(rules.LiveTypes)
	relaxedTypes := lowerAll(rules.RelaxedTypes)
	tolerance := time.Duration(rules.LiveToleranceMin * float64(time.Minute))

	matches := make(map[int]FixtureMatch)
	if !homeRef.Found() || !awayRef.Found() {
		return matches, ""
	}

	type candidate struct {
		row      int
		start    time.Time
		hasStart bool
	}

	processed := make(map[int]bool)
	ft := fixtures.Table
	for f := 0; f < ft.Len(); f++ {
		home, away := text(ft, f, fixRefs["home_team"]), text(ft, f, fixRefs["away_team"])
		if home == "" || away == "" {
			continue
		}
		fDate, hasFixtureDate := parser.ParseDate(cell(ft, f, fixDate))
		kickoff, hasKickoff := parser.ParseDateTime(cell(ft, f, fixDate), cell(ft, f, fixStart))

		var cands []candidate
		for i := 0; i < t.Len(); i++ {
			if processed[i] || text(t, i, homeRef) != home || text(t, i, awayRef) != away {
				continue
			}
			actual := text(t, i, typeRef)
			if !parser.InList(actual, liveTypes) && parser.InList(actual, relaxedTypes) {
				continue
			}
			if hasFixtureDate {
				d, ok := parser.ParseDate(cell(t, i, dateRef))
				if !ok || !d.Equal(fDate) {
					continue
				}
			}
			start, ok := parser.ParseDateTime(cell(t, i, dateRef), cell(t, i, startRef))
			cands = append(cands, candidate{row: i, start: start, hasStart: ok})
		}
		if len(cands) == 0 {
			continue
		}
		sort.SliceStable(cands, func(a, b int) bool {
			if cands[a].hasStart != cands[b].hasStart {
				return cands[a].hasStart
			}
			return cands[a].start.Before(cands[b].start)
		})

		for k, c := range cands {
			processed[c.row] = true
			if k > 0 {
				matches[c.row] = FixtureMatch{Expected: CategoryRepeat}
				continue
			}
			switch {
			case !c.hasStart:
				matches[c.row] = FixtureMatch{Note: "Fixture match found, but BSR start time is invalid"}
			case !hasKickoff:
				matches[c.row] = FixtureMatch{Note: "Fixture match found, but kickoff time is missing"}
			case absDuration(c.start.Sub(kickoff)) <= tolerance:
				matches[c.row] = FixtureMatch{Expected: CategoryLive}
			default:
				matches[c.row] = FixtureMatch{Expected: CategoryDelayed}
			}
		}
	}
	return matches, ""
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
