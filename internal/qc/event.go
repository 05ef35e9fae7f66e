package qc

import (
	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// EventMatchday 直播行的赛事/主客队/轮次必须与赛程完全一致（忽略大小写）
// 非直播行不适用
func EventMatchday(t *model.Table, fixtures model.Reference, mappings config.ColumnMappings) *model.Table {
	cols := parser.NewFieldMapper(t, mappings.BSR)
	typeRef := cols.Get("type_of_program")
	if !typeRef.Found() {
		return whole(t, EventMatchdayConcern, model.Fail, "Type of program column not found")
	}
	fields := []string{"event", "home_team", "away_team", "match_day"}
	bsrRefs := make([]parser.ColumnRef, len(fields))
	for i, f := range fields {
		bsrRefs[i] = cols.Get(f)
	}

	known, valid := fixtureKeys(fixtures, mappings.Fixture, fields)

	out := newOutcome(t.Len(), model.NotApplicable, "Not applicable for this program type")
	for i := 0; i < t.Len(); i++ {
		if text(t, i, typeRef) != CategoryLive {
			continue
		}
		if !valid {
			out.set(i, model.Fail, "Fixture list missing or invalid")
			continue
		}
		key, complete := rowKey(t, i, bsrRefs)
		switch {
		case !complete:
			out.set(i, model.Fail, "Missing event/home/away/matchday in BSR")
		case known[key]:
			out.set(i, model.Pass, "Fixture found")
		default:
			out.set(i, model.Fail, "No matching fixture found")
		}
	}
	return out.apply(t, EventMatchdayConcern)
}

// fixtureKeys 赛程中 (event, home, away, matchday) 的组合集合
func fixtureKeys(fixtures model.Reference, aliases config.Aliases, fields []string) (map[string]bool, bool) {
	if !fixtures.Available() {
		return nil, false
	}
	fix := parser.NewFieldMapper(fixtures.Table, aliases)
	refs := make([]parser.ColumnRef, len(fields))
	for i, f := range fields {
		refs[i] = fix.Get(f)
		if !refs[i].Found() {
			return nil, false
		}
	}
	keys := make(map[string]bool, fixtures.Table.Len())
	for r := 0; r < fixtures.Table.Len(); r++ {
		if key, complete := rowKey(fixtures.Table, r, refs); complete {
			keys[key] = true
		}
	}
	return keys, true
}

func rowKey(t *model.Table, row int, refs []parser.ColumnRef) (string, bool) {
	key := ""
	for i, ref := range refs {
		v := text(t, row, ref)
		if v == "" {
			return "", false
		}
		if i > 0 {
			key += "\x00"
		}
		key += v
	}
	return key, true
}
