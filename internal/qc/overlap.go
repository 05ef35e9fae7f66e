package qc

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// slot 排期中的一行
type slot struct {
	row        int
	channel    string
	channelID  string
	combined   string
	platform   string
	dateKey    string
	date       time.Time
	hasDate    bool
	startClock time.Duration
	endClock   time.Duration
	hasStart   bool
	hasEnd     bool
	start      time.Time
	end        time.Time
	startKey   string
	endKey     string
}

func (s slot) dayGap(prev slot) time.Duration {
	if !s.hasDate || !prev.hasDate {
		return 0
	}
	return s.date.Sub(prev.date)
}

// OverlapDuplicateDaybreak 同频道同日的时段重叠、完全重复、跨天续播检查
// 输出 Overlap / Duplicate / Daybreak 三组列
func OverlapDuplicateDaybreak(t *model.Table, bsr config.Aliases, rules config.OverlapRules) *model.Table {
	cols := parser.NewFieldMapper(t, bsr)
	refs, missing := cols.Lookup("tv_channel", "date", "start_time", "end_time")
	if len(missing) > 0 {
		const remark = "Check skipped: core columns missing"
		skipped := newOutcome(t.Len(), model.Fail, remark)
		out := t.WithColumns(skipped.columns(OverlapConcern)...)
		out = whole(out, DuplicateConcern, model.Fail, remark)
		return whole(out, DaybreakConcern, model.Fail, remark)
	}
	idRef := cols.Get("channel_id")
	combinedRef := cols.Get("combined")
	payRef := cols.Get("pay_tv")

	slots := make([]slot, t.Len())
	for i := range slots {
		slots[i] = buildSlot(t, i, refs, idRef, combinedRef, payRef)
	}

	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := slots[order[a]], slots[order[b]]
		if x.channel != y.channel {
			return x.channel < y.channel
		}
		if x.dateKey != y.dateKey {
			return x.dateKey < y.dateKey
		}
		if x.hasStart != y.hasStart {
			return x.hasStart
		}
		return x.startClock < y.startClock
	})

	overlap := newOutcome(t.Len(), model.Pass, "")
	daybreak := newOutcome(t.Len(), model.Pass, "")
	tolerance := rules.DaybreakGapToleranceMin
	ignore := lowerAll(rules.IgnorePlatforms)

	for k := 1; k < len(order); k++ {
		prev, cur := slots[order[k-1]], slots[order[k]]
		sameChannel := cur.channel != "" && cur.channel == prev.channel

		if sameChannel && cur.dateKey == prev.dateKey && cur.hasStart && prev.hasEnd &&
			cur.start.Before(prev.end) && !parser.ContainsAny(cur.platform, ignore) {
			overlap.set(cur.row, model.Fail, "Overlap detected between consecutive programs")
		}

		if !sameChannel || !cur.hasStart || !prev.hasEnd {
			continue
		}
		continuation := combinedRef.Found() && cur.combined != "" && cur.combined == prev.combined &&
			(!idRef.Found() || cur.channelID == prev.channelID)
		if continuation {
			gap := cur.start.Sub(prev.end).Minutes()
			if gap < 0 || gap > tolerance {
				daybreak.set(cur.row, model.Fail, fmt.Sprintf("Invalid continuation gap (%s min)", strconv.FormatFloat(gap, 'f', -1, 64)))
			}
			continue
		}
		if prev.endClock >= 21*time.Hour && cur.startClock < 6*time.Hour && cur.dayGap(prev) <= 24*time.Hour {
			daybreak.set(cur.row, model.Fail, "Potential continuation across daybreak")
		}
	}

	duplicate := newOutcome(t.Len(), model.Pass, "")
	groups := make(map[string][]int)
	for _, s := range slots {
		if s.channel == "" && s.startKey == "" {
			continue
		}
		key := s.channel + "\x00" + s.dateKey + "\x00" + s.startKey + "\x00" + s.endKey
		groups[key] = append(groups[key], s.row)
	}
	for _, rows := range groups {
		if len(rows) < 2 {
			continue
		}
		for _, r := range rows {
			duplicate.set(r, model.Fail, "Duplicate row found")
		}
	}

	out := t.WithColumns(overlap.columns(OverlapConcern)...)
	out.SetColumn(DuplicateConcern.OK, duplicate.verdicts)
	out.SetColumn(DuplicateConcern.Remark, duplicate.remarks)
	out.SetColumn(DaybreakConcern.OK, daybreak.verdicts)
	out.SetColumn(DaybreakConcern.Remark, daybreak.remarks)
	return out
}

func buildSlot(t *model.Table, i int, refs map[string]parser.ColumnRef, idRef, combinedRef, payRef parser.ColumnRef) slot {
	s := slot{
		row:       i,
		channel:   text(t, i, refs["tv_channel"]),
		channelID: text(t, i, idRef),
		combined:  text(t, i, combinedRef),
		platform:  text(t, i, payRef),
	}

	dateCell := cell(t, i, refs["date"])
	if d, ok := parser.ParseDate(dateCell); ok {
		s.date, s.hasDate = d, true
		s.dateKey = d.Format("2006-01-02")
	} else {
		s.dateKey = parser.NormalizeText(dateCell)
	}

	startCell, endCell := cell(t, i, refs["start_time"]), cell(t, i, refs["end_time"])
	s.startClock, s.hasStart = parser.ParseClock(startCell)
	s.endClock, s.hasEnd = parser.ParseClock(endCell)
	s.startKey = clockKey(startCell, s.startClock, s.hasStart)
	s.endKey = clockKey(endCell, s.endClock, s.hasEnd)

	base := s.date
	s.start = base.Add(s.startClock)
	s.end = base.Add(s.endClock)
	if s.hasStart && s.hasEnd && s.endClock < s.startClock {
		s.end = s.end.Add(24 * time.Hour)
	}
	return s
}

func clockKey(v any, d time.Duration, ok bool) string {
	if !ok {
		return parser.NormalizeText(v)
	}
	return d.String()
}
