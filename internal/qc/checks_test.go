package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bsrqc/internal/model"
)

func TestPeriod(t *testing.T) {
	t.Parallel()
	rules := defaultRules()
	period := model.Period{Start: day(2025, 1, 1), End: day(2025, 1, 31)}

	tbl := newTable([]string{"Date "},
		[]any{"2025-01-01"},
		[]any{"2025-01-31"},
		[]any{"2025-02-01"},
		[]any{"soon"},
	)
	out := Period(tbl, period, rules.ColumnMappings.BSR)

	assert.Equal(t, []model.Verdict{P, P, F, F}, verdicts(out, PeriodConcern))
	assert.Equal(t, "Date outside monitoring period", remarks(out, PeriodConcern)[2])
	assert.Equal(t, "Invalid or missing date", remarks(out, PeriodConcern)[3])
	// 输入表不被修改
	assert.False(t, tbl.HasColumn(PeriodConcern.OK))

	missing := Period(newTable([]string{"Market"}, []any{"Spain"}), period, rules.ColumnMappings.BSR)
	assert.Equal(t, []model.Verdict{F}, verdicts(missing, PeriodConcern))
	assert.Equal(t, "Date column not found", remarks(missing, PeriodConcern)[0])
}

func TestCompleteness_AudiencePair(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	cols := []string{"TV-Channel", "Channel ID", "Matchday", "Source", "Type of program", "Aud. Estimates ['000s]", "Aud Metered (000s) 3+"}
	tbl := newTable(cols,
		[]any{"DAZN 1", "C1", "1", "BSA", "highlights", 120.0, 95.0},
		[]any{"DAZN 1", "C1", "1", "BSA", "highlights", nil, "nan"},
		[]any{"DAZN 1", "C1", "1", "BSA", "highlights", 0.0, nil},
	)
	out := Completeness(tbl, rules.ColumnMappings.BSR, rules.QCRules)

	assert.Equal(t, []model.Verdict{F, F, P}, verdicts(out, CompletenessConcern))
	r := remarks(out, CompletenessConcern)
	assert.Equal(t, "Both Audience fields are filled", r[0])
	assert.Contains(t, r[1], "both empty")
	assert.Equal(t, "All key fields present", r[2])
}

func TestCompleteness_MandatoryAndTeams(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	cols := []string{"TV-Channel", "Matchday", "Source", "Type of program", "Home Team", "Aud Metered (000s) 3+"}
	tbl := newTable(cols,
		[]any{"DAZN 1", "1", "BSA", "Live", "", 10.0},
		[]any{"", "1", "BSA", "magazine", nil, 10.0},
	)
	out := Completeness(tbl, rules.ColumnMappings.BSR, rules.QCRules)

	assert.Equal(t, []model.Verdict{F, F}, verdicts(out, CompletenessConcern))
	r := remarks(out, CompletenessConcern)
	assert.Equal(t, "Channel ID (column not found); Home Team; Away Team (column not found)", r[0])
	assert.Equal(t, "TV Channel; Channel ID (column not found)", r[1])
}

func TestOverlap_Consecutive(t *testing.T) {
	t.Parallel()
	rules := defaultRules()
	cols := []string{"TV-Channel", "Date", "Start", "End"}

	overlapping := newTable(cols,
		[]any{"DAZN 1", "2025-01-10", "10:00", "11:00"},
		[]any{"DAZN 1", "2025-01-10", "10:30", "11:30"},
	)
	out := OverlapDuplicateDaybreak(overlapping, rules.ColumnMappings.BSR, rules.QCRules.OverlapCheck)
	assert.Equal(t, []model.Verdict{P, F}, verdicts(out, OverlapConcern))
	assert.Equal(t, "Overlap detected between consecutive programs", remarks(out, OverlapConcern)[1])

	backToBack := newTable(cols,
		[]any{"DAZN 1", "2025-01-10", "11:00", "12:00"},
		[]any{"DAZN 1", "2025-01-10", "10:00", "11:00"},
	)
	out = OverlapDuplicateDaybreak(backToBack, rules.ColumnMappings.BSR, rules.QCRules.OverlapCheck)
	assert.Equal(t, []model.Verdict{P, P}, verdicts(out, OverlapConcern))
	assert.Equal(t, []model.Verdict{P, P}, verdicts(out, DuplicateConcern))
	assert.Equal(t, 2, out.Len())

	otherChannel := newTable(cols,
		[]any{"DAZN 1", "2025-01-10", "10:00", "11:00"},
		[]any{"DAZN 2", "2025-01-10", "10:30", "11:30"},
	)
	out = OverlapDuplicateDaybreak(otherChannel, rules.ColumnMappings.BSR, rules.QCRules.OverlapCheck)
	assert.Equal(t, []model.Verdict{P, P}, verdicts(out, OverlapConcern))
}

func TestOverlap_IgnorePlatforms(t *testing.T) {
	t.Parallel()
	rules := defaultRules()
	overlapRules := rules.QCRules.OverlapCheck
	overlapRules.IgnorePlatforms = []string{"ott"}

	tbl := newTable([]string{"TV-Channel", "Date", "Start", "End", "Pay/Free TV"},
		[]any{"DAZN 1", "2025-01-10", "10:00", "11:00", "Pay"},
		[]any{"DAZN 1", "2025-01-10", "10:30", "11:30", "OTT Client"},
	)
	out := OverlapDuplicateDaybreak(tbl, rules.ColumnMappings.BSR, overlapRules)
	assert.Equal(t, []model.Verdict{P, P}, verdicts(out, OverlapConcern))
}

func TestDuplicate_FlagsAllOccurrences(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable([]string{"TV-Channel", "Date", "Start", "End"},
		[]any{"DAZN 1", "2025-01-10", "20:00", "22:00"},
		[]any{"DAZN 1", "2025-01-11", "20:00", "22:00"},
		[]any{"DAZN 1", "2025-01-10", "20:00:00", "22:00:00"},
	)
	out := OverlapDuplicateDaybreak(tbl, rules.ColumnMappings.BSR, rules.QCRules.OverlapCheck)
	assert.Equal(t, []model.Verdict{F, P, F}, verdicts(out, DuplicateConcern))
	assert.Equal(t, "Duplicate row found", remarks(out, DuplicateConcern)[0])
}

func TestDaybreak(t *testing.T) {
	t.Parallel()
	rules := defaultRules()
	cols := []string{"TV-Channel", "Channel ID", "Date", "Start", "End", "Combined"}

	tbl := newTable(cols,
		[]any{"DAZN 1", "C1", "2025-01-10", "22:00", "23:59", "M1"},
		[]any{"DAZN 1", "C1", "2025-01-11", "00:00", "01:00", "M1"},
		[]any{"DAZN 1", "C1", "2025-01-11", "01:10", "02:00", "M1"},
		[]any{"DAZN 2", "C2", "2025-01-10", "22:00", "23:30", "M2"},
		[]any{"DAZN 2", "C2", "2025-01-11", "02:00", "03:00", "M3"},
	)
	out := OverlapDuplicateDaybreak(tbl, rules.ColumnMappings.BSR, rules.QCRules.OverlapCheck)

	assert.Equal(t, []model.Verdict{P, P, F, P, F}, verdicts(out, DaybreakConcern))
	r := remarks(out, DaybreakConcern)
	assert.Contains(t, r[2], "Invalid continuation gap")
	assert.Equal(t, "Potential continuation across daybreak", r[4])
}

func TestOverlap_CoreColumnsMissing(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable([]string{"TV-Channel", "Date"}, []any{"DAZN 1", "2025-01-10"})
	out := OverlapDuplicateDaybreak(tbl, rules.ColumnMappings.BSR, rules.QCRules.OverlapCheck)
	for _, c := range []Concern{OverlapConcern, DuplicateConcern, DaybreakConcern} {
		assert.Equal(t, []model.Verdict{F}, verdicts(out, c))
		assert.Equal(t, "Check skipped: core columns missing", remarks(out, c)[0])
	}
}

func TestRatesRatings_Idempotent(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable([]string{"Aud. Estimates ['000s]", "Aud Metered (000s) 3+"},
		[]any{nil, ""},
		[]any{12.0, 10.0},
		[]any{nil, 0.0},
	)
	once := RatesRatings(tbl, rules.ColumnMappings.BSR)
	assert.Equal(t, []model.Verdict{F, F, P}, verdicts(once, RatesRatingsConcern))
	assert.Equal(t, []string{
		"Missing audience ratings (both empty)",
		"Invalid: both metered and estimated present",
		"Valid: one rating source available",
	}, remarks(once, RatesRatingsConcern))

	twice := RatesRatings(once, rules.ColumnMappings.BSR)
	assert.Equal(t, once.Columns(), twice.Columns())
	assert.Equal(t, verdicts(once, RatesRatingsConcern), verdicts(twice, RatesRatingsConcern))
	assert.Equal(t, remarks(once, RatesRatingsConcern), remarks(twice, RatesRatingsConcern))
}

func TestMarketChannel(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	rosco := model.Reference{Name: "rosco", Table: newTable([]string{"ChannelCountry", "ChannelName"},
		[]any{"Spain", "DAZN LaLiga (HD)"},
		[]any{"Germany", "Sky Sport Bundesliga"},
	)}
	tbl := newTable([]string{"Market", "TV-Channel"},
		[]any{"spain", "DAZN LaLiga - Spain"},
		[]any{"Spain", "Sky Sport Bundesliga"},
		[]any{"", "DAZN LaLiga"},
	)
	out := MarketChannel(tbl, rosco, rules.ColumnMappings)
	assert.Equal(t, []model.Verdict{P, F, F}, verdicts(out, MarketChannelConcern))
	assert.Equal(t, []string{"OK", "Market+Channel not found in ROSCO", "Missing market or channel"}, remarks(out, MarketChannelConcern))

	out = MarketChannel(tbl, model.MissingReference("rosco", "Rosco channel sheet not found"), rules.ColumnMappings)
	assert.Equal(t, []model.Verdict{N, N, F}, verdicts(out, MarketChannelConcern))
	assert.Equal(t, "Rosco channel sheet not found", remarks(out, MarketChannelConcern)[0])
}

func TestChannelIDs(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable([]string{"Market", "Market ID", "TV-Channel", "Channel ID"},
		[]any{"Spain", "M1", "DAZN 1", "C1"},
		[]any{"Spain", "M1", "DAZN 1", "C2"},
		[]any{"Spain", "M1", "DAZN 2", "C1"},
		[]any{"Spain", "M9", "DAZN 3", ""},
	)
	out := ChannelIDs(tbl, rules.ColumnMappings.BSR)
	assert.Equal(t, []model.Verdict{P, F, F, F}, verdicts(out, ChannelIDConcern))
	r := remarks(out, ChannelIDConcern)
	assert.Equal(t, "Channel 'DAZN 1' has multiple IDs (c1 vs c2)", r[1])
	assert.Equal(t, "Channel ID 'C1' assigned to multiple channels", r[2])
	assert.Equal(t, "Channel ID missing for 'DAZN 3'; Market 'Spain' has multiple IDs (m1 vs m9)", r[3])

	skipped := ChannelIDs(newTable([]string{"Market"}, []any{"Spain"}), rules.ColumnMappings.BSR)
	assert.Equal(t, []model.Verdict{F}, verdicts(skipped, ChannelIDConcern))
}

func TestClientSource(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable([]string{"Channel ID", "Market ID", "Pay/Free TV"},
		[]any{"C1", "M1", "Pay (Client)"},
		[]any{"C1", "M2", "LSTV"},
		[]any{"C3", "M3", "Free"},
		[]any{"", "M4", "OTT"},
	)
	out := ClientSource(tbl, rules.ColumnMappings.BSR, rules.QCRules.ClientCheck)
	assert.Equal(t, []model.Verdict{P, F, F, F}, verdicts(out, ClientSourceConcern))
	r := remarks(out, ClientSourceConcern)
	assert.Equal(t, "Channel ID C1 linked to multiple Market IDs", r[1])
	assert.Equal(t, "Missing Client/LSTV/OTT source: Free", r[2])
	assert.Equal(t, "Channel ID missing", r[3])
}

func TestDomesticMarket(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	cols := []string{"Market", "Competition", "Event", "Type of program", "Matchday"}
	tbl := newTable(cols,
		[]any{"Spain", "LaLiga", "Real Madrid v Barcelona", "Live", "MD1"},
		[]any{"Spain", "LaLiga", "Real Madrid v Barcelona", "Repeat", "MD1"},
		[]any{"Spain", "LaLiga", "Sevilla v Betis", "Repeat", "MD2"},
		[]any{"Spain", "LaLiga", "Goals of the week", "Highlights", "MD2"},
		[]any{"France", "LaLiga", "Sevilla v Betis", "Live", "MD2"},
		[]any{"Spain", "Premier League", "Arsenal v Chelsea", "Repeat", "MD2"},
	)
	out := DomesticMarket(tbl, rules.ColumnMappings.BSR, rules.ProjectRules)
	assert.Equal(t, []model.Verdict{P, P, F, N, N, N}, verdicts(out, DomesticMarketConcern))
	r := remarks(out, DomesticMarketConcern)
	assert.Equal(t, "No live/delayed coverage for matchday MD2", r[2])
	assert.Equal(t, "Not applicable for highlights or magazine programs", r[3])

	missing := DomesticMarket(newTable([]string{"Market"}, []any{"Spain"}), rules.ColumnMappings.BSR, rules.ProjectRules)
	assert.Equal(t, []model.Verdict{N}, verdicts(missing, DomesticMarketConcern))
}

func TestDuplicatedMarkets(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	macro := model.Reference{Name: "macro", Table: newTable(
		[]string{"Projects", "Orig Market", "Orig Channel", "Dup Market", "Dup Channel"},
		[]any{"F24 Spain", "Spain", "DAZN 1", "Andorra", "DAZN 1"},
		[]any{"F24 Spain", "Portugal", "Sport TV", "Angola", "Sport TV"},
		[]any{"F24 Italy", "Italy", "DAZN", "San Marino", "DAZN"},
	)}
	cols := []string{"Market", "TV-Channel", "Competition", "Event"}
	tbl := newTable(cols,
		[]any{"Spain", "DAZN 1", "F24 Spain", "A"},
		[]any{"Spain", "DAZN 1", "F24 Spain", "B"},
		[]any{"Spain", "DAZN 1", "F24 Spain", "C"},
		[]any{"Andorra", "DAZN 1", "F24 Spain", "A"},
		[]any{"Andorra", "DAZN 1", "F24 Spain", "B"},
		[]any{"France", "Canal+", "F24 Spain", "A"},
	)
	out := DuplicatedMarkets(tbl, macro, rules.ColumnMappings, rules.ProjectRules)
	v := verdicts(out, DuplicatedMarketsConcern)
	r := remarks(out, DuplicatedMarketsConcern)
	assert.Equal(t, F, v[3])
	assert.Equal(t, F, v[4])
	assert.Equal(t, "Missing 1 events in Andorra / DAZN 1", r[3])
	assert.Equal(t, N, v[5])
	requireComplete(t, out)

	complete := newTable(cols,
		[]any{"Spain", "DAZN 1", "F24 Spain", "A"},
		[]any{"Andorra", "DAZN 1", "F24 Spain", "A"},
		[]any{"Angola", "Sport TV", "F24 Spain", "A"},
	)
	out = DuplicatedMarkets(complete, macro, rules.ColumnMappings, rules.ProjectRules)
	assert.Equal(t, []model.Verdict{P, P, N}, verdicts(out, DuplicatedMarketsConcern))
	assert.Equal(t, "No events found in Portugal / Sport TV", remarks(out, DuplicatedMarketsConcern)[2])

	out = DuplicatedMarkets(complete, model.Reference{}, rules.ColumnMappings, rules.ProjectRules)
	assert.Equal(t, []model.Verdict{N, N, N}, verdicts(out, DuplicatedMarketsConcern))
	assert.Equal(t, "Macro file missing", remarks(out, DuplicatedMarketsConcern)[0])
}

func TestEmptyTableKeepsColumns(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable([]string{"Market", "TV-Channel", "Date", "Start", "End"})
	out := Period(tbl, model.Period{}, rules.ColumnMappings.BSR)
	out = OverlapDuplicateDaybreak(out, rules.ColumnMappings.BSR, rules.QCRules.OverlapCheck)
	out = RatesRatings(out, rules.ColumnMappings.BSR)

	require.Equal(t, 0, out.Len())
	for _, c := range []Concern{PeriodConcern, OverlapConcern, DuplicateConcern, DaybreakConcern, RatesRatingsConcern} {
		assert.True(t, out.HasColumn(c.OK), c.OK)
		assert.True(t, out.HasColumn(c.Remark), c.Remark)
	}
}
