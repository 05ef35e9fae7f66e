package qc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bsrqc/internal/model"
)

func fixtureList() model.Reference {
	return model.Reference{Name: "fixtures", Table: newTable(
		[]string{"Home Team", "Away Team", "Date", "Kick-off", "Event", "Matchday"},
		[]any{"Real Madrid", "Barcelona", "2025-01-10", "20:00", "Real Madrid v Barcelona", "1"},
		[]any{"Sevilla", "Betis", "2025-01-11", "18:00", "Sevilla v Betis", "1"},
	)}
}

var bsrColumns = []string{"Type of program", "Home Team", "Away Team", "Date", "Start", "End", "Program Description", "Source"}

func TestProgramCategory(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable(bsrColumns,
		[]any{"Live", "Real Madrid", "Barcelona", "2025-01-10", "20:05", "22:00", "", "Broadcaster"},
		[]any{"Repeat", "Real Madrid", "Barcelona", "2025-01-10", "23:00", "23:50", "", "Broadcaster"},
		[]any{"Live", "Real Madrid", "Barcelona", "2025-01-10", "21:00", "22:00", "", "Broadcaster"},
		[]any{"Highlights", "", "", "2025-01-10", "18:00", "18:15", "Goals of the day", "Broadcaster"},
		[]any{"Magazine", "", "", "2025-01-10", "12:00", "13:00", "Weekly show", "Broadcaster"},
		[]any{"Trailer", "", "", "2025-01-10", "12:00", "12:01", "", "Broadcaster"},
		[]any{"Live", "Valencia", "Girona", "2025-01-10", "16:00", "18:00", "", "Broadcaster"},
	)
	out := ProgramCategory(tbl, fixtureList(), rules.ColumnMappings, rules.QCRules.ProgramCategory)

	assert.Equal(t, []model.Verdict{P, P, F, P, F, F, F}, verdicts(out, ProgramCategoryConcern))
	r := remarks(out, ProgramCategoryConcern)
	assert.Equal(t, "OK", r[0])
	assert.Equal(t, "Expected 'repeat', found 'live'", r[2])
	assert.Equal(t, "OK", r[3])
	assert.Equal(t, "Invalid duration (60.00 min) for magazine (Rule: 10-40 min)", r[4])
	assert.Equal(t, "Invalid Actual Type: 'trailer'", r[5])
	assert.Equal(t, "No matching fixture found", r[6])

	expected := out.Column(ProgramCategoryExpectedColumn)
	assert.Equal(t, "live", expected[0])
	assert.Equal(t, "repeat", expected[1])
	assert.Nil(t, expected[5])
	requireComplete(t, out)
}

func TestProgramCategory_DelayedAndBSA(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable(bsrColumns,
		[]any{"Live", "Real Madrid", "Barcelona", "2025-01-10", "20:00", "23:30", "", "BSA"},
		[]any{"Delayed", "Sevilla", "Betis", "2025-01-11", "19:00", "21:00", "", "Broadcaster"},
		[]any{"Highlights", "", "", "2025-01-11", "19:00", "19:20", "Matchday recap", "Broadcaster"},
	)
	out := ProgramCategory(tbl, fixtureList(), rules.ColumnMappings, rules.QCRules.ProgramCategory)

	assert.Equal(t, []model.Verdict{F, P, P}, verdicts(out, ProgramCategoryConcern))
	r := remarks(out, ProgramCategoryConcern)
	assert.Equal(t, "BSA Live > 180 mins (Invalid)", r[0])
	assert.Equal(t, "OK (Duration valid, but keywords missing)", r[2])
}

func TestProgramCategory_BSARepeat(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable(bsrColumns,
		[]any{"Live", "Real Madrid", "Barcelona", "2025-01-10", "20:05", "22:00", "", "Broadcaster"},
		[]any{"Repeat", "Real Madrid", "Barcelona", "2025-01-10", "23:40", "03:00", "", "BSA"},
		[]any{"Repeat", "Real Madrid", "Barcelona", "2025-01-10", "23:55", "", "", "BSA"},
	)
	out := ProgramCategory(tbl, fixtureList(), rules.ColumnMappings, rules.QCRules.ProgramCategory)

	assert.Equal(t, []model.Verdict{P, F, F}, verdicts(out, ProgramCategoryConcern))
	r := remarks(out, ProgramCategoryConcern)
	assert.Equal(t, "BSA Repeat > 180 mins (Invalid)", r[1])
	assert.Equal(t, "BSA Repeat has invalid duration (NaN)", r[2])
}

func TestProgramCategory_FixtureUnavailable(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable(bsrColumns,
		[]any{"Live", "Real Madrid", "Barcelona", "2025-01-10", "20:00", "22:00", "", ""},
		[]any{"Highlights", "", "", "2025-01-10", "18:00", "18:15", "Best of", ""},
	)
	out := ProgramCategory(tbl, model.MissingReference("fixtures", "Fixture list sheet missing"), rules.ColumnMappings, rules.QCRules.ProgramCategory)
	assert.Equal(t, []model.Verdict{F, P}, verdicts(out, ProgramCategoryConcern))
	assert.Equal(t, "Fixture list sheet missing", remarks(out, ProgramCategoryConcern)[0])
}

func TestDurations(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	tbl := newTable([]string{"Start", "End", "Duration"},
		[]any{"23:30", "00:30", nil},
		[]any{"", "", "1:15"},
		[]any{"", "", "n/a"},
	)
	d := Durations(tbl, rules.ColumnMappings.BSR)
	require.Len(t, d, 3)
	assert.Equal(t, 60.0, d[0])
	assert.Equal(t, 75.0, d[1])
	assert.True(t, math.IsNaN(d[2]))
}

func TestEventMatchday(t *testing.T) {
	t.Parallel()
	rules := defaultRules()

	cols := []string{"Type of program", "Event", "Home Team", "Away Team", "Matchday"}
	tbl := newTable(cols,
		[]any{"Live", "Real Madrid v Barcelona", "real madrid", "BARCELONA", "1"},
		[]any{"Live", "Real Madrid v Barcelona", "Real Madrid", "Barcelona", "2"},
		[]any{"Live", "Sevilla v Betis", "Sevilla", "Betis", ""},
		[]any{"Repeat", "Real Madrid v Barcelona", "Real Madrid", "Barcelona", "1"},
	)
	out := EventMatchday(tbl, fixtureList(), rules.ColumnMappings)
	assert.Equal(t, []model.Verdict{P, F, F, N}, verdicts(out, EventMatchdayConcern))
	assert.Equal(t, []string{
		"Fixture found",
		"No matching fixture found",
		"Missing event/home/away/matchday in BSR",
		"Not applicable for this program type",
	}, remarks(out, EventMatchdayConcern))

	out = EventMatchday(tbl, model.Reference{}, rules.ColumnMappings)
	assert.Equal(t, []model.Verdict{F, F, F, N}, verdicts(out, EventMatchdayConcern))
	assert.Equal(t, "Fixture list missing or invalid", remarks(out, EventMatchdayConcern)[0])
}
