package config

import "gopkg.in/yaml.v3"

// RequiredBSRFields 检查会用到的 BSR 逻辑字段
var RequiredBSRFields = []string{
	"market", "market_id", "tv_channel", "channel_id", "date", "start_time", "end_time",
	"duration", "type_of_program", "competition", "event", "match_day", "home_team",
	"away_team", "program_desc", "pay_tv", "source", "aud_estimates", "aud_metered",
}

// DefaultRules 内置默认规则
func DefaultRules() *Rules {
	return &Rules{
		ColumnMappings: ColumnMappings{
			BSR: Aliases{
				"market":          {"Market", "Country", "Territory"},
				"market_id":       {"Market ID", "Country ID", "MarketID"},
				"tv_channel":      {"TV-Channel", "TV Channel", "Channel", "Broadcaster"},
				"channel_id":      {"Channel ID", "TV-Channel ID", "ChannelID"},
				"date":            {"Date", "Date (UTC)", "Air Date", "Broadcast Date"},
				"start_time":      {"Start", "Start (UTC)", "Start Time", "Start time (UTC)"},
				"end_time":        {"End", "End (UTC)", "End Time", "End time (UTC)"},
				"duration":        {"Duration", "Duration (UTC)", "Duration (min)"},
				"type_of_program": {"Type of program", "Program Type", "Type of Program", "Broadcast Type"},
				"competition":     {"Competition", "League", "Tournament"},
				"event":           {"Event", "Match", "Fixture"},
				"match_day":       {"Matchday", "Match Day", "Round"},
				"home_team":       {"Home Team", "Home", "HomeTeam"},
				"away_team":       {"Away Team", "Away", "AwayTeam"},
				"program_desc":    {"Program Description", "Description", "Programme", "Program Title"},
				"pay_tv":          {"Pay/Free TV", "Pay TV", "Pay/Free", "Platform"},
				"source":          {"Source", "Data Source"},
				"aud_estimates":   {"Aud. Estimates ['000s]", "Audience Estimates", "Aud Estimates"},
				"aud_metered":     {"Aud Metered (000s) 3+", "Audience Metered", "Aud Metered"},
				"combined":        {"Combined", "Program ID", "Programme ID"},
			},
			Rosco: Aliases{
				"channel_country": {"ChannelCountry", "Channel Country", "Market", "Country"},
				"channel_name":    {"ChannelName", "Channel Name", "TV-Channel", "Channel"},
			},
			Fixture: Aliases{
				"home_team":  {"Home Team", "Home", "HomeTeam"},
				"away_team":  {"Away Team", "Away", "AwayTeam"},
				"date":       {"Date", "Match Date", "Date (UTC)"},
				"start_time": {"Start", "Kick-off", "Kickoff", "Start (UTC)", "Time"},
				"event":      {"Event", "Match", "Fixture"},
				"match_day":  {"Matchday", "Match Day", "Round"},
			},
			Macro: Aliases{
				"projects":     {"Projects", "Project"},
				"orig_market":  {"Orig Market", "Original Market", "Source Market"},
				"orig_channel": {"Orig Channel", "Original Channel", "Source Channel"},
				"dup_market":   {"Dup Market", "Duplicated Market", "Target Market"},
				"dup_channel":  {"Dup Channel", "Duplicated Channel", "Target Channel"},
			},
		},
		QCRules: QCRules{
			Completeness: CompletenessRules{
				MandatoryFields: []string{"tv_channel", "channel_id", "match_day", "source"},
			},
			ProgramCategory: ProgramCategoryRules{
				LiveTypes:          []string{"live", "repeat", "delayed"},
				RelaxedTypes:       []string{"highlights", "magazine"},
				HighlightKeywords:  []string{"highlight", "resumen", "best of", "goals"},
				MagazineKeywords:   []string{"magazine", "preview", "review", "show"},
				LiveToleranceMin:   30,
				BSASourceKeyword:   "bsa",
				BSAMaxDuration:     180,
				SupportDurationMin: 10,
				SupportDurationMax: 40,
				DurationBands:      map[string]DurationBand{},
			},
			OverlapCheck: OverlapRules{
				IgnorePlatforms:         []string{},
				DaybreakGapToleranceMin: 2,
			},
			ClientCheck: ClientRules{
				Keywords: []string{"client", "lstv", "ott"},
			},
		},
		FileRules: FileRules{
			FixtureSheetKeyword: "fixture",
			RoscoIgnoreSheet:    "general",
			MacroSheetName:      "Data Core",
			MacroHeaderRow:      1,
			HeaderScanRows:      200,
			OutputSheetName:     "QC Results",
			SummarySheetName:    "Summary",
		},
		ProjectRules: ProjectRules{
			LeagueKeyword:          "F24 Spain",
			DomesticMarket:         "Spain",
			DomesticLeagueKeywords: []string{"laliga", "la liga"},
		},
	}
}

// yamlParser koanf 的 YAML 解析器（yaml.v3）
type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlParser) Marshal(m map[string]any) ([]byte, error) {
	return yaml.Marshal(m)
}
