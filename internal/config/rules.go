package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// RulesEnvPrefix 质检规则的环境变量前缀，层级用双下划线分隔
// 例：BSRQC_RULES__QC_RULES__OVERLAP_CHECK__DAYBREAK_GAP_TOLERANCE_MIN=3
const RulesEnvPrefix = "BSRQC_RULES__"

// Rules 质检规则配置：列别名、检查阈值、文件规则、项目规则
// 加载后只读，显式传给每个检查
type Rules struct {
	ColumnMappings ColumnMappings `koanf:"column_mappings" json:"column_mappings" validate:"required"`
	QCRules        QCRules        `koanf:"qc_rules" json:"qc_rules"`
	FileRules      FileRules      `koanf:"file_rules" json:"file_rules"`
	ProjectRules   ProjectRules   `koanf:"project_rules" json:"project_rules"`
}

// Aliases 逻辑字段 -> 候选表头（按优先级）
type Aliases = map[string][]string

// ColumnMappings 各数据源的列别名
type ColumnMappings struct {
	BSR     Aliases `koanf:"bsr" json:"bsr" validate:"required,dive,min=1,dive,required"`
	Rosco   Aliases `koanf:"rosco" json:"rosco" validate:"dive,min=1,dive,required"`
	Fixture Aliases `koanf:"fixture" json:"fixture" validate:"dive,min=1,dive,required"`
	Macro   Aliases `koanf:"macro" json:"macro" validate:"dive,min=1,dive,required"`
}

// QCRules 各检查的可调参数
type QCRules struct {
	Completeness    CompletenessRules    `koanf:"completeness" json:"completeness"`
	ProgramCategory ProgramCategoryRules `koanf:"program_category" json:"program_category"`
	OverlapCheck    OverlapRules         `koanf:"overlap_check" json:"overlap_check"`
	ClientCheck     ClientRules          `koanf:"client_check" json:"client_check"`
}

// CompletenessRules 完整性检查
type CompletenessRules struct {
	MandatoryFields []string `koanf:"mandatory_fields" json:"mandatory_fields" validate:"required,min=1,dive,required"`
}

// ProgramCategoryRules 节目类型检查
type ProgramCategoryRules struct {
	LiveTypes          []string                `koanf:"live_types" json:"live_types" validate:"required,min=1"`
	RelaxedTypes       []string                `koanf:"relaxed_types" json:"relaxed_types"`
	HighlightKeywords  []string                `koanf:"highlight_keywords" json:"highlight_keywords"`
	MagazineKeywords   []string                `koanf:"magazine_keywords" json:"magazine_keywords"`
	LiveToleranceMin   float64                 `koanf:"live_tolerance_min" json:"live_tolerance_min" validate:"gte=0"`
	BSASourceKeyword   string                  `koanf:"bsa_source_keyword" json:"bsa_source_keyword"`
	BSAMaxDuration     float64                 `koanf:"bsa_max_duration" json:"bsa_max_duration" validate:"gt=0"`
	SupportDurationMin float64                 `koanf:"support_duration_min" json:"support_duration_min" validate:"gte=0"`
	SupportDurationMax float64                 `koanf:"support_duration_max" json:"support_duration_max" validate:"gtefield=SupportDurationMin"`
	DurationBands      map[string]DurationBand `koanf:"duration_bands" json:"duration_bands" validate:"dive"`
}

// DurationBand 时长区间（分钟，含边界）
type DurationBand struct {
	Min float64 `koanf:"min" json:"min" validate:"gte=0"`
	Max float64 `koanf:"max" json:"max" validate:"gtefield=Min"`
}

// Band 节目类型对应的时长区间；未单独配置时使用通用区间
func (r ProgramCategoryRules) Band(programType string) DurationBand {
	if b, ok := r.DurationBands[strings.ToLower(strings.TrimSpace(programType))]; ok {
		return b
	}
	return DurationBand{Min: r.SupportDurationMin, Max: r.SupportDurationMax}
}

// Keywords 节目类型对应的描述关键词
func (r ProgramCategoryRules) Keywords(programType string) []string {
	switch strings.ToLower(strings.TrimSpace(programType)) {
	case "highlights", "highlight":
		return r.HighlightKeywords
	case "magazine":
		return r.MagazineKeywords
	default:
		return nil
	}
}

// OverlapRules 重叠 / 重复 / 跨天检查
type OverlapRules struct {
	IgnorePlatforms         []string `koanf:"ignore_platforms" json:"ignore_platforms"`
	DaybreakGapToleranceMin float64  `koanf:"daybreak_gap_tolerance_min" json:"daybreak_gap_tolerance_min" validate:"gte=0"`
}

// ClientRules Client/LSTV/OTT 来源检查
type ClientRules struct {
	Keywords []string `koanf:"keywords" json:"keywords" validate:"required,min=1,dive,required"`
}

// FileRules 工作簿结构规则
type FileRules struct {
	FixtureSheetKeyword string `koanf:"fixture_sheet_keyword" json:"fixture_sheet_keyword" validate:"required"`
	RoscoIgnoreSheet    string `koanf:"rosco_ignore_sheet" json:"rosco_ignore_sheet"`
	MacroSheetName      string `koanf:"macro_sheet_name" json:"macro_sheet_name" validate:"required"`
	MacroHeaderRow      int    `koanf:"macro_header_row" json:"macro_header_row" validate:"gte=0"`
	HeaderScanRows      int    `koanf:"header_scan_rows" json:"header_scan_rows" validate:"gte=1"`
	OutputSheetName     string `koanf:"output_sheet_name" json:"output_sheet_name" validate:"required,max=31"`
	SummarySheetName    string `koanf:"summary_sheet_name" json:"summary_sheet_name" validate:"required,max=31,nefield=OutputSheetName"`
}

// ProjectRules 项目（联赛）规则
type ProjectRules struct {
	LeagueKeyword          string   `koanf:"league_keyword" json:"league_keyword"`
	DomesticMarket         string   `koanf:"domestic_market" json:"domestic_market"`
	DomesticLeagueKeywords []string `koanf:"domestic_league_keywords" json:"domestic_league_keywords"`
}

// LoadRules 加载质检规则：默认值 -> 规则文件（.json/.yaml/.yml）-> 环境变量
// path 为空时只使用默认值与环境变量
func LoadRules(path string) (*Rules, error) {
	k := koanf.New(".")

	if err := k.Load(defaultsProvider{}, kjson.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default rules: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("rules file not found: %w", err)
		}
		var parser koanf.Parser = kjson.Parser()
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yamlParser{}
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load rules file %s: %w", filepath.Base(path), err)
		}
	}

	if err := k.Load(env.ProviderWithValue(RulesEnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load rules from environment: %w", err)
	}

	var rules Rules
	dc := &mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &rules,
		WeaklyTypedInput: true,
	}
	if err := k.UnmarshalWithConf("", &rules, koanf.UnmarshalConf{Tag: "koanf", DecoderConfig: dc}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// envKeyValue BSRQC_RULES__A__B=x,y -> a.b = [x y]
func envKeyValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, RulesEnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return key, out
	}
	return key, value
}

// Validate 结构校验 + 检查所需字段的别名校验
func (r *Rules) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("rules validation failed: %w", err)
	}

	var missing []string
	for _, f := range RequiredBSRFields {
		if len(r.ColumnMappings.BSR[f]) == 0 {
			missing = append(missing, f)
		}
	}
	for _, f := range r.QCRules.Completeness.MandatoryFields {
		if len(r.ColumnMappings.BSR[f]) == 0 && !contains(missing, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("rules validation failed: %w: %s", ErrMissingAliases, strings.Join(missing, ", "))
	}
	return nil
}

// ErrMissingAliases 某个检查需要的逻辑字段没有配置别名
var ErrMissingAliases = errors.New("no aliases configured for bsr fields")

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// JSON 以 JSON 输出当前规则（用于 rules 命令 / 接口）
func (r *Rules) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// defaultsProvider 以 JSON 形式提供默认规则
type defaultsProvider struct{}

func (defaultsProvider) ReadBytes() ([]byte, error) {
	return json.Marshal(DefaultRules())
}

func (defaultsProvider) Read() (map[string]any, error) {
	return nil, errors.New("defaults provider does not support Read()")
}
