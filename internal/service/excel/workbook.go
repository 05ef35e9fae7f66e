package excel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// Workbook 已打开的工作簿（只读）
type Workbook struct {
	file     *excelize.File
	date1904 bool
	kinds    map[int]cellKind
}

func newWorkbook(f *excelize.File) *Workbook {
	w := &Workbook{file: f, kinds: make(map[int]cellKind)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}
	return w
}

// Open 打开工作簿，调用方负责 Close
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel %s: %w", path, err)
	}
	return newWorkbook(f), nil
}

// FromFile 包装已有的 excelize 文件
func FromFile(f *excelize.File) *Workbook {
	return newWorkbook(f)
}

// Close 关闭工作簿
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Sheets 按顺序返回工作表名
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// Rows 读取工作表的所有行
// 普通单元格取显示值；日期/时间格式的单元格按存储的序列值转为 ISO 文本，不受 dd/mm 等显示格式影响
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	for r := range rows {
		if r >= len(raw) {
			break
		}
		for c := range rows[r] {
			if c >= len(raw[r]) || raw[r][c] == rows[r][c] {
				continue
			}
			rows[r][c] = w.storedText(sheet, c+1, r+1, rows[r][c], raw[r][c])
		}
	}
	return rows, nil
}

// FindSheet 返回第一个名称包含关键词的工作表（忽略大小写）
func (w *Workbook) FindSheet(keyword string) (string, bool) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return "", false
	}
	for _, name := range w.Sheets() {
		if strings.Contains(strings.ToLower(name), keyword) {
			return name, true
		}
	}
	return "", false
}

// BuildTable 以 headerRow 为表头构建工作表
// 表头之后的全空行被跳过；规范写法的数值文本转为 float64，"007" 之类保留原文
func BuildTable(rows [][]string, headerRow int) *model.Table {
	if headerRow < 0 || headerRow >= len(rows) {
		return model.NewTable(nil)
	}
	width := 0
	for _, r := range rows[headerRow:] {
		if len(r) > width {
			width = len(r)
		}
	}
	columns := parser.HeaderNames(rows[headerRow], width)
	t := model.NewTable(columns)
	for _, r := range rows[headerRow+1:] {
		if isBlankRow(r) {
			continue
		}
		values := make([]any, len(columns))
		for i := range values {
			if i < len(r) {
				values[i] = cellValue(r[i])
			}
		}
		t.AppendRow(values...)
	}
	return t
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// 只转换能原样写回的数值，前导零、千分位、科学计数等编号保持文本
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}

// BSRSheet BSR 主表加载结果
type BSRSheet struct {
	Sheet  string
	Header parser.HeaderMatch
	Table  *model.Table
}

// LoadBSR 读取第一个工作表，自动识别表头行
func LoadBSR(wb *Workbook, rules *config.Rules) (*BSRSheet, error) {
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, err
	}

	terms := headerTerms(rules.ColumnMappings.BSR, parser.HeaderKeyFields)
	match, err := parser.DetectHeaderRow(rows, terms, rules.FileRules.HeaderScanRows)
	if err != nil {
		return nil, err
	}
	return &BSRSheet{Sheet: sheet, Header: match, Table: BuildTable(rows, match.Row)}, nil
}

// LoadFixtures 查找名称含赛程关键词的工作表
func LoadFixtures(wb *Workbook, rules *config.Rules) model.Reference {
	sheet, ok := wb.FindSheet(rules.FileRules.FixtureSheetKeyword)
	if !ok {
		return model.MissingReference("fixtures", "Fixture list sheet missing")
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return model.MissingReference("fixtures", "Fixture list missing or invalid")
	}
	terms := headerTerms(rules.ColumnMappings.Fixture, []string{"home_team", "away_team", "date", "start_time"})
	return model.Reference{Name: sheet, Table: BuildTable(rows, headerRowOrFirst(rows, terms, rules.FileRules.HeaderScanRows))}
}

// RoscoSheet Rosco 文件加载结果
type RoscoSheet struct {
	Period model.Period
	Roster model.Reference
}

// LoadRosco 第一个工作表提取监测周期，第一个不含忽略关键词的工作表作为频道表
func LoadRosco(wb *Workbook, rules *config.Rules) (*RoscoSheet, error) {
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := wb.Rows(sheets[0])
	if err != nil {
		return nil, err
	}
	period, err := parser.DetectPeriod(rows)
	if err != nil {
		return nil, err
	}

	out := &RoscoSheet{Period: period}
	ignore := strings.ToLower(strings.TrimSpace(rules.FileRules.RoscoIgnoreSheet))
	for _, name := range sheets {
		if ignore != "" && strings.Contains(strings.ToLower(name), ignore) {
			continue
		}
		rows, err := wb.Rows(name)
		if err != nil {
			out.Roster = model.MissingReference("rosco", "Error loading ROSCO file")
			return out, nil
		}
		terms := headerTerms(rules.ColumnMappings.Rosco, []string{"channel_country", "channel_name"})
		out.Roster = model.Reference{Name: name, Table: BuildTable(rows, headerRowOrFirst(rows, terms, rules.FileRules.HeaderScanRows))}
		return out, nil
	}
	out.Roster = model.MissingReference("rosco", fmt.Sprintf("No valid sheet found in ROSCO (ignoring '%s')", rules.FileRules.RoscoIgnoreSheet))
	return out, nil
}

// LoadMacro 读取宏观复制表，表头行由规则给定
func LoadMacro(wb *Workbook, rules *config.Rules) model.Reference {
	name := rules.FileRules.MacroSheetName
	sheet := ""
	for _, s := range wb.Sheets() {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(name)) {
			sheet = s
			break
		}
	}
	if sheet == "" {
		return model.MissingReference("macro", fmt.Sprintf("Macro sheet '%s' not found", name))
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return model.MissingReference("macro", "Error loading macro file")
	}
	header := rules.FileRules.MacroHeaderRow
	if header >= len(rows) {
		return model.MissingReference("macro", "Macro sheet is empty")
	}
	return model.Reference{Name: sheet, Table: BuildTable(rows, header)}
}

func headerTerms(aliases config.Aliases, fields []string) []string {
	return parser.NewFieldMapper(nil, aliases).KeyTerms(fields...)
}

// headerRowOrFirst 识别表头行，失败时取第一行
func headerRowOrFirst(rows [][]string, terms []string, maxScan int) int {
	if match, err := parser.DetectHeaderRow(rows, terms, maxScan); err == nil {
		return match.Row
	}
	return 0
}
