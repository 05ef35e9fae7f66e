package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"bsrqc/internal/config"
	"bsrqc/internal/model"
)

// 报告配色
const (
	HeaderFill = "#BDD7EE"
	PassFill   = "#C6EFCE"
	FailFill   = "#FFC7CE"
)

// Report 质检报告导出器
type Report struct {
	rules config.FileRules
}

// NewReport 创建报告导出器
func NewReport(rules config.FileRules) *Report {
	return &Report{rules: rules}
}

// Build 生成报告工作簿：结果表（*_OK 单元格着色）+ 汇总表
func (r *Report) Build(t *model.Table, summaries []model.CheckSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := r.sheetName(r.rules.OutputSheetName, "QC Results")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	columns := t.Columns()
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
			return nil, err
		}
	}

	verdictCols := make(map[int]bool)
	for i, c := range columns {
		if strings.HasSuffix(c, "_OK") {
			verdictCols[i] = true
		}
	}

	for row := 0; row < t.Len(); row++ {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = exportValue(t.Get(row, c))
		}
		start, _ := excelize.CoordinatesToCellName(1, row+2)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
		}
		for i := range verdictCols {
			v, _ := t.Get(row, columns[i]).(model.Verdict)
			style := 0
			switch v {
			case model.Pass:
				style = styles.pass
			case model.Fail:
				style = styles.fail
			}
			if style == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, row+2)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return nil, err
			}
		}
	}

	if len(columns) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(columns))
		_ = f.SetColWidth(sheet, "A", lastCol, 18)
		_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}

	if err := r.writeSummary(f, summaries, styles); err != nil {
		return nil, err
	}
	return f, nil
}

// Save 生成报告并写入磁盘
func (r *Report) Save(path string, t *model.Table, summaries []model.CheckSummary) error {
	f, err := r.Build(t, summaries)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (r *Report) writeSummary(f *excelize.File, summaries []model.CheckSummary, styles *reportStyles) error {
	sheet := r.sheetName(r.rules.SummarySheetName, "Summary")
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	data := [][]any{{"Check", "Total", "Passed", "Failed", "N/A"}}
	for _, s := range summaries {
		data = append(data, []any{s.Check, s.Total, s.Passed, s.Failed, s.NotApplicable})
	}
	for i, row := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", styles.header); err != nil {
		return err
	}
	_ = f.SetColWidth(sheet, "A", "A", 36)
	_ = f.SetColWidth(sheet, "B", "E", 12)
	return nil
}

func (r *Report) sheetName(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

type reportStyles struct {
	header int
	pass   int
	fail   int
}

func newStyles(f *excelize.File) (*reportStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{HeaderFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	pass, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{PassFill}, Pattern: 1}})
	if err != nil {
		return nil, fmt.Errorf("failed to create pass style: %w", err)
	}
	fail, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{FailFill}, Pattern: 1}})
	if err != nil {
		return nil, fmt.Errorf("failed to create fail style: %w", err)
	}
	return &reportStyles{header: header, pass: pass, fail: fail}, nil
}

// exportValue 结论写成布尔值或 "Not Applicable"
func exportValue(v any) any {
	switch x := v.(type) {
	case model.Verdict:
		switch x {
		case model.Pass:
			return true
		case model.Fail:
			return false
		default:
			return "Not Applicable"
		}
	case nil:
		return nil
	default:
		return x
	}
}

// FillColor 读取单元格的填充色（无填充返回空串）
func FillColor(f *excelize.File, sheet, cell string) (string, error) {
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return "", err
	}
	style, err := f.GetStyle(id)
	if err != nil || style == nil {
		return "", err
	}
	if len(style.Fill.Color) == 0 {
		return "", nil
	}
	return strings.ToUpper(strings.TrimPrefix(style.Fill.Color[0], "#")), nil
}
