// Package qc 实现 BSR 质检规则：每个检查都是纯函数，输入工作表与参考数据，
// 输出追加了 <Concern>_OK / <Concern>_Remark 两列的新表。
package qc

import (
	"strings"

	"bsrqc/internal/model"
	"bsrqc/internal/parser"
)

// Concern 一个检查输出的结论列与备注列
type Concern struct {
	OK     string
	Remark string
}

// 各检查的输出列
var (
	PeriodConcern            = Concern{"Within_Period_OK", "Within_Period_Remark"}
	CompletenessConcern      = Concern{"Completeness_OK", "Completeness_Remark"}
	OverlapConcern           = Concern{"Overlap_OK", "Overlap_Remark"}
	DuplicateConcern         = Concern{"Duplicate_OK", "Duplicate_Remark"}
	DaybreakConcern          = Concern{"Daybreak_OK", "Daybreak_Remark"}
	ProgramCategoryConcern   = Concern{"Program_Category_OK", "Program_Category_Remark"}
	EventMatchdayConcern     = Concern{"Event_Matchday_OK", "Event_Matchday_Remark"}
	MarketChannelConcern     = Concern{"Market_Channel_Consistency_OK", "Market_Channel_Consistency_Remark"}
	DomesticMarketConcern    = Concern{"Domestic_Market_Coverage_OK", "Domestic_Market_Coverage_Remark"}
	RatesRatingsConcern      = Concern{"Rates_Ratings_QC_OK", "Rates_Ratings_QC_Remark"}
	DuplicatedMarketsConcern = Concern{"Duplicated_Markets_OK", "Duplicated_Markets_Remark"}
	ChannelIDConcern         = Concern{"Market_Channel_ID_OK", "Market_Channel_ID_Remark"}
	ClientSourceConcern      = Concern{"Client_LSTV_OTT_OK", "Client_LSTV_OTT_Remark"}
)

// ProgramCategoryExpectedColumn 赛程推导出的期望节目类型
const ProgramCategoryExpectedColumn = "Program_Category_Expected"

// RemarkSeparator 同一行多条备注的分隔符
const RemarkSeparator = "; "

// outcome 单个检查的逐行结果
type outcome struct {
	verdicts []any
	remarks  []any
}

func newOutcome(n int, v model.Verdict, remark string) *outcome {
	o := &outcome{verdicts: make([]any, n), remarks: make([]any, n)}
	for i := 0; i < n; i++ {
		o.verdicts[i] = v
		o.remarks[i] = remark
	}
	return o
}

func (o *outcome) set(i int, v model.Verdict, remark string) {
	o.verdicts[i] = v
	o.remarks[i] = remark
}

// fail 标记失败并返回拼接后的备注
func (o *outcome) fail(i int, remarks []string) {
	o.set(i, model.Fail, joinRemarks(remarks))
}

func (o *outcome) columns(c Concern) []model.NamedColumn {
	return []model.NamedColumn{
		{Name: c.OK, Values: o.verdicts},
		{Name: c.Remark, Values: o.remarks},
	}
}

// apply 克隆输入表并写入本检查的两列
func (o *outcome) apply(t *model.Table, c Concern) *model.Table {
	return t.WithColumns(o.columns(c)...)
}

// whole 整列同一结论（列缺失、参考表缺失等）
func whole(t *model.Table, c Concern, v model.Verdict, remark string) *model.Table {
	return newOutcome(t.Len(), v, remark).apply(t, c)
}

func joinRemarks(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, RemarkSeparator)
}

// cell 读取已解析列的单元格；列未解析时返回 nil
func cell(t *model.Table, row int, ref parser.ColumnRef) any {
	if !ref.Found() {
		return nil
	}
	return t.Get(row, ref.Name)
}

// text 读取并规范化（小写、去空白）
func text(t *model.Table, row int, ref parser.ColumnRef) string {
	return parser.NormalizeText(cell(t, row, ref))
}

// raw 读取原始文本（去空白，保留大小写）用于备注
func raw(t *model.Table, row int, ref parser.ColumnRef) string {
	return model.CellText(cell(t, row, ref))
}

func present(t *model.Table, row int, ref parser.ColumnRef) bool {
	return parser.IsPresent(cell(t, row, ref))
}

func lowerAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func missingColumnsRemark(prefix string, fields []string) string {
	return prefix + ": " + strings.Join(fields, ", ")
}
