package model

import "time"

// Period 监测周期（含首尾两天）
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains 判断日期是否落在周期内，只比较日期部分
func (p Period) Contains(d time.Time) bool {
	day := truncateDay(d)
	return !day.Before(truncateDay(p.Start)) && !day.After(truncateDay(p.End))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Reference 只读参考表（赛程表、Rosco 频道表、宏观复制表）
// Table 为 nil 表示不可用，Problem 给出原因
type Reference struct {
	Name    string
	Table   *Table
	Problem string
}

// Available 参考表是否可用
func (r Reference) Available() bool {
	return r.Table != nil
}

// MissingReference 构造不可用的参考表
func MissingReference(name, problem string) Reference {
	return Reference{Name: name, Problem: problem}
}

// CheckSummary 单个 *_OK 列的汇总
type CheckSummary struct {
	Check         string `json:"check"`
	Total         int    `json:"total"`
	Passed        int    `json:"passed"`
	Failed        int    `json:"failed"`
	NotApplicable int    `json:"notApplicable"`
}

// Summarize 统计表中所有 *_OK 列
func Summarize(t *Table) []CheckSummary {
	cols := t.VerdictColumns()
	out := make([]CheckSummary, 0, len(cols))
	for _, c := range cols {
		out = append(out, SummarizeColumn(t, c))
	}
	return out
}

// SummarizeColumn 统计单列
func SummarizeColumn(t *Table, column string) CheckSummary {
	s := CheckSummary{Check: column, Total: t.Len()}
	for _, v := range t.Column(column) {
		switch v {
		case Pass, true:
			s.Passed++
		case Fail, false:
			s.Failed++
		}
	}
	s.NotApplicable = s.Total - s.Passed - s.Failed
	return s
}
