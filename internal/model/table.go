package model

import "strings"

// Table 工作表：按行保存的单元格数据，列名有序
// 检查函数只追加或覆盖自己的列，不会删除或重排行
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// NewTable 创建指定列的空表
func NewTable(columns []string) *Table {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

func (t *Table) addColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.columns = append(t.columns, name)
	t.index[name] = len(t.columns) - 1
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], nil)
	}
	return len(t.columns) - 1
}

// Columns 返回列名副本
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len 行数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// HasColumn 判断列是否存在（精确匹配）
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AppendRow 追加一行，多余的值被丢弃，缺失的值补 nil
func (t *Table) AppendRow(values ...any) {
	row := make([]any, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Get 读取单元格；列不存在或越界时返回 nil
func (t *Table) Get(row int, column string) any {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return nil
	}
	return t.rows[row][i]
}

// String 读取单元格文本（去除首尾空白）
func (t *Table) String(row int, column string) string {
	return CellText(t.Get(row, column))
}

// Column 返回整列的值
func (t *Table) Column(column string) []any {
	i, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]any, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out
}

// Clone 浅拷贝表结构；单元格值均为不可变标量
func (t *Table) Clone() *Table {
	c := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]any, len(t.rows)),
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	for r, row := range t.rows {
		c.rows[r] = append(make([]any, 0, len(row)+4), row...)
	}
	return c
}

// SetColumn 写入整列；已存在则覆盖，否则追加到末尾
// values 长度必须等于行数，否则 panic（调用方的编程错误）
func (t *Table) SetColumn(name string, values []any) {
	if len(values) != len(t.rows) {
		panic("model: column length does not match row count: " + name)
	}
	i := t.addColumn(name)
	for r := range t.rows {
		t.rows[r][i] = values[r]
	}
}

// WithColumns 克隆后写入多列，返回新表
func (t *Table) WithColumns(cols ...NamedColumn) *Table {
	out := t.Clone()
	for _, c := range cols {
		out.SetColumn(c.Name, c.Values)
	}
	return out
}

// NamedColumn 列名与值
type NamedColumn struct {
	Name   string
	Values []any
}

// VerdictColumns 返回所有 *_OK 列名（保持列顺序）
func (t *Table) VerdictColumns() []string {
	var out []string
	for _, c := range t.columns {
		if strings.HasSuffix(c, "_OK") {
			out = append(out, c)
		}
	}
	return out
}
