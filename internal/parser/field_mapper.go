package parser

import (
	"strings"

	"bsrqc/internal/model"
)

// ColumnRef 逻辑字段的解析结果
type ColumnRef struct {
	Field string // 逻辑字段名，如 tv_channel
	Name  string // 表中的实际列名；未找到时为空
}

// Found 是否解析到实际列
func (c ColumnRef) Found() bool {
	return c.Name != ""
}

// Resolve 在列名中查找第一个匹配的别名（忽略大小写和首尾空白）
// 以别名顺序为准；多个列规范化后相同时取表中靠前的列
func Resolve(columns []string, aliases []string) (string, bool) {
	lower := make(map[string]string, len(columns))
	for _, c := range columns {
		key := NormalizeColumnName(c)
		if _, exists := lower[key]; !exists {
			lower[key] = c
		}
	}
	for _, alias := range aliases {
		key := NormalizeColumnName(alias)
		if key == "" {
			continue
		}
		if col, ok := lower[key]; ok {
			return col, true
		}
	}
	return "", false
}

// FieldMapper 将某个数据源的别名表绑定到一张表
type FieldMapper struct {
	aliases map[string][]string
	columns []string
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper(t *model.Table, aliases map[string][]string) *FieldMapper {
	var cols []string
	if t != nil {
		cols = t.Columns()
	}
	return &FieldMapper{aliases: aliases, columns: cols}
}

// Aliases 返回逻辑字段的别名；未配置时退化为字段名本身
func (m *FieldMapper) Aliases(field string) []string {
	if a := m.aliases[field]; len(a) > 0 {
		return a
	}
	return []string{field}
}

// Get 解析逻辑字段
func (m *FieldMapper) Get(field string) ColumnRef {
	name, _ := Resolve(m.columns, m.Aliases(field))
	return ColumnRef{Field: field, Name: name}
}

// Lookup 批量解析，返回结果与缺失字段（按入参顺序）
func (m *FieldMapper) Lookup(fields ...string) (map[string]ColumnRef, []string) {
	refs := make(map[string]ColumnRef, len(fields))
	var missing []string
	for _, f := range fields {
		ref := m.Get(f)
		refs[f] = ref
		if !ref.Found() {
			missing = append(missing, f)
		}
	}
	return refs, missing
}

// KeyTerms 表头识别用的关键词：各字段的第一个别名
func (m *FieldMapper) KeyTerms(fields ...string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if a := m.Aliases(f); len(a) > 0 && strings.TrimSpace(a[0]) != "" {
			out = append(out, a[0])
		}
	}
	return out
}
