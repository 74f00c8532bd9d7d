package assistant

import (
	"fmt"
	"strings"

	"github.com/adalundhe/metra/core/readingtype"
	"github.com/adalundhe/metra/core/records"
	"github.com/adalundhe/metra/core/search"
)

// The render functions produce the user-facing Chinese text shared by the
// CLI and the chat tools.

// RenderGenerate formats a generation result with the recognized fields,
// warnings, and suggestions.
func (a *Assistant) RenderGenerate(description string, result GenerateResult) string {
	var b strings.Builder

	b.WriteString("🤖 AI分析结果:\n")
	fmt.Fprintf(&b, "📝 输入描述: %s\n", description)
	b.WriteString("\n📋 识别要素:\n")

	for _, spec := range readingtype.Fields() {
		value := result.Analysis.Vector[spec.Position]
		if value == 0 {
			continue
		}
		confidence := result.Analysis.FieldConfidence[spec.Name]
		fmt.Fprintf(&b, "  - %s: %d (%s, 置信度 %.2f)\n",
			spec.Name, value, a.dict.DescriptionInt(spec.Name, value), confidence)
	}

	fmt.Fprintf(&b, "\n💡 建议编码: %s\n", result.ID)
	fmt.Fprintf(&b, "📊 整体置信度: %.2f\n", result.Analysis.Confidence)

	if !result.Warnings.Empty() {
		b.WriteString("\n⚠️ 组合提示:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	if len(result.Suggestions) > 0 {
		b.WriteString("\n💡 补充建议:\n")
		for _, s := range result.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}

	b.WriteString("\n✅ 是否采纳此编码？输入'是'确认，'否'取消，或提出修改建议。")
	return b.String()
}

// RenderValidate formats a validation result field by field.
func (a *Assistant) RenderValidate(id string, result ValidateResult) string {
	if !result.Valid {
		return fmt.Sprintf("❌ ReadingTypeID格式不正确，应为16个数字用'-'分隔\n%v", result.Err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ 格式有效: %s\n\n📋 字段详情:\n", id)
	for _, spec := range readingtype.Fields() {
		value := result.Vector[spec.Position]
		fmt.Fprintf(&b, "  %2d. %s (%s): %d (%s)\n",
			spec.Position+1, spec.Name, spec.DisplayName, value,
			a.dict.DescriptionInt(spec.Name, value))
	}

	if !result.Warnings.Empty() {
		b.WriteString("\n⚠️ 组合提示:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}

// RenderSearch formats record search results the way the chat surface
// presents them: exact matches in full, otherwise the top fuzzy matches.
func RenderSearch(term string, exact []records.Record, fuzzy []records.FuzzyMatch) string {
	var lines []string

	if len(exact) > 0 {
		lines = append(lines, "✅ 找到精确匹配:")
		for _, match := range exact {
			lines = append(lines,
				fmt.Sprintf("📊 名称: %s", match.Name),
				fmt.Sprintf("🔢 ReadingTypeID: %s", match.ReadingTypeID),
				fmt.Sprintf("📝 说明: %s", match.Description),
				fmt.Sprintf("🏷️ 类别: %s", match.Category),
				fmt.Sprintf("⏰ 创建时间: %s", match.CreatedAt),
				"---",
			)
		}
		return strings.Join(lines, "\n")
	}

	if len(fuzzy) > 0 {
		lines = append(lines, "🔍 找到相似的编码:")
		for i, match := range fuzzy {
			if i >= 5 {
				break
			}
			lines = append(lines,
				fmt.Sprintf("%d. %s (相似度: %.2f)", i+1, match.Record.Name, match.Score),
				fmt.Sprintf("   ReadingTypeID: %s", match.Record.ReadingTypeID),
				fmt.Sprintf("   说明: %s", match.Record.Description),
			)
		}
		lines = append(lines, "", "❓ 以上是否有您需要的编码？如果没有，我可以为您生成新的编码。")
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		fmt.Sprintf("❌ 未找到与'%s'相关的编码", term),
		"💡 我可以为您生成新的ReadingTypeID，请告诉我更多详细信息:",
		"- 设备类型 (如: 电表、储能、气象)",
		"- 测量内容 (如: 电压、电流、功率、能量)",
		"- 特殊要求 (如: 相位、时间周期)",
	)
	return strings.Join(lines, "\n")
}

// RenderDictionary formats a field's options, or the field list when field
// is empty.
func (a *Assistant) RenderDictionary(field string) string {
	if field == "" {
		lines := []string{"📚 ReadingType字段字典:"}
		for _, spec := range readingtype.Fields() {
			lines = append(lines, fmt.Sprintf("%2d. %s (%s)", spec.Position+1, spec.Name, spec.DisplayName))
		}
		lines = append(lines, "", "💡 使用 '查询字典 [字段名]' 查看具体字段的可选值")
		return strings.Join(lines, "\n")
	}

	if !a.dict.HasField(field) {
		return fmt.Sprintf("❌ 未找到字段 '%s'", field)
	}

	const limit = 20
	options := a.dict.Options(field, 0)
	lines := []string{fmt.Sprintf("📖 字段 '%s' 的可选值:", field)}
	for i, entry := range options {
		if i >= limit {
			break
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", entry.Value, entry.DisplayName))
		if entry.Description != "" {
			lines = append(lines, fmt.Sprintf("    %s", entry.Description))
		}
	}
	if len(options) > limit {
		lines = append(lines, "", fmt.Sprintf("... 还有 %d 个值，使用具体数值查询详情", len(options)-limit))
	}
	return strings.Join(lines, "\n")
}

// RenderLibrary formats one page of the record library.
func RenderLibrary(all []records.Record, page, perPage int, category string) string {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	var filtered []records.Record
	for _, r := range all {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		filtered = append(filtered, r)
	}

	total := len(filtered)
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	if start > total {
		start = total
	}

	header := fmt.Sprintf("📚 编码库 (第%d页, 共%d条记录)", page, total)
	if category != "" {
		header += " - 类别: " + category
	}
	lines := []string{header, strings.Repeat("=", 50)}

	for i, r := range filtered[start:end] {
		lines = append(lines,
			fmt.Sprintf("%3d. %s", start+i+1, r.Name),
			fmt.Sprintf("     ID: %s", r.ReadingTypeID),
			fmt.Sprintf("     类别: %s | 来源: %s", r.Category, r.Source),
			"",
		)
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages > 1 {
		lines = append(lines, fmt.Sprintf("📄 第%d/%d页", page, totalPages))
	}
	return strings.Join(lines, "\n")
}

// RenderFilter formats filtered record results.
func RenderFilter(matched []records.Record, category, measurement string) string {
	if len(matched) == 0 {
		return fmt.Sprintf("❌ 未找到符合条件的编码 (类别: %s, 测量类型: %s)", category, measurement)
	}

	lines := []string{fmt.Sprintf("🔍 筛选结果 (共%d条):", len(matched))}
	for i, r := range matched {
		if i >= 10 {
			break
		}
		lines = append(lines,
			fmt.Sprintf("• %s", r.Name),
			fmt.Sprintf("  ID: %s", r.ReadingTypeID),
			fmt.Sprintf("  类别: %s", r.Category),
		)
	}
	if len(matched) > 10 {
		lines = append(lines, "", fmt.Sprintf("... 还有 %d 个结果", len(matched)-10))
	}
	return strings.Join(lines, "\n")
}

// RenderDictMatches formats dictionary search hits.
func RenderDictMatches(term string, matches []search.Match) string {
	if len(matches) == 0 {
		return fmt.Sprintf("❌ 未找到与'%s'相关的字典条目", term)
	}
	lines := []string{fmt.Sprintf("🔍 字典搜索结果 (共%d条):", len(matches))}
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("• %s.%s: %s (匹配度 %.2f)",
			m.Field, m.Entry.Value, m.Entry.DisplayName, m.Score))
	}
	return strings.Join(lines, "\n")
}

func renderSearchLog(exact []records.Record, fuzzy []records.FuzzyMatch) string {
	return fmt.Sprintf("exact=%d fuzzy=%d", len(exact), len(fuzzy))
}

func renderDictSearchLog(matches []search.Match) string {
	return fmt.Sprintf("matches=%d", len(matches))
}
