package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adalundhe/metra/core/providers"
)

// Tools returns the function schemas exposed to the model. Every tool maps
// onto a deterministic assistant operation; the model never computes codes
// itself.
func Tools() []providers.Tool {
	return []providers.Tool{
		{
			Name:        "search_reading_type",
			Description: "在ReadingType编码库中搜索匹配的编码",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "要搜索的量测名称或关键词",
					},
				},
				"required": []any{"name"},
			},
		},
		{
			Name:        "generate_reading_type",
			Description: "根据量测描述生成ReadingTypeID",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{
						"type":        "string",
						"description": "量测的详细描述",
					},
				},
				"required": []any{"description"},
			},
		},
		{
			Name:        "validate_reading_type",
			Description: "验证ReadingTypeID格式并解析各字段含义",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reading_type_id": map[string]any{
						"type":        "string",
						"description": "要验证的ReadingTypeID",
					},
				},
				"required": []any{"reading_type_id"},
			},
		},
		{
			Name:        "query_dictionary",
			Description: "查询ReadingType字段字典信息",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"field_name": map[string]any{
						"type":        "string",
						"description": "要查询的字段名称，留空列出所有字段",
					},
				},
			},
		},
		{
			Name:        "view_codes_library",
			Description: "查看编码库内容",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page": map[string]any{
						"type":        "integer",
						"description": "页码，默认为1",
					},
					"per_page": map[string]any{
						"type":        "integer",
						"description": "每页显示数量，默认为20",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "筛选的类别",
					},
				},
			},
		},
		{
			Name:        "filter_codes",
			Description: "筛选编码库",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category": map[string]any{
						"type":        "string",
						"description": "按类别筛选",
					},
					"measurement_kind": map[string]any{
						"type":        "string",
						"description": "按测量类型筛选",
					},
				},
			},
		},
		{
			Name:        "add_to_library",
			Description: "添加新编码到库中",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "编码名称",
					},
					"reading_type_id": map[string]any{
						"type":        "string",
						"description": "ReadingTypeID编码",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "编码说明",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "编码类别",
					},
				},
				"required": []any{"name", "reading_type_id"},
			},
		},
		{
			Name:        "export_data",
			Description: "导出编码库数据",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"format": map[string]any{
						"type":        "string",
						"description": "导出格式 (csv/json)",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "筛选导出的类别",
					},
				},
			},
		},
		{
			Name:        "get_statistics",
			Description: "获取编码库和字典的统计信息",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

// toolArgs is the union of all tool call arguments.
type toolArgs struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	ReadingTypeID   string `json:"reading_type_id"`
	FieldName       string `json:"field_name"`
	Page            int    `json:"page"`
	PerPage         int    `json:"per_page"`
	Category        string `json:"category"`
	MeasurementKind string `json:"measurement_kind"`
	Format          string `json:"format"`
}

// DispatchTool executes one tool call against the deterministic core and
// returns the rendered result text.
func (a *Assistant) DispatchTool(ctx context.Context, call providers.ToolCall) string {
	var args toolArgs
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fmt.Sprintf("❌ 无法解析工具参数: %v", err)
		}
	}

	switch call.Name {
	case "search_reading_type":
		if strings.TrimSpace(args.Name) == "" {
			return "❌ 请提供要搜索的量测名称"
		}
		exact, fuzzy := a.SearchCodes(ctx, args.Name)
		return RenderSearch(args.Name, exact, fuzzy)

	case "generate_reading_type":
		if strings.TrimSpace(args.Description) == "" {
			return "❌ 请提供量测描述"
		}
		result := a.Generate(ctx, args.Description)
		return a.RenderGenerate(args.Description, result)

	case "validate_reading_type":
		result := a.Validate(ctx, args.ReadingTypeID)
		return a.RenderValidate(args.ReadingTypeID, result)

	case "query_dictionary":
		return a.RenderDictionary(strings.TrimSpace(args.FieldName))

	case "view_codes_library":
		return RenderLibrary(a.records.All(), args.Page, args.PerPage, args.Category)

	case "filter_codes":
		matched := a.records.Filter(args.Category, args.MeasurementKind)
		return RenderFilter(matched, args.Category, args.MeasurementKind)

	case "add_to_library":
		record, err := a.AddToLibrary(ctx, args.Name, args.ReadingTypeID, args.Description, args.Category)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return fmt.Sprintf("✅ 成功添加编码到库中:\n📊 名称: %s\n🔢 ID: %s\n📝 说明: %s",
			record.Name, record.ReadingTypeID, record.Description)

	case "export_data":
		format := strings.ToLower(args.Format)
		if format == "" {
			format = "csv"
		}
		path, err := a.Export(ctx, format, args.Category)
		if err != nil {
			return fmt.Sprintf("❌ 导出失败: %v", err)
		}
		return fmt.Sprintf("✅ 数据已导出到文件: %s", path)

	case "get_statistics":
		recordStats, dictStats := a.Statistics()
		var b strings.Builder
		fmt.Fprintf(&b, "📊 编码库统计:\n  总数: %d\n", recordStats.TotalRecords)
		for category, count := range recordStats.CategoryStats {
			fmt.Fprintf(&b, "  类别 %s: %d\n", category, count)
		}
		fmt.Fprintf(&b, "📚 字典字段数: %d\n", len(dictStats))
		return b.String()

	default:
		return fmt.Sprintf("❌ 未知工具: %s", call.Name)
	}
}
