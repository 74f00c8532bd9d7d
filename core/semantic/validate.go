package semantic

import (
	"strings"

	metraerrors "github.com/adalundhe/metra/core/errors"
	"github.com/adalundhe/metra/core/readingtype"
)

// ValidateCombination checks cross-field consistency of a vector and
// returns advisory warnings. Warnings never make a vector invalid; the
// enumeration admits unusual but legal combinations.
func ValidateCombination(v readingtype.FieldVector) metraerrors.Warnings {
	var warnings metraerrors.Warnings

	mk := v.MustGet("measurementKind")
	uom := v.MustGet("uom")
	accumulation := v.MustGet("accumulationBehaviour")

	if v.MustGet("commodity") == 0 {
		warnings = append(warnings, "建议设置"+readingtype.DisplayName("commodity")+"字段")
	}
	if mk == 0 {
		warnings = append(warnings, "建议设置"+readingtype.DisplayName("measurementKind")+"字段")
	}

	switch {
	case isPowerKind(mk) && uom != 38 && uom != 0:
		warnings = append(warnings, "功率测量建议使用瓦特(W)单位")
	case mk == 12 && uom != 72 && uom != 0:
		warnings = append(warnings, "电能测量建议使用瓦时(Wh)单位")
	case mk == 54 && uom != 29 && uom != 0:
		warnings = append(warnings, "电压测量建议使用伏特(V)单位")
	case mk == 4 && uom != 5 && uom != 0:
		warnings = append(warnings, "电流测量建议使用安培(A)单位")
	case mk == 118 && uom != 0:
		warnings = append(warnings, "状态类型不应该有物理单位")
	}

	if mk == 12 {
		if accumulation != 1 && accumulation != 3 {
			warnings = append(warnings, "电能测量建议使用累积或容量累积行为")
		}
	} else if isInstantKind(mk) && accumulation != 6 {
		warnings = append(warnings, "功率/电压/电流测量建议使用瞬时累积行为")
	}

	return warnings
}

func isPowerKind(mk int) bool {
	return mk == 37 || mk == 53 || mk == 15
}

func isInstantKind(mk int) bool {
	return isPowerKind(mk) || mk == 54 || mk == 4
}

// SuggestMissingFields recommends fields that the description implies but
// the analysis left unset. The original description is consulted so a
// reading the user explicitly called instantaneous is not nagged about
// periods.
func SuggestMissingFields(v readingtype.FieldVector, description string) []string {
	var suggestions []string
	desc := strings.ToLower(description)
	mk := v.MustGet("measurementKind")

	if isInstantKind(mk) && v.MustGet("phase") == 0 {
		suggestions = append(suggestions, "建议指定相位信息 (A相/B相/C相/三相)")
	}
	if mk == 12 && v.MustGet("measurePeriod") == 0 && !strings.Contains(desc, "瞬时") {
		suggestions = append(suggestions, "建议指定时间周期 (15分钟/5分钟/1小时)")
	}
	if (mk == 12 || mk == 37) && v.MustGet("flowDirection") == 0 {
		suggestions = append(suggestions, "建议指定流向 (正向/反向/净值)")
	}
	if mk == 12 && v.MustGet("accumulationBehaviour") == 6 && !strings.Contains(desc, "瞬时") {
		suggestions = append(suggestions, "建议指定累积行为 (累积/间隔)")
	}

	return suggestions
}
