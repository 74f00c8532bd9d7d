package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adalundhe/metra/core/readingtype"
)

func vectorOf(t *testing.T, values map[string]int) readingtype.FieldVector {
	t.Helper()
	var v readingtype.FieldVector
	for name, value := range values {
		if !v.Set(name, value) {
			t.Fatalf("unknown field %s", name)
		}
	}
	return v
}

func TestValidateCombinationWarnings(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]int
		want   []string
	}{
		{
			name:   "empty vector",
			fields: nil,
			want:   []string{"建议设置商品类型字段", "建议设置测量类型字段"},
		},
		{
			name: "power with wrong unit",
			fields: map[string]int{
				"commodity": 1, "measurementKind": 37, "uom": 72, "accumulationBehaviour": 6,
			},
			want: []string{"功率测量建议使用瓦特(W)单位"},
		},
		{
			name: "energy with wrong unit and behaviour",
			fields: map[string]int{
				"commodity": 1, "measurementKind": 12, "uom": 38, "accumulationBehaviour": 6,
			},
			want: []string{"电能测量建议使用瓦时(Wh)单位", "电能测量建议使用累积或容量累积行为"},
		},
		{
			name: "voltage with wrong unit",
			fields: map[string]int{
				"commodity": 1, "measurementKind": 54, "uom": 5, "accumulationBehaviour": 6,
			},
			want: []string{"电压测量建议使用伏特(V)单位"},
		},
		{
			name: "status with a physical unit",
			fields: map[string]int{
				"commodity": 1, "measurementKind": 118, "uom": 38,
			},
			want: []string{"状态类型不应该有物理单位"},
		},
		{
			name: "power not instantaneous",
			fields: map[string]int{
				"commodity": 1, "measurementKind": 37, "uom": 38, "accumulationBehaviour": 3,
			},
			want: []string{"功率/电压/电流测量建议使用瞬时累积行为"},
		},
		{
			name: "clean power reading",
			fields: map[string]int{
				"commodity": 1, "measurementKind": 37, "uom": 38, "accumulationBehaviour": 6,
			},
			want: nil,
		},
		{
			name: "clean energy register",
			fields: map[string]int{
				"commodity": 1, "measurementKind": 12, "uom": 72, "accumulationBehaviour": 3,
			},
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateCombination(vectorOf(t, tc.fields))
			assert.Equal(t, tc.want, []string(got))
		})
	}
}

func TestSuggestMissingFields(t *testing.T) {
	t.Run("instant kind without phase", func(t *testing.T) {
		v := vectorOf(t, map[string]int{"measurementKind": 37, "flowDirection": 1})
		got := SuggestMissingFields(v, "有功功率")
		assert.Contains(t, got, "建议指定相位信息 (A相/B相/C相/三相)")
	})

	t.Run("energy without period", func(t *testing.T) {
		v := vectorOf(t, map[string]int{"measurementKind": 12, "flowDirection": 1, "accumulationBehaviour": 3})
		got := SuggestMissingFields(v, "正向有功电能")
		assert.Contains(t, got, "建议指定时间周期 (15分钟/5分钟/1小时)")
	})

	t.Run("instantaneous description is not nagged about periods", func(t *testing.T) {
		v := vectorOf(t, map[string]int{"measurementKind": 12, "flowDirection": 1, "accumulationBehaviour": 3})
		got := SuggestMissingFields(v, "瞬时电能")
		assert.NotContains(t, got, "建议指定时间周期 (15分钟/5分钟/1小时)")
	})

	t.Run("energy without flow direction", func(t *testing.T) {
		v := vectorOf(t, map[string]int{"measurementKind": 12, "accumulationBehaviour": 3, "measurePeriod": 2})
		got := SuggestMissingFields(v, "电能")
		assert.Contains(t, got, "建议指定流向 (正向/反向/净值)")
	})

	t.Run("complete vector needs nothing", func(t *testing.T) {
		v := vectorOf(t, map[string]int{
			"measurementKind": 37, "phase": 224, "flowDirection": 1, "accumulationBehaviour": 6,
		})
		got := SuggestMissingFields(v, "三相有功功率")
		assert.Empty(t, got)
	})
}
