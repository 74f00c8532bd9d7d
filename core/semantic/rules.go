package semantic

// PatternRule maps a keyword set to a field value. A rule fires when any of
// its keywords appears in the normalized text; its weight accumulates
// Weight × keyword length per match, with a standalone-token bonus.
type PatternRule struct {
	Value    int
	Keywords []string
	Weight   float64
}

// FieldRules is the ordered pattern rule set for one field, with the value
// used when no rule fires.
type FieldRules struct {
	Field    string
	Patterns []PatternRule
	Default  int
}

// ContextRule force-sets several fields when all of its trigger keywords
// are present. Context rules run after pattern matching and win over
// pattern results for the fields they touch.
type ContextRule struct {
	Triggers []string
	Updates  map[string]int
}

// Dependency propagates a resolved field value to other fields, applied
// only while the target field's confidence is below the propagation
// threshold.
type Dependency struct {
	Field   string
	Value   int
	Updates map[string]int
}

// DefaultFieldRules returns the built-in per-field keyword rule tables.
// Values are IEC61968-9 enumeration keys.
func DefaultFieldRules() []FieldRules {
	return []FieldRules{
		{
			Field:   "commodity",
			Default: 1, // electricity unless stated otherwise
			Patterns: []PatternRule{
				{Value: 1, Keywords: []string{"电", "电力", "电能", "电压", "电流", "功率"}, Weight: 10},
				{Value: 1, Keywords: []string{"electricity", "electric", "power", "voltage", "current"}, Weight: 8},
				{Value: 41, Keywords: []string{"储能", "电池", "pcs", "充电", "放电"}, Weight: 15},
				{Value: 41, Keywords: []string{"battery", "energy storage", "charge", "discharge"}, Weight: 12},
				{Value: 4, Keywords: []string{"水"}, Weight: 10},
				{Value: 4, Keywords: []string{"water"}, Weight: 8},
				{Value: 7, Keywords: []string{"气", "天然气", "燃气"}, Weight: 10},
				{Value: 7, Keywords: []string{"gas", "natural gas"}, Weight: 8},
				{Value: 6, Keywords: []string{"热", "蒸汽", "热能"}, Weight: 10},
				{Value: 6, Keywords: []string{"heat", "steam", "thermal"}, Weight: 8},
				{Value: 40, Keywords: []string{"气象", "环境", "天气", "温度", "湿度", "风速"}, Weight: 12},
				{Value: 40, Keywords: []string{"weather", "environment", "temperature", "humidity"}, Weight: 10},
			},
		},
		{
			Field:   "measurementKind",
			Default: 0,
			Patterns: []PatternRule{
				{Value: 54, Keywords: []string{"电压", "电位", "线电压", "相电压"}, Weight: 15},
				{Value: 158, Keywords: []string{"单相电压"}, Weight: 16},
				{Value: 54, Keywords: []string{"voltage", "potential"}, Weight: 12},
				{Value: 4, Keywords: []string{"电流"}, Weight: 15},
				{Value: 4, Keywords: []string{"current"}, Weight: 12},
				{Value: 37, Keywords: []string{"有功功率", "有功"}, Weight: 16},
				{Value: 53, Keywords: []string{"无功功率", "无功"}, Weight: 16},
				{Value: 15, Keywords: []string{"视在功率", "视在"}, Weight: 16},
				{Value: 37, Keywords: []string{"active power"}, Weight: 13},
				{Value: 53, Keywords: []string{"reactive power"}, Weight: 13},
				{Value: 15, Keywords: []string{"apparent power"}, Weight: 13},
				{Value: 12, Keywords: []string{"能量", "电能", "电度"}, Weight: 15},
				{Value: 12, Keywords: []string{"energy"}, Weight: 12},
				{Value: 46, Keywords: []string{"频率"}, Weight: 15},
				{Value: 46, Keywords: []string{"frequency"}, Weight: 12},
				{Value: 139, Keywords: []string{"温度"}, Weight: 15},
				{Value: 139, Keywords: []string{"temperature"}, Weight: 12},
				{Value: 118, Keywords: []string{"状态", "告警", "报警", "开关", "遥信"}, Weight: 14},
				{Value: 183, Keywords: []string{"充电状态", "放电状态"}, Weight: 16},
				{Value: 904, Keywords: []string{"远方", "就地", "本地"}, Weight: 14},
				{Value: 11, Keywords: []string{"并网", "离网"}, Weight: 14},
				{Value: 119, Keywords: []string{"容量", "soc", "荷电状态"}, Weight: 15},
				{Value: 38, Keywords: []string{"功率因数", "功因"}, Weight: 16},
				{Value: 121, Keywords: []string{"控制系数"}, Weight: 16},
			},
		},
		{
			Field:   "flowDirection",
			Default: 0,
			Patterns: []PatternRule{
				{Value: 1, Keywords: []string{"正向", "充电", "进", "输入", "送电"}, Weight: 15},
				{Value: 19, Keywords: []string{"反向", "放电", "出", "输出", "回电"}, Weight: 15},
				{Value: 4, Keywords: []string{"净", "双向", "净值"}, Weight: 14},
				{Value: 20, Keywords: []string{"充放电", "pcs"}, Weight: 16},
			},
		},
		{
			Field:   "accumulationBehaviour",
			Default: 6, // instantaneous unless stated otherwise
			Patterns: []PatternRule{
				{Value: 3, Keywords: []string{"累积", "累计", "总", "合计"}, Weight: 15},
				{Value: 6, Keywords: []string{"瞬时", "当前", "实时", "即时"}, Weight: 15},
				{Value: 4, Keywords: []string{"间隔", "区间", "差值"}, Weight: 14},
				{Value: 1, Keywords: []string{"容量", "总量"}, Weight: 13},
				{Value: 10, Keywords: []string{"计划"}, Weight: 12},
			},
		},
		{
			Field:   "measurePeriod",
			Default: 0,
			Patterns: []PatternRule{
				{Value: 2, Keywords: []string{"15分钟", "15min"}, Weight: 18},
				{Value: 6, Keywords: []string{"5分钟", "5min"}, Weight: 18},
				{Value: 3, Keywords: []string{"1分钟", "1min"}, Weight: 18},
				{Value: 7, Keywords: []string{"60分钟", "1小时", "小时"}, Weight: 16},
				{Value: 4, Keywords: []string{"24小时", "日", "天"}, Weight: 15},
				{Value: 0, Keywords: []string{"瞬时", "实时", "无周期"}, Weight: 14},
			},
		},
		{
			Field:   "phase",
			Default: 0,
			Patterns: []PatternRule{
				{Value: 128, Keywords: []string{"a相", "甲相"}, Weight: 18},
				{Value: 64, Keywords: []string{"b相", "乙相"}, Weight: 18},
				{Value: 32, Keywords: []string{"c相", "丙相"}, Weight: 18},
				{Value: 224, Keywords: []string{"三相", "总", "合计"}, Weight: 16},
				{Value: 225, Keywords: []string{"平均"}, Weight: 15},
			},
		},
		{
			Field:   "multiplier",
			Default: 0,
			Patterns: []PatternRule{
				{Value: 3, Keywords: []string{"k w", "k wh", "千"}, Weight: 15},
				{Value: 6, Keywords: []string{"m w", "m wh", "兆"}, Weight: 15},
				{Value: 0, Keywords: []string{"基本", "基础"}, Weight: 10},
			},
		},
		{
			Field:   "uom",
			Default: 0,
			Patterns: []PatternRule{
				{Value: 72, Keywords: []string{"wh", "瓦时", "电能"}, Weight: 16},
				{Value: 38, Keywords: []string{"瓦", "功率"}, Weight: 16},
				{Value: 29, Keywords: []string{"伏", "电压"}, Weight: 16},
				{Value: 5, Keywords: []string{"安", "电流"}, Weight: 16},
				{Value: 23, Keywords: []string{"hz", "赫兹", "频率"}, Weight: 16},
				{Value: 109, Keywords: []string{"°c", "摄氏度", "温度"}, Weight: 15},
				{Value: 0, Keywords: []string{"无单位", "状态", "比率"}, Weight: 12},
			},
		},
	}
}

// DefaultContextRules returns the built-in cross-field rules.
func DefaultContextRules() []ContextRule {
	return []ContextRule{
		{
			// Storage PCS telemetry: commodity storage, bidirectional flow.
			Triggers: []string{"储能", "pcs"},
			Updates:  map[string]int{"commodity": 41, "flowDirection": 20},
		},
		{
			// Cumulative energy register.
			Triggers: []string{"电能", "累积"},
			Updates: map[string]int{
				"commodity":             1,
				"measurementKind":       12,
				"accumulationBehaviour": 3,
				"uom":                   72,
			},
		},
		{
			// Instantaneous power reading.
			Triggers: []string{"功率", "瞬时"},
			Updates: map[string]int{
				"commodity":             1,
				"accumulationBehaviour": 6,
				"uom":                   38,
			},
		},
		{
			// Ambient temperature from a weather station.
			Triggers: []string{"温度", "环境"},
			Updates: map[string]int{
				"commodity":       40,
				"measurementKind": 139,
				"uom":             109,
			},
		},
	}
}

// DefaultDependencies returns the built-in value propagation table.
func DefaultDependencies() []Dependency {
	return []Dependency{
		{Field: "measurementKind", Value: 12, Updates: map[string]int{"uom": 72}},
		{Field: "measurementKind", Value: 37, Updates: map[string]int{"uom": 38}},
		{Field: "measurementKind", Value: 53, Updates: map[string]int{"uom": 38}},
		{Field: "measurementKind", Value: 15, Updates: map[string]int{"uom": 38}},
		{Field: "measurementKind", Value: 54, Updates: map[string]int{"uom": 29}},
		{Field: "measurementKind", Value: 4, Updates: map[string]int{"uom": 5}},
		{Field: "measurementKind", Value: 46, Updates: map[string]int{"uom": 23}},
		{Field: "measurementKind", Value: 139, Updates: map[string]int{"uom": 109}},
		{Field: "commodity", Value: 41, Updates: map[string]int{"flowDirection": 20}},
	}
}
