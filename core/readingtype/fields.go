// Package readingtype defines the IEC61968-9 ReadingType identifier model:
// the 16 positional fields, the field-value vector, and the canonical
// dash-joined string codec.
package readingtype

// FieldCount is the number of positional fields in a ReadingTypeID.
const FieldCount = 16

// Separator joins field values in the canonical string form.
const Separator = "-"

// FieldSpec describes one of the 16 fixed positional fields. The set of
// fields is defined by the standard and never changes at runtime.
type FieldSpec struct {
	// Name is the CIM attribute name, e.g. "measurementKind".
	Name string

	// Position is the zero-based index within the identifier.
	Position int

	// DisplayName is the Chinese-facing label used in reports and warnings.
	DisplayName string
}

// fieldSpecs is ordered by position. Order is fixed by IEC61968-9.
var fieldSpecs = [FieldCount]FieldSpec{
	{Name: "macroPeriod", Position: 0, DisplayName: "宏周期"},
	{Name: "aggregate", Position: 1, DisplayName: "聚合类型"},
	{Name: "measurePeriod", Position: 2, DisplayName: "测量周期"},
	{Name: "accumulationBehaviour", Position: 3, DisplayName: "累积行为"},
	{Name: "flowDirection", Position: 4, DisplayName: "流向"},
	{Name: "commodity", Position: 5, DisplayName: "商品类型"},
	{Name: "measurementKind", Position: 6, DisplayName: "测量类型"},
	{Name: "harmonic", Position: 7, DisplayName: "谐波"},
	{Name: "argumentNumerator", Position: 8, DisplayName: "参数分子"},
	{Name: "TOU", Position: 9, DisplayName: "时段"},
	{Name: "cpp", Position: 10, DisplayName: "关键峰值期"},
	{Name: "tier", Position: 11, DisplayName: "阶梯"},
	{Name: "phase", Position: 12, DisplayName: "相位"},
	{Name: "multiplier", Position: 13, DisplayName: "乘数"},
	{Name: "uom", Position: 14, DisplayName: "单位"},
	{Name: "currency", Position: 15, DisplayName: "货币"},
}

var fieldsByName = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, FieldCount)
	for _, f := range fieldSpecs {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the 16 field specs in positional order.
func Fields() []FieldSpec {
	out := make([]FieldSpec, FieldCount)
	copy(out, fieldSpecs[:])
	return out
}

// FieldByName looks up a field spec by its CIM name.
func FieldByName(name string) (FieldSpec, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// FieldNames returns the 16 CIM field names in positional order.
func FieldNames() []string {
	names := make([]string, FieldCount)
	for i, f := range fieldSpecs {
		names[i] = f.Name
	}
	return names
}

// DisplayName returns the Chinese label for a field name, falling back to
// the name itself for unknown fields.
func DisplayName(name string) string {
	if f, ok := fieldsByName[name]; ok {
		return f.DisplayName
	}
	return name
}
