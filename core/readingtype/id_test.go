package readingtype

import "testing"

func TestBuildZeroVector(t *testing.T) {
	var v FieldVector
	got := Build(v)
	want := "0-0-0-0-0-0-0-0-0-0-0-0-0-0-0-0"
	if got != want {
		t.Errorf("Build(zero): got %s, want %s", got, want)
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	var v FieldVector
	v.Set("commodity", 1)
	v.Set("measurementKind", 37)
	v.Set("uom", 38)
	v.Set("phase", 128)

	id := Build(v)
	parsed, err := Parse(id)
	if err != nil {
		t.Fatalf("Parse(%s): %v", id, err)
	}
	if parsed != v {
		t.Errorf("round trip: got %v, want %v", parsed, v)
	}
}

func TestParseTokenCount(t *testing.T) {
	_, err := Parse("1-2-3")
	if err == nil {
		t.Fatal("Parse should fail on 3 tokens")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Errorf("error type: got %T, want *FormatError", err)
	}
}

func TestParseDecimalTruncation(t *testing.T) {
	v, err := Parse("0-0-0-0-0-0-12.9-0-0-0-0-0-0-0-0-0")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := v.MustGet("measurementKind"); got != 12 {
		t.Errorf("measurementKind: got %d, want 12 (truncated)", got)
	}
}

func TestParseNonNumericToken(t *testing.T) {
	_, err := Parse("0-0-0-0-0-0-abc-0-0-0-0-0-0-0-0-0")
	if err == nil {
		t.Fatal("Parse should fail on non-numeric token")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"0-0-0", false},
		{"0-0-0-0-0-0-0-0-0-0-0-0-0-0-0-0", true},
		{"0-0-2-6-1-1-37-0-0-0-0-0-0-0-38-0", true},
		{"0-0-0-0-0-0-x-0-0-0-0-0-0-0-0-0", false},
		{"0-0-0-0-0-0-12.5-0-0-0-0-0-0-0-0-0", true},
		{"-1-0-0-0-0-0-0-0-0-0-0-0-0-0-0", false},
	}
	for _, tc := range cases {
		if got := Validate(tc.id); got != tc.want {
			t.Errorf("Validate(%q): got %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestFieldVectorSetUnknown(t *testing.T) {
	var v FieldVector
	if v.Set("notAField", 1) {
		t.Error("Set should reject unknown field names")
	}
	if _, ok := v.Get("notAField"); ok {
		t.Error("Get should reject unknown field names")
	}
}

func TestFieldsOrder(t *testing.T) {
	fields := Fields()
	if len(fields) != FieldCount {
		t.Fatalf("field count: got %d, want %d", len(fields), FieldCount)
	}
	for i, f := range fields {
		if f.Position != i {
			t.Errorf("field %s position: got %d, want %d", f.Name, f.Position, i)
		}
	}
	if fields[6].Name != "measurementKind" {
		t.Errorf("position 6: got %s, want measurementKind", fields[6].Name)
	}
	if fields[14].Name != "uom" {
		t.Errorf("position 14: got %s, want uom", fields[14].Name)
	}
}
