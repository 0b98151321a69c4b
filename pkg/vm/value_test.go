package vm

import "testing"

func TestAsBool(t *testing.T) {
	tests := []struct {
		value Value
		want  bool
	}{
		{IntValue(0), false},
		{IntValue(1), true},
		{IntValue(-5), true},
		{BoolValue(true), true},
		{BoolValue(false), false},
		{StringValue(""), false},
		{StringValue("x"), true},
		{StringValue("false"), true}, // emptiness, not content
	}

	for _, tt := range tests {
		if got := tt.value.AsBool(); got != tt.want {
			t.Errorf("AsBool(%+v) = %t, want %t", tt.value, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		value Value
		want  int32
	}{
		{IntValue(42), 42},
		{IntValue(-7), -7},
		{BoolValue(true), 1},
		{BoolValue(false), 0},
		{StringValue(""), 0},
		{StringValue("x"), 1},
		// Numeric content is not parsed; only emptiness counts.
		{StringValue("123"), 1},
	}

	for _, tt := range tests {
		if got := tt.value.AsInt(); got != tt.want {
			t.Errorf("AsInt(%+v) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{IntValue(42), "42"},
		{IntValue(-7), "-7"},
		{IntValue(0), "0"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{StringValue("hi"), "hi"},
		{StringValue(""), ""},
	}

	for _, tt := range tests {
		if got := tt.value.AsString(); got != tt.want {
			t.Errorf("AsString(%+v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestEqualValues(t *testing.T) {
	tests := []struct {
		a, b      Value
		wantEqual bool
		wantOK    bool
	}{
		{IntValue(1), IntValue(1), true, true},
		{IntValue(1), IntValue(2), false, true},
		{BoolValue(true), BoolValue(true), true, true},
		{StringValue("a"), StringValue("a"), true, true},
		{StringValue("a"), StringValue("b"), false, true},
		{IntValue(1), BoolValue(true), false, false},
		{IntValue(0), StringValue(""), false, false},
		{BoolValue(false), StringValue("false"), false, false},
	}

	for _, tt := range tests {
		equal, ok := equalValues(tt.a, tt.b)
		if ok != tt.wantOK {
			t.Errorf("equalValues(%+v, %+v) ok = %t, want %t", tt.a, tt.b, ok, tt.wantOK)
			continue
		}
		if ok && equal != tt.wantEqual {
			t.Errorf("equalValues(%+v, %+v) = %t, want %t", tt.a, tt.b, equal, tt.wantEqual)
		}
	}
}
