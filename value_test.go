package shelf

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
)

func TestValueMarshalForms(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string", String("hi"), `"hi"`},
		{"number", Number(3), `3`},
		{"fraction", Number(2.5), `2.5`},
		{"strings", Strings("a", "b"), `["a","b"]`},
		{"numbers", Numbers(1, 2), `[1,2]`},
		{"empty strings", Strings(), `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValueMarshalInvalid(t *testing.T) {
	if _, err := json.Marshal(Value{}); err == nil {
		t.Error("zero Value marshalled without error")
	}
}

func TestValueUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Value
	}{
		{"string", `"hi"`, String("hi")},
		{"number", `3`, Number(3)},
		{"strings", `["a","b"]`, Strings("a", "b")},
		{"numbers", `[1,2]`, Numbers(1, 2)},
		{"empty array", `[]`, Strings()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Value
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !got.equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

func TestValueUnmarshalOutsideModel(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bool", `true`},
		{"null", `null`},
		{"object", `{"a":1}`},
		{"mixed array", `["a",1]`},
		{"nested array", `[[1]]`},
		{"array of objects", `[{"a":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(tt.data), &v)
			if !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Unmarshal(%s): got %v, want ErrInvalidValue", tt.data, err)
			}
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"strings equal", String("x"), String("x"), true},
		{"strings differ", String("x"), String("y"), false},
		{"numbers equal", Number(1), Number(1), true},
		{"kind mismatch", String("1"), Number(1), false},
		{"string arrays equal", Strings("a", "b"), Strings("a", "b"), true},
		{"string arrays differ", Strings("a"), Strings("a", "b"), false},
		{"number arrays equal", Numbers(1, 2), Numbers(1, 2), true},
		{"array order matters", Numbers(1, 2), Numbers(2, 1), false},
		{"zero values never equal", Value{}, Value{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.equal(tt.b); got != tt.want {
				t.Errorf("equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueAccessors(t *testing.T) {
	if String("x").Str() != "x" || Number(5).Str() != "" {
		t.Error("Str accessor")
	}
	if Number(5).Num() != 5 || String("x").Num() != 0 {
		t.Error("Num accessor")
	}
	if got := Strings("a").StrSlice(); len(got) != 1 || got[0] != "a" {
		t.Error("StrSlice accessor")
	}
	if Number(5).StrSlice() != nil || String("x").NumSlice() != nil {
		t.Error("slice accessors on wrong kind")
	}

	// Slice accessors return copies.
	v := Strings("a", "b")
	s := v.StrSlice()
	s[0] = "mutated"
	if v.StrSlice()[0] != "a" {
		t.Error("StrSlice aliases internal state")
	}
}
