package util

import (
	"reflect"
	"testing"
)

func TestParseIntDefault(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 7},
		{"x", 7},
		{"12", 12},
		{" 8080 ", 8080},
	}
	for _, tc := range tests {
		if got := ParseIntDefault(tc.in, 7); got != tc.want {
			t.Fatalf("ParseIntDefault(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a:9092, ,b:9092,")
	if want := []string{"a:9092", "b:9092"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitList = %v, want %v", got, want)
	}
	if SplitList("") != nil {
		t.Fatalf("empty input should give nil")
	}
}
