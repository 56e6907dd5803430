package core

import (
	"reflect"
	"testing"
)

func TestDisplayNames(t *testing.T) {
	d := DisplayNames{"name": "Full Name"}

	got := d.Headers([]string{"name", "age"})
	want := []string{"Full Name", "age"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Headers() = %v, want %v", got, want)
	}

	var none DisplayNames
	if h := none.Header("age"); h != "age" {
		t.Errorf("nil Header(age) = %q, want age", h)
	}

	clone := d.Clone()
	clone["name"] = "changed"
	if d["name"] != "Full Name" {
		t.Error("Clone shares storage with the original")
	}
}

func TestDisplayNamesResolver(t *testing.T) {
	resolve := DisplayNames{"name": "Full Name"}.Resolver()
	row := ToRow([]string{"name", "Age"}, []string{"Alice", "30"})

	tests := []struct {
		header string
		want   string
	}{
		{"Full Name", "name"},
		{"Age", "Age"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		if got := resolve(row, tt.header); got != tt.want {
			t.Errorf("resolve(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
