package icons

import "testing"

func TestLoadBuiltin(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	all := c.All()
	if len(all) != 8 {
		t.Errorf("All() returned %d icons, want 8", len(all))
	}
	if c.Default().Name != "placemark-red" {
		t.Errorf("Default() = %q, want %q", c.Default().Name, "placemark-red")
	}
}

func TestByName(t *testing.T) {
	c := MustLoad()

	tests := []struct {
		name string
		want string
	}{
		{name: "placemark-green", want: "placemark-green"},
		{name: "placemark-orange", want: "placemark-orange"},
		{name: "unknown", want: "placemark-red"},
		{name: "", want: "placemark-red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ByName(tt.name).Name; got != tt.want {
				t.Errorf("ByName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: "[]"},
		{name: "missing name", yaml: "- type: placemark\n"},
		{name: "duplicate", yaml: "- name: a\n- name: a\n"},
		{name: "not a list", yaml: "name: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("Parse(%q) error = nil, want error", tt.yaml)
			}
		})
	}
}

func TestAllIsACopy(t *testing.T) {
	c := MustLoad()
	all := c.All()
	all[0].Name = "mutated"

	if c.Default().Name != "placemark-red" {
		t.Error("All() should not expose the catalog's backing slice")
	}
}
