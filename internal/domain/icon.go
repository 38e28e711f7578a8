package domain

// Icon is a named marker from the fixed catalog.
type Icon struct {
	Name  string `yaml:"name" json:"name"`
	Type  string `yaml:"type" json:"type"`
	Color string `yaml:"color" json:"color"`
}
