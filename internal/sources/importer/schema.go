package importer

// File is the root of an import file:
//
//	categories:
//	  - name: Rome
//	    bookmarks:
//	      - name: Colosseum
//	        lat: 41.8902
//	        lon: 12.4922
//	        icon: placemark-red
type File struct {
	Categories []CategoryEntry `yaml:"categories"`
}

// CategoryEntry is one category and the bookmarks to merge into it.
type CategoryEntry struct {
	Name      string          `yaml:"name" validate:"required"`
	Bookmarks []BookmarkEntry `yaml:"bookmarks"`
}

// BookmarkEntry is one bookmark. Only the coordinates are mandatory.
type BookmarkEntry struct {
	Name        string   `yaml:"name"`
	Lat         float64  `yaml:"lat" validate:"latitude"`
	Lon         float64  `yaml:"lon" validate:"longitude"`
	Icon        string   `yaml:"icon"`
	Subtitle    string   `yaml:"subtitle"`
	Address     string   `yaml:"address"`
	Description string   `yaml:"description"`
	Phone       string   `yaml:"phone"`
	Website     string   `yaml:"website" validate:"omitempty,url"`
	Types       []string `yaml:"types"`
}

// POIFile is the root of a POI dataset file.
type POIFile struct {
	POIs []POIEntry `yaml:"pois"`
}

// POIEntry is one searchable feature.
type POIEntry struct {
	Name    string   `yaml:"name"`
	Place   string   `yaml:"place"`
	Types   []string `yaml:"types"`
	Lat     float64  `yaml:"lat" validate:"latitude"`
	Lon     float64  `yaml:"lon" validate:"longitude"`
	Hidden  bool     `yaml:"hidden"`
	Mwm     string   `yaml:"mwm"`
	Version int64    `yaml:"version"`
	Index   int      `yaml:"index" validate:"gte=0"`
}
