package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

// fakePersister keeps the last saved snapshot in memory.
type fakePersister struct {
	mu      sync.Mutex
	saved   []CategoryData
	saves   int
	loadErr error
	saveErr error
}

func (f *fakePersister) Name() string { return "fake" }

func (f *fakePersister) SaveCategories(_ context.Context, cats []CategoryData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = cats
	f.saves++
	return nil
}

func (f *fakePersister) LoadCategories(_ context.Context) ([]CategoryData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.saved, nil
}

func bookmarkAt(title string, lat, lon float64) BookmarkData {
	return BookmarkData{Attrs: domain.Attrs{Title: title, Lat: lat, Lon: lon}}
}

func TestNewMemory(t *testing.T) {
	m := NewMemory(Options{})
	if m == nil {
		t.Fatal("NewMemory() returned nil")
	}
	if m.CategoriesCount() != 0 {
		t.Errorf("NewMemory() should start with no categories, got %v", m.CategoriesCount())
	}
	if m.Dirty() {
		t.Error("NewMemory() should not be dirty")
	}
}

func TestCreateAndDeleteCategory(t *testing.T) {
	m := NewMemory(Options{})

	a := m.CreateCategory("Favorites")
	b := m.CreateCategory("Trips")
	if a != 0 || b != 1 {
		t.Fatalf("CreateCategory() = %d, %d, want 0, 1", a, b)
	}
	if m.CategoryID(0) == "" || m.CategoryID(0) == m.CategoryID(1) {
		t.Errorf("CategoryID() should be unique and non-empty, got %q and %q", m.CategoryID(0), m.CategoryID(1))
	}
	if !m.CategoryExistsByName("Trips") {
		t.Error("CategoryExistsByName(Trips) = false, want true")
	}

	if !m.DeleteCategory(0) {
		t.Error("DeleteCategory(0) = false, want true")
	}
	if m.DeleteCategory(5) {
		t.Error("DeleteCategory(5) = true, want false")
	}
	if got := m.CategoryName(0); got != "Trips" {
		t.Errorf("CategoryName(0) after delete = %q, want %q", got, "Trips")
	}
}

func TestBookmarkLifecycle(t *testing.T) {
	m := NewMemory(Options{})
	home := m.CreateCategory("Home")
	work := m.CreateCategory("Work")

	idx := m.AddBookmark(home, bookmarkAt("Flat", 52.52, 13.405))
	if idx != 0 {
		t.Fatalf("AddBookmark() = %d, want 0", idx)
	}
	if m.AddBookmark(9, bookmarkAt("x", 0, 0)) != -1 {
		t.Error("AddBookmark() into a missing category should return -1")
	}

	data, ok := m.BookmarkData(home, idx)
	if !ok || data.Attrs.Title != "Flat" || data.Attrs.Type != domain.TypeBookmark {
		t.Errorf("BookmarkData() = %+v, %v", data, ok)
	}

	data.Attrs.Title = "Apartment"
	if !m.UpdateBookmark(home, idx, data) {
		t.Error("UpdateBookmark() = false, want true")
	}

	newIdx := m.MoveBookmark(home, idx, work)
	if newIdx != 0 || m.CategorySize(home) != 0 || m.CategorySize(work) != 1 {
		t.Errorf("MoveBookmark() = %d, sizes = %d/%d", newIdx, m.CategorySize(home), m.CategorySize(work))
	}
	if got, _ := m.BookmarkData(work, 0); got.Attrs.Title != "Apartment" {
		t.Errorf("moved bookmark title = %q, want %q", got.Attrs.Title, "Apartment")
	}

	m.DeleteBookmark(7, 0) // missing category: no-op
	m.DeleteBookmark(work, 3)
	if m.CategorySize(work) != 1 {
		t.Errorf("DeleteBookmark() out of range should be a no-op")
	}
	m.DeleteBookmark(work, 0)
	if m.CategorySize(work) != 0 {
		t.Errorf("CategorySize() after delete = %d, want 0", m.CategorySize(work))
	}
}

func TestBookmarkDataIsACopy(t *testing.T) {
	m := NewMemory(Options{})
	cat := m.CreateCategory("c")
	in := bookmarkAt("t", 1, 1)
	in.Attrs.RawTypes = []string{"amenity-cafe"}
	m.AddBookmark(cat, in)

	in.Attrs.RawTypes[0] = "mutated"
	got, _ := m.BookmarkData(cat, 0)
	if got.Attrs.RawTypes[0] != "amenity-cafe" {
		t.Errorf("engine state leaked caller mutation: %v", got.Attrs.RawTypes)
	}
}

func TestFindBookmarkNear(t *testing.T) {
	m := NewMemory(Options{HitRadius: 30})
	cat := m.CreateCategory("Paris")
	m.AddBookmark(cat, bookmarkAt("Eiffel", 48.85837, 2.294481))
	m.AddBookmark(cat, bookmarkAt("Louvre", 48.86061, 2.33764))

	tests := []struct {
		name   string
		point  domain.Point
		want   Handle
		wantOK bool
	}{
		{name: "exact hit", point: domain.Point{Lat: 48.86061, Lon: 2.33764}, want: Handle{0, 1}, wantOK: true},
		{name: "about 10m away", point: domain.Point{Lat: 48.85846, Lon: 2.294481}, want: Handle{0, 0}, wantOK: true},
		{name: "about 200m away", point: domain.Point{Lat: 48.86241, Lon: 2.33764}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.FindBookmarkNear(tt.point)
			if ok != tt.wantOK {
				t.Fatalf("FindBookmarkNear() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("FindBookmarkNear() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPOILookups(t *testing.T) {
	cafe := POI{
		FeatureID: domain.FeatureID{MwmName: "Italy", MwmVersion: 1, FeatureIndex: 10},
		Name:      "Caffe Greco",
		Place:     "Rome",
		Types:     []string{"amenity-cafe"},
		Point:     domain.Point{Lat: 41.9057, Lon: 12.4823},
		Visible:   true,
	}
	hidden := POI{
		Name:  "Hidden",
		Place: "Rome",
		Point: domain.Point{Lat: 41.9100, Lon: 12.4900},
	}
	m := NewMemory(Options{POIs: []POI{cafe, hidden}})

	near := domain.Point{Lat: 41.90575, Lon: 12.48235}
	far := domain.Point{Lat: 41.93, Lon: 12.50}
	nowhere := domain.Point{Lat: 0, Lon: 0}

	if got := m.POINameNear(near); got != "Caffe Greco (amenity-cafe)" {
		t.Errorf("POINameNear() = %q, want %q", got, "Caffe Greco (amenity-cafe)")
	}
	if got := m.POINameNear(far); got != "" {
		t.Errorf("POINameNear(far) = %q, want empty", got)
	}
	if got := m.PlaceNameNear(far); got != "Rome" {
		t.Errorf("PlaceNameNear(far) = %q, want %q", got, "Rome")
	}
	if got := m.PlaceNameNear(nowhere); got != "" {
		t.Errorf("PlaceNameNear(nowhere) = %q, want empty", got)
	}
	if !m.IsVisiblePOI(near) {
		t.Error("IsVisiblePOI(near) = false, want true")
	}
	if m.IsVisiblePOI(hidden.Point) {
		t.Error("IsVisiblePOI(hidden) = true, want false")
	}
	if got := m.BookmarkPositionForPOI(near); got != cafe.Point {
		t.Errorf("BookmarkPositionForPOI(near) = %v, want %v", got, cafe.Point)
	}
	if got := m.BookmarkPositionForPOI(nowhere); got != nowhere {
		t.Errorf("BookmarkPositionForPOI(nowhere) = %v, want input point", got)
	}
}

func TestPOINameNear(t *testing.T) {
	museum := POI{Name: "Louvre", Types: []string{"museum"}, Point: domain.Point{Lat: 48.8606, Lon: 2.3376}, Visible: true}
	cafe := POI{Place: "Madrid", Types: []string{"cafe"}, Point: domain.Point{Lat: 40.4168, Lon: -3.7038}, Visible: true}
	kfc := POI{Name: "KFC", Place: "Berlin", Types: []string{"fast_food"}, Point: domain.Point{Lat: 52.5200, Lon: 13.4050}}
	m := NewMemory(Options{POIs: []POI{museum, cafe, kfc}})

	tests := []struct {
		name string
		at   domain.Point
		want string
	}{
		{"named visible", museum.Point, "Louvre (museum)"},
		{"unnamed visible", cafe.Point, "cafe"},
		{"hidden", kfc.Point, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.POINameNear(tt.at); got != tt.want {
				t.Errorf("POINameNear() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddBookmarkOnPOITakesItsName(t *testing.T) {
	poi := POI{
		FeatureID: domain.FeatureID{MwmName: "UK", MwmVersion: 2, FeatureIndex: 5},
		Name:      "British Museum",
		Types:     []string{"tourism-museum", "building"},
		Point:     domain.Point{Lat: 51.5194, Lon: -0.1270},
		Visible:   true,
	}
	m := NewMemory(Options{POIs: []POI{poi}})
	cat := m.CreateCategory("London")

	m.AddBookmark(cat, BookmarkData{Attrs: domain.Attrs{Lat: poi.Point.Lat, Lon: poi.Point.Lon}})
	got, _ := m.BookmarkData(cat, 0)

	if got.Attrs.Title != "British Museum (tourism-museum)" {
		t.Errorf("Title = %q, want %q", got.Attrs.Title, "British Museum (tourism-museum)")
	}
	if got.Attrs.FeatureID != poi.FeatureID {
		t.Errorf("FeatureID = %v, want %v", got.Attrs.FeatureID, poi.FeatureID)
	}
}

func TestFormatBookmarkName(t *testing.T) {
	tests := []struct {
		name, typ, want string
	}{
		{"Cafe Central", "amenity-cafe", "Cafe Central (amenity-cafe)"},
		{"", "amenity-cafe", "amenity-cafe"},
		{"Cafe Central", "", "Cafe Central"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := FormatBookmarkName(tt.name, tt.typ); got != tt.want {
			t.Errorf("FormatBookmarkName(%q, %q) = %q, want %q", tt.name, tt.typ, got, tt.want)
		}
	}
}

func TestShowBookmarkKeepsStateClean(t *testing.T) {
	p := &fakePersister{}
	m := NewMemory(Options{Persisters: []Persister{p}})
	cat := m.CreateCategory("c")
	m.AddBookmark(cat, bookmarkAt("a", 1, 1))

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if m.Dirty() {
		t.Fatal("Dirty() after Flush = true, want false")
	}

	m.ShowBookmark(cat, 0)
	if m.Dirty() {
		t.Error("ShowBookmark() marked the state dirty")
	}
	if h, ok := m.LastShown(); !ok || h != (Handle{Category: cat, Bookmark: 0}) {
		t.Errorf("LastShown() = %v, %v", h, ok)
	}
}

func TestLastShownFollowsEdits(t *testing.T) {
	// each case shows bookmark 1 of category 1, then applies edit
	tests := []struct {
		name   string
		edit   func(m *Memory)
		want   Handle
		exists bool
	}{
		{"delete earlier bookmark", func(m *Memory) { m.DeleteBookmark(1, 0) }, Handle{Category: 1, Bookmark: 0}, true},
		{"delete later bookmark", func(m *Memory) { m.DeleteBookmark(1, 2) }, Handle{Category: 1, Bookmark: 1}, true},
		{"delete shown bookmark", func(m *Memory) { m.DeleteBookmark(1, 1) }, Handle{}, false},
		{"delete bookmark elsewhere", func(m *Memory) { m.DeleteBookmark(0, 0) }, Handle{Category: 1, Bookmark: 1}, true},
		{"delete earlier category", func(m *Memory) { m.DeleteCategory(0) }, Handle{Category: 0, Bookmark: 1}, true},
		{"delete later category", func(m *Memory) { m.DeleteCategory(2) }, Handle{Category: 1, Bookmark: 1}, true},
		{"delete shown category", func(m *Memory) { m.DeleteCategory(1) }, Handle{}, false},
		{"move shown bookmark", func(m *Memory) { m.MoveBookmark(1, 1, 2) }, Handle{Category: 2, Bookmark: 3}, true},
		{"move earlier bookmark", func(m *Memory) { m.MoveBookmark(1, 0, 0) }, Handle{Category: 1, Bookmark: 0}, true},
		{"move into shown category", func(m *Memory) { m.MoveBookmark(0, 0, 1) }, Handle{Category: 1, Bookmark: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(Options{})
			for ci, name := range []string{"a", "b", "c"} {
				cat := m.CreateCategory(name)
				for bi := 0; bi < 3; bi++ {
					m.AddBookmark(cat, bookmarkAt(name, float64(ci), float64(bi)))
				}
			}
			shown, _ := m.BookmarkData(1, 1)
			m.ShowBookmark(1, 1)

			tt.edit(m)

			h, ok := m.LastShown()
			if ok != tt.exists || h != tt.want {
				t.Fatalf("LastShown() = %v, %v, want %v, %v", h, ok, tt.want, tt.exists)
			}
			if !ok {
				return
			}
			got, _ := m.BookmarkData(h.Category, h.Bookmark)
			if got.Attrs.Lat != shown.Attrs.Lat || got.Attrs.Lon != shown.Attrs.Lon {
				t.Errorf("LastShown() points at %v, want the shown bookmark %v", got.Attrs, shown.Attrs)
			}
		})
	}
}

func TestFlushAndLoad(t *testing.T) {
	p := &fakePersister{}
	m := NewMemory(Options{Persisters: []Persister{p}})
	cat := m.CreateCategory("Saved")
	m.AddBookmark(cat, bookmarkAt("a", 1, 2))

	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("second Flush() error = %v", err)
	}
	if p.saves != 1 {
		t.Errorf("persister saves = %d, want 1 (clean state is not re-saved)", p.saves)
	}

	restored := NewMemory(Options{Persisters: []Persister{p}})
	if err := restored.LoadBookmarks(context.Background()); err != nil {
		t.Fatalf("LoadBookmarks() error = %v", err)
	}
	if restored.CategoriesCount() != 1 || restored.CategorySize(0) != 1 {
		t.Fatalf("restored state = %d categories", restored.CategoriesCount())
	}
	if restored.CategoryID(0) != m.CategoryID(0) {
		t.Errorf("CategoryID() = %q, want %q", restored.CategoryID(0), m.CategoryID(0))
	}
	if restored.Dirty() {
		t.Error("freshly loaded state should not be dirty")
	}
	if restored.GetLastLoad().IsZero() {
		t.Error("GetLastLoad() should be set after a load")
	}
}

func TestLoadFallsThroughFailingPersister(t *testing.T) {
	broken := &fakePersister{loadErr: errors.New("connection refused")}
	good := &fakePersister{saved: []CategoryData{{ID: "id-1", Name: "Backup"}}}
	m := NewMemory(Options{Persisters: []Persister{broken, good}})

	if err := m.LoadBookmarks(context.Background()); err != nil {
		t.Fatalf("LoadBookmarks() error = %v", err)
	}
	if m.CategoryName(0) != "Backup" {
		t.Errorf("CategoryName(0) = %q, want %q", m.CategoryName(0), "Backup")
	}

	allBroken := NewMemory(Options{Persisters: []Persister{broken}})
	if err := allBroken.LoadBookmarks(context.Background()); err == nil {
		t.Error("LoadBookmarks() with only failing persisters should return an error")
	}
}

func TestFlushErrorKeepsDirty(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("disk full")}
	m := NewMemory(Options{Persisters: []Persister{p}})
	m.CreateCategory("c")

	if err := m.Flush(context.Background()); err == nil {
		t.Fatal("Flush() error = nil, want error")
	}
	if !m.Dirty() {
		t.Error("failed Flush() should keep the state dirty")
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewMemory(Options{})
	cat := m.CreateCategory("c")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m.AddBookmark(cat, bookmarkAt("b", float64(i), 0))
		}(i)
		go func() {
			defer wg.Done()
			m.FindBookmarkNear(domain.Point{Lat: 1, Lon: 0})
			m.Categories()
		}()
	}
	wg.Wait()

	if m.CategorySize(cat) != 20 {
		t.Errorf("CategorySize() = %d, want 20", m.CategorySize(cat))
	}
}
