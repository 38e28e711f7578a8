// Package codec converts map objects to and from the flat binary record used
// to hand them across a process boundary.
//
// A record is a MessagePack value stream with a fixed field order:
//
//	 1 type tag (discriminator)     14 show-UGC flag
//	 2 feature id [mwm, ver, idx]   15 can-be-rated flag
//	 3 title                        16 can-be-reviewed flag
//	 4 secondary title              17 hotel type (nil or int)
//	 5 subtitle                     18 price rate
//	 6 address                      19 popularity level
//	 7 latitude                     20 description
//	 8 longitude                    21 road warning
//	 9 metadata map                 22 top-choice flag
//	10 API id                       23 taxi types (array)
//	11 booking URL                  24 ratings (array of [name, value])
//	12 route point (nil or [t, i])  25 raw types (array)
//	13 opening mode
//
// Collections always come last: the decoder builds the base object from the
// scalars first and appends the collections after. A bookmark record carries
// the same 25 fields followed by category index, bookmark index and icon.
//
// An empty collection is written as a zero-length array and read back as nil.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/MrSnakeDoc/mapmarks/internal/domain"
)

// ContentType is the media type used when a record travels over HTTP.
const ContentType = "application/x-msgpack"

var (
	ErrUnknownDiscriminator = errors.New("unknown record discriminator")
	// ErrUnencodableType is returned for a plain object whose type tag the
	// decoder would not read back as a plain object.
	ErrUnencodableType = errors.New("type tag not encodable as plain object")
)

// DecodeError reports which field of a record could not be read.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode record field %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode returns the record for obj.
func Encode(obj domain.Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the record for obj to w.
func EncodeTo(w io.Writer, obj domain.Object) error {
	enc := msgpack.NewEncoder(w)
	switch o := obj.(type) {
	case *domain.Bookmark:
		if o == nil {
			return errors.New("failed to encode record: nil bookmark")
		}
		return encodeBookmark(enc, o)
	case *domain.MapObject:
		if o == nil {
			return errors.New("failed to encode record: nil map object")
		}
		if typ := o.Type(); typ == domain.TypeBookmark || !typ.Valid() {
			return fmt.Errorf("failed to encode record: %w: %d", ErrUnencodableType, typ)
		}
		return encodePlain(enc, o)
	default:
		return fmt.Errorf("failed to encode record: unsupported object %T", obj)
	}
}

// Decode parses a record produced by Encode.
func Decode(data []byte) (domain.Object, error) {
	return DecodeFrom(bytes.NewReader(data))
}

// DecodeFrom reads one record from r.
func DecodeFrom(r io.Reader) (domain.Object, error) {
	dec := msgpack.NewDecoder(r)

	tag, err := dec.DecodeInt()
	if err != nil {
		return nil, &DecodeError{Field: "type", Err: err}
	}

	switch typ := domain.MapObjectType(tag); typ {
	case domain.TypeBookmark:
		return decodeBookmark(dec)
	case domain.TypePOI, domain.TypeAPIPoint, domain.TypeMyPosition, domain.TypeSearch:
		return decodePlain(dec, typ)
	default:
		return nil, &DecodeError{Field: "type", Err: fmt.Errorf("%w: %d", ErrUnknownDiscriminator, tag)}
	}
}

// ─────────────────────────────
// Variants
// ─────────────────────────────

func encodePlain(enc *msgpack.Encoder, m *domain.MapObject) error {
	w := &writer{enc: enc}
	writeFields(w, m.Attrs())
	return w.result()
}

func encodeBookmark(enc *msgpack.Encoder, b *domain.Bookmark) error {
	w := &writer{enc: enc}
	writeFields(w, b.Attrs())
	w.int(b.CategoryIndex())
	w.int(b.BookmarkIndex())
	w.str(b.Icon())
	return w.result()
}

func decodePlain(dec *msgpack.Decoder, typ domain.MapObjectType) (domain.Object, error) {
	r := &reader{dec: dec}
	a := readFields(r, typ)
	if r.err != nil {
		return nil, r.err
	}
	return domain.NewMapObject(a), nil
}

func decodeBookmark(dec *msgpack.Decoder) (domain.Object, error) {
	r := &reader{dec: dec}
	a := readFields(r, domain.TypeBookmark)
	cat := r.int("category_index")
	idx := r.int("bookmark_index")
	icon := r.str("icon")
	if r.err != nil {
		return nil, r.err
	}
	return domain.NewBookmark(cat, idx, a, icon), nil
}

// ─────────────────────────────
// Shared field layout
// ─────────────────────────────

func writeFields(w *writer, a domain.Attrs) {
	w.int(int(a.Type))

	w.arrayLen(3)
	w.str(a.FeatureID.MwmName)
	w.int64(a.FeatureID.MwmVersion)
	w.int(a.FeatureID.FeatureIndex)

	w.str(a.Title)
	w.str(a.SecondaryTitle)
	w.str(a.Subtitle)
	w.str(a.Address)
	w.float(a.Lat)
	w.float(a.Lon)

	keys := a.Metadata.Keys()
	w.mapLen(len(keys))
	for _, k := range keys {
		w.int(int(k))
		w.str(a.Metadata.Get(k))
	}

	w.str(a.APIID)
	w.str(a.BookingURL)

	if a.RoutePoint == nil {
		w.null()
	} else {
		w.arrayLen(2)
		w.int(int(a.RoutePoint.MarkType))
		w.int(a.RoutePoint.IntermediateIndex)
	}

	w.int(int(a.OpeningMode))
	w.bool(a.ShouldShowUGC)
	w.bool(a.CanBeRated)
	w.bool(a.CanBeReviewed)

	if a.HotelType == nil {
		w.null()
	} else {
		w.int(int(*a.HotelType))
	}

	w.int(int(a.PriceRate))
	w.int(int(a.Popularity.Level))
	w.str(a.Description)
	w.int(int(a.RoadWarning))
	w.bool(a.TopChoice)

	// collections last
	w.arrayLen(len(a.TaxiTypes))
	for _, t := range a.TaxiTypes {
		w.int(int(t))
	}
	w.arrayLen(len(a.Ratings))
	for _, rt := range a.Ratings {
		w.arrayLen(2)
		w.str(rt.Name)
		w.float(rt.Value)
	}
	w.arrayLen(len(a.RawTypes))
	for _, s := range a.RawTypes {
		w.str(s)
	}
}

// readFields reads fields 2..25; the discriminator is already consumed.
func readFields(r *reader, typ domain.MapObjectType) domain.Attrs {
	a := domain.Attrs{Type: typ}

	if n := r.arrayLen("feature_id"); n != 3 && r.err == nil {
		r.fail("feature_id", fmt.Errorf("expected 3 elements, got %d", n))
	}
	a.FeatureID.MwmName = r.str("feature_id.mwm_name")
	a.FeatureID.MwmVersion = r.int64("feature_id.mwm_version")
	a.FeatureID.FeatureIndex = r.int("feature_id.feature_index")

	a.Title = r.str("title")
	a.SecondaryTitle = r.str("secondary_title")
	a.Subtitle = r.str("subtitle")
	a.Address = r.str("address")
	a.Lat = r.float("lat")
	a.Lon = r.float("lon")

	n := r.mapLen("metadata")
	for i := 0; i < n && r.err == nil; i++ {
		k := r.int("metadata.key")
		v := r.str("metadata.value")
		a.Metadata.Set(domain.MetadataType(k), v)
	}

	a.APIID = r.str("api_id")
	a.BookingURL = r.str("booking_url")

	if !r.peekNil("route_point") {
		if n := r.arrayLen("route_point"); n != 2 && r.err == nil {
			r.fail("route_point", fmt.Errorf("expected 2 elements, got %d", n))
		}
		a.RoutePoint = &domain.RoutePointInfo{
			MarkType:          domain.RouteMarkType(r.int("route_point.mark_type")),
			IntermediateIndex: r.int("route_point.intermediate_index"),
		}
	}

	a.OpeningMode = domain.OpeningMode(r.int("opening_mode"))
	a.ShouldShowUGC = r.bool("show_ugc")
	a.CanBeRated = r.bool("can_be_rated")
	a.CanBeReviewed = r.bool("can_be_reviewed")

	if !r.peekNil("hotel_type") {
		ht := domain.HotelType(r.int("hotel_type"))
		a.HotelType = &ht
	}

	a.PriceRate = domain.PriceRate(r.int("price_rate"))
	a.Popularity = domain.Popularity{Level: domain.PopularityLevel(r.int("popularity"))}
	a.Description = r.str("description")
	a.RoadWarning = domain.RoadWarningMarkType(r.int("road_warning"))
	a.TopChoice = r.bool("top_choice")

	n = r.arrayLen("taxi_types")
	for i := 0; i < n && r.err == nil; i++ {
		a.TaxiTypes = append(a.TaxiTypes, domain.TaxiType(r.int("taxi_types")))
	}

	n = r.arrayLen("ratings")
	for i := 0; i < n && r.err == nil; i++ {
		if m := r.arrayLen("ratings"); m != 2 && r.err == nil {
			r.fail("ratings", fmt.Errorf("expected 2 elements, got %d", m))
		}
		a.Ratings = append(a.Ratings, domain.Rating{
			Name:  r.str("ratings.name"),
			Value: r.float("ratings.value"),
		})
	}

	n = r.arrayLen("raw_types")
	for i := 0; i < n && r.err == nil; i++ {
		a.RawTypes = append(a.RawTypes, r.str("raw_types"))
	}

	return a
}

// ─────────────────────────────
// Sticky-error stream helpers
// ─────────────────────────────

type writer struct {
	enc *msgpack.Encoder
	err error
}

func (w *writer) do(f func() error) {
	if w.err == nil {
		w.err = f()
	}
}

func (w *writer) int(v int)       { w.do(func() error { return w.enc.EncodeInt(int64(v)) }) }
func (w *writer) int64(v int64)   { w.do(func() error { return w.enc.EncodeInt(v) }) }
func (w *writer) str(v string)    { w.do(func() error { return w.enc.EncodeString(v) }) }
func (w *writer) float(v float64) { w.do(func() error { return w.enc.EncodeFloat64(v) }) }
func (w *writer) bool(v bool)     { w.do(func() error { return w.enc.EncodeBool(v) }) }
func (w *writer) null()           { w.do(w.enc.EncodeNil) }
func (w *writer) arrayLen(n int)  { w.do(func() error { return w.enc.EncodeArrayLen(n) }) }
func (w *writer) mapLen(n int)    { w.do(func() error { return w.enc.EncodeMapLen(n) }) }

func (w *writer) result() error {
	if w.err != nil {
		return fmt.Errorf("failed to encode record: %w", w.err)
	}
	return nil
}

type reader struct {
	dec *msgpack.Decoder
	err error
}

func (r *reader) fail(field string, err error) {
	if r.err == nil {
		r.err = &DecodeError{Field: field, Err: err}
	}
}

func (r *reader) int(field string) int {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.DecodeInt()
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *reader) int64(field string) int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.DecodeInt64()
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *reader) str(field string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.dec.DecodeString()
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *reader) float(field string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.DecodeFloat64()
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *reader) bool(field string) bool {
	if r.err != nil {
		return false
	}
	v, err := r.dec.DecodeBool()
	if err != nil {
		r.fail(field, err)
	}
	return v
}

// arrayLen returns 0 for a nil array.
func (r *reader) arrayLen(field string) int {
	if r.err != nil {
		return 0
	}
	n, err := r.dec.DecodeArrayLen()
	if err != nil {
		r.fail(field, err)
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func (r *reader) mapLen(field string) int {
	if r.err != nil {
		return 0
	}
	n, err := r.dec.DecodeMapLen()
	if err != nil {
		r.fail(field, err)
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

// peekNil consumes and reports a nil marker; any other value is left unread.
func (r *reader) peekNil(field string) bool {
	if r.err != nil {
		return true
	}
	c, err := r.dec.PeekCode()
	if err != nil {
		r.fail(field, err)
		return true
	}
	if c != msgpcode.Nil {
		return false
	}
	if err := r.dec.DecodeNil(); err != nil {
		r.fail(field, err)
	}
	return true
}
