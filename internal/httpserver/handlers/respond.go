package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
)

// maxBodyBytes caps JSON and record request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, d deps.Deps, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.ErrInvalidRequest.WithMessage(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if err := d.Validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ErrInvalidRequest
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return apperr.ErrInvalidRequest.WithDetails(fields)
}

// pathIndex reads a non-negative integer URL parameter.
func pathIndex(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < 0 {
		return 0, apperr.ErrInvalidRequest.WithDetails(map[string]any{name: "must be a non-negative integer"})
	}
	return v, nil
}

// queryPoint reads and validates the lat and lon query parameters.
func queryPoint(r *http.Request, d deps.Deps) (domain.Point, error) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		return domain.Point{}, apperr.ErrInvalidCoordinates.WithMessage("lat and lon query parameters are required")
	}
	if d.Validate.Var(lat, "latitude") != nil || d.Validate.Var(lon, "longitude") != nil {
		return domain.Point{}, apperr.ErrInvalidCoordinates
	}
	return domain.Point{Lat: lat, Lon: lon}, nil
}
