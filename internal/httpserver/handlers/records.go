package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/mapmarks/internal/apperr"
	"github.com/MrSnakeDoc/mapmarks/internal/codec"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
)

// DecodeRecord turns a binary record into its JSON rendering.
func DecodeRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			apperr.Write(w, apperr.ErrInvalidRequest.WithMessage("could not read request body"))
			return
		}

		obj, err := codec.Decode(data)
		if err != nil {
			details := map[string]any{"reason": err.Error()}
			var de *codec.DecodeError
			if errors.As(err, &de) {
				details["field"] = de.Field
			}
			apperr.Write(w, apperr.ErrInvalidRecord.WithDetails(details))
			return
		}
		writeJSON(w, http.StatusOK, newObjectResponse(obj))
	}
}
