package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

const maxJSONBodySize = 1 << 20

// pathUUID returns the named path value when it is a canonical UUID.
func pathUUID(r *http.Request, name string) (string, error) {
	value := r.PathValue(name)
	if value == "" {
		return "", &BadRequestError{Reason: name + " is missing"}
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return "", &BadRequestError{Reason: fmt.Sprintf("%s %q is not a valid id", name, value)}
	}

	return id.String(), nil
}

// queryInt reads an optional positive integer query parameter. A missing parameter yields 0.
func queryInt(r *http.Request, name string) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, &BadRequestError{Reason: fmt.Sprintf("%s must be a positive integer, got %q", name, value)}
	}

	return n, nil
}

func pageParams(r *http.Request) (page, limit int, err error) {
	page, err = queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}

	limit, err = queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}

	return page, limit, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &BadRequestError{Reason: "request body is empty"}
		}

		return &BadRequestError{Reason: "request body is not valid JSON: " + err.Error()}
	}

	return nil
}
