package kit

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MaxBodyBytes = 1 << 20

var ErrExtraData = errors.New("extra data after json object")

// DecodeJSON reads exactly one JSON object from the body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrExtraData
	}
	return nil
}

// DecodeValid decodes and validates a request body, writing the 400 response
// itself. It reports whether the handler may continue.
func DecodeValid(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := DecodeJSON(w, r, dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return false
	}
	return Valid(w, r, v, dst)
}

// Valid runs struct validation and writes a 400 with per-field rules on failure.
func Valid(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	err := v.Struct(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on rule: " + fe.Tag()
		}
		WriteError(w, r, http.StatusBadRequest, "validation failed", fields)
		return false
	}

	WriteError(w, r, http.StatusBadRequest, "invalid request body", nil)
	return false
}

// NewValidator reports JSON field names in validation errors.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonTagName)
	return v
}

func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}
