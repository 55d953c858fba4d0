package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"taskboard/internal/dto"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

var errMalformedBody = errors.New("malformed request body")

// fieldTypes names the JSON type each request field must have.
var fieldTypes = map[string]string{
	"title":        "a string",
	"description":  "a string",
	"status":       "a string",
	"priority":     "a string",
	"completed":    "a boolean",
	"dependencies": "an array of strings",
}

// bindJSON decodes a request body that must hold exactly one JSON object.
// Empty, null, non-object and trailing-data bodies become errMalformedBody; a
// field of the wrong JSON type becomes a ValidationError.
func bindJSON(c *gin.Context, v any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return fmt.Errorf("%w: expected a JSON object", errMalformedBody)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			want, ok := fieldTypes[ute.Field]
			if !ok {
				want = "a " + ute.Type.String()
			}
			return &service.ValidationError{Field: ute.Field, Message: "must be " + want}
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after the JSON object", errMalformedBody)
	}
	return nil
}

func writeData(c *gin.Context, code int, data any) {
	c.JSON(code, dto.Envelope{Status: dto.StatusSuccess, Data: data})
}

// writeError maps service and binding errors to status codes. Unexpected
// errors are logged and reported without detail.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.Envelope{
			Status:  dto.StatusError,
			Error:   verr.Error(),
			Details: []dto.FieldError{{Field: verr.Field, Message: verr.Message}},
		})
	case errors.Is(err, errMalformedBody):
		c.JSON(http.StatusBadRequest, dto.Envelope{Status: dto.StatusError, Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.Envelope{
			Status: dto.StatusError,
			Error:  fmt.Sprintf("task %q not found", c.Param("id")),
		})
	default:
		log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.Envelope{Status: dto.StatusError, Error: "internal error"})
	}
}

// NotFound answers unknown paths.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.Envelope{
		Status: dto.StatusError,
		Error:  fmt.Sprintf("no route for %s", c.Request.URL.Path),
	})
}

// MethodNotAllowed answers known paths requested with an unsupported method.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, dto.Envelope{
		Status: dto.StatusError,
		Error:  fmt.Sprintf("method %s not allowed on %s", c.Request.Method, c.Request.URL.Path),
	})
}
