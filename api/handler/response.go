package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	kindTooManyRequests service.Kind = "too_many_requests"
	timeoutRetryAfter                = "1"
)

type envelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Kind    service.Kind `json:"kind,omitempty"`
	Data    any          `json:"data,omitempty"`
}

// NewValidator reports json field names in validation errors.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return validate
}

func success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, envelope{Status: statusSuccess, Message: message, Data: data})
}

func writeError(c echo.Context, status int, kind service.Kind, message string) error {
	if status == http.StatusServiceUnavailable {
		c.Response().Header().Set(echo.HeaderRetryAfter, timeoutRetryAfter)
	}
	return c.JSON(status, envelope{Status: statusError, Message: message, Kind: kind})
}

// writeServiceError renders a service error. Errors outside the service
// taxonomy are logged and answered with a generic message.
func writeServiceError(c echo.Context, logger logrus.FieldLogger, err error) error {
	kind := service.KindOf(err)
	if kind == service.KindInternal || kind == service.KindTimeout {
		entry := logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"uri":    c.Request().RequestURI,
			"kind":   kind,
		})
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			entry = entry.WithField("request_id", id)
		}
		if kind == service.KindTimeout {
			entry.Warn("request timed out")
		} else {
			entry.Error("request failed")
		}
	}
	return writeError(c, StatusForKind(kind), kind, service.PublicMessage(err))
}

// StatusForKind maps error kinds to HTTP status codes. Conflicts and offline
// devices are reported as 400 for compatibility with existing clients; the
// kind field tells them apart.
func StatusForKind(kind service.Kind) int {
	switch kind {
	case service.KindInvalidInput, service.KindConflict, service.KindUnavailable:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindTimeout:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func kindForStatus(status int) service.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return service.KindInvalidInput
	case http.StatusUnauthorized:
		return service.KindUnauthorized
	case http.StatusForbidden:
		return service.KindForbidden
	case http.StatusNotFound:
		return service.KindNotFound
	case http.StatusTooManyRequests:
		return kindTooManyRequests
	case http.StatusServiceUnavailable:
		return service.KindTimeout
	}
	return service.KindInternal
}

// ErrorHandler renders errors returned by middleware and the router in the
// same envelope the handlers use.
func ErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := service.ErrInternal.Message
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if status < http.StatusInternalServerError {
				message = fmt.Sprint(httpErr.Message)
			}
		}
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithField("uri", c.Request().RequestURI).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = writeError(c, status, kindForStatus(status), message)
		}
		if err != nil {
			logger.WithError(err).Warn("failed to write error response")
		}
	}
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// bindJSON decodes and validates a request body. The returned error message
// is safe to show to the caller.
func bindJSON(c echo.Context, validate *validator.Validate, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return errors.New("Invalid request body")
	}
	if validate == nil {
		return nil
	}
	if err := validate.Struct(target); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func writeBadRequest(c echo.Context, err error) error {
	return writeError(c, http.StatusBadRequest, service.KindInvalidInput, err.Error())
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Validation failed"
	}
	parts := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		switch fieldErr.Tag() {
		case "required":
			parts = append(parts, fieldErr.Field()+" is required")
		case "email":
			parts = append(parts, fieldErr.Field()+" must be a valid email")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fieldErr.Field(), fieldErr.Param()))
		case "min", "gt":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fieldErr.Field(), minimum(fieldErr)))
		default:
			parts = append(parts, fieldErr.Field()+" is invalid")
		}
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

func minimum(fieldErr validator.FieldError) string {
	if fieldErr.Tag() == "gt" {
		n, err := strconv.Atoi(fieldErr.Param())
		if err == nil {
			return strconv.Itoa(n + 1)
		}
	}
	return fieldErr.Param()
}

func parseID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func writeInvalidID(c echo.Context) error {
	return writeError(c, http.StatusBadRequest, service.KindInvalidInput, "Invalid id")
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
