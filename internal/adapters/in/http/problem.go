package http

import (
	"errors"
	"net/http"

	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const contentTypeProblemJSON = "application/problem+json"

// Problem is an RFC 7807 problem document. Kind repeats the core error kind so
// clients can branch without parsing the type URI.
type Problem struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Kind       errs.Kind      `json:"kind"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p Problem) Error() string {
	if p.Detail != "" {
		return p.Title + ": " + p.Detail
	}
	return p.Title
}

func (p Problem) WithDetail(detail string) Problem {
	p.Detail = detail
	return p
}

func (p Problem) WithInstance(instance string) Problem {
	p.Instance = instance
	return p
}

func (p Problem) WithExtension(key string, value any) Problem {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

var (
	problemNotFound = Problem{
		Type: "/problems/not-found", Title: "Resource Not Found",
		Status: http.StatusNotFound, Kind: errs.KindNotFound,
	}
	problemUnauthenticated = Problem{
		Type: "/problems/unauthorized", Title: "Unauthorized",
		Status: http.StatusUnauthorized, Kind: errs.KindUnauthorized,
	}
	problemForbidden = Problem{
		Type: "/problems/forbidden", Title: "Forbidden",
		Status: http.StatusForbidden, Kind: errs.KindUnauthorized,
	}
	problemClaimConflict = Problem{
		Type: "/problems/claim-conflict", Title: "Already Claimed",
		Status: http.StatusConflict, Kind: errs.KindClaimConflict,
	}
	problemInvalidTransition = Problem{
		Type: "/problems/invalid-transition", Title: "Invalid Transition",
		Status: http.StatusConflict, Kind: errs.KindInvalidTransition,
	}
	problemValidation = Problem{
		Type: "/problems/validation-error", Title: "Validation Error",
		Status: http.StatusBadRequest, Kind: errs.KindValidation,
	}
	problemInternal = Problem{
		Type: "/problems/internal-error", Title: "Internal Server Error",
		Status: http.StatusInternalServerError, Kind: errs.KindInternal,
	}
)

// problemFor maps an error returned by a command or query to its problem document.
// Internal errors never expose their message.
func problemFor(err error) Problem {
	var p Problem
	if errors.As(err, &p) {
		return p
	}

	if errors.Is(err, ports.ErrUnauthenticated) {
		return problemUnauthenticated
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return problemValidation.WithDetail(reqErr.Error())
	}

	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return problemNotFound.WithDetail(err.Error())
	case errs.KindUnauthorized:
		return problemForbidden.WithDetail(err.Error())
	case errs.KindClaimConflict:
		return problemClaimConflict.WithDetail(err.Error())
	case errs.KindInvalidTransition:
		return problemInvalidTransition.WithDetail(err.Error())
	case errs.KindValidation:
		return problemValidation.WithDetail(err.Error())
	default:
		return problemInternal
	}
}

// handleError is installed as echo's HTTPErrorHandler so every failure, including
// routing errors raised by echo itself, is rendered as a problem document.
func handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var p Problem
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && !errors.As(err, &p) {
		p = problemFromStatus(httpErr)
	} else {
		p = problemFor(err)
	}
	if p.Kind == errs.KindInternal {
		log.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	p = p.WithInstance(c.Request().URL.Path)

	c.Response().Header().Set(echo.HeaderContentType, contentTypeProblemJSON)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(p.Status)
		return
	}
	if writeErr := c.JSON(p.Status, p); writeErr != nil {
		log.Errorf("write problem: %v", writeErr)
	}
}

func problemFromStatus(httpErr *echo.HTTPError) Problem {
	var p Problem
	switch httpErr.Code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		p = problemNotFound
		p.Status = httpErr.Code
	case http.StatusUnauthorized:
		p = problemUnauthenticated
	case http.StatusForbidden:
		p = problemForbidden
	case http.StatusInternalServerError:
		return problemInternal
	default:
		if httpErr.Code >= http.StatusInternalServerError {
			p = problemInternal
			p.Status = httpErr.Code
			return p
		}
		p = problemValidation
		p.Status = httpErr.Code
	}
	if msg, ok := httpErr.Message.(string); ok {
		p.Detail = msg
	}
	return p
}
