package httpapi

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/normalize"
	"github.com/abhisek/pathwise/internal/projects"
	"github.com/abhisek/pathwise/internal/prompt"
	"github.com/abhisek/pathwise/internal/roadmap"
	"github.com/abhisek/pathwise/internal/roadmapgen"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`

	// Fields is set for parameter and schema failures.
	Fields []fieldDetail `json:"fields,omitempty"`
}

type fieldDetail struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// classify maps a domain error to an HTTP status and error code.
func classify(err error) (int, apiError) {
	e := apiError{Message: err.Error()}

	var (
		paramsErr   *prompt.ParamsError
		patchErr    *projects.PatchError
		parseErr    *normalize.ParseError
		validErr    *normalize.ValidationError
		upstreamErr *roadmapgen.UpstreamError
	)
	switch {
	case errors.As(err, &paramsErr):
		e.Code = "invalid_params"
		for name, msg := range paramsErr.Fields {
			e.Fields = append(e.Fields, fieldDetail{Path: name, Message: msg})
		}
		sortFields(e.Fields)
		return http.StatusBadRequest, e
	case errors.As(err, &patchErr):
		e.Code = "invalid_patch"
		for name, msg := range patchErr.Fields {
			e.Fields = append(e.Fields, fieldDetail{Path: name, Message: msg})
		}
		sortFields(e.Fields)
		return http.StatusBadRequest, e
	case errors.As(err, &parseErr):
		e.Code = "unparseable_response"
		return http.StatusUnprocessableEntity, e
	case errors.As(err, &validErr):
		e.Code = "invalid_roadmap"
		for _, fe := range validErr.Errors {
			e.Fields = append(e.Fields, fieldDetail{
				Path:     fe.Path,
				Message:  fe.Message,
				Expected: fe.Expected,
				Actual:   fe.Actual,
			})
		}
		return http.StatusUnprocessableEntity, e
	case errors.As(err, &upstreamErr):
		e.Code = "upstream_failed"
		return http.StatusBadGateway, e
	case errors.Is(err, roadmap.ErrRoadmapNotFound),
		errors.Is(err, roadmap.ErrNodeNotFound),
		errors.Is(err, projects.ErrProjectNotFound),
		errors.Is(err, projects.ErrIdeaNotFound):
		e.Code = "not_found"
		return http.StatusNotFound, e
	case errors.Is(err, projects.ErrInvalidTransition):
		e.Code = "invalid_transition"
		return http.StatusConflict, e
	default:
		e.Code = "internal"
		return http.StatusInternalServerError, e
	}
}

func respondError(c *gin.Context, err error) {
	status, e := classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorEnvelope{Error: e})
}

func respondBadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorEnvelope{Error: apiError{
		Message: err.Error(),
		Code:    "bad_request",
	}})
}

func sortFields(fields []fieldDetail) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
}
