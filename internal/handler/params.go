package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// UUIDParam parses a path parameter as a uuid.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.NewBadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

// DateQuery parses a YYYY-MM-DD query parameter.
func DateQuery(c *gin.Context, name string, required bool) (model.Date, error) {
	raw := c.Query(name)
	if raw == "" {
		if required {
			return model.Date{}, errors.NewBadRequest(fmt.Sprintf("%s is required", name), nil)
		}
		return model.Date{}, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, errors.NewBadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return d, nil
}

// ClockQuery parses an HH:MM query parameter.
func ClockQuery(c *gin.Context, name string) (model.ClockTime, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.NewBadRequest(fmt.Sprintf("%s is required", name), nil)
	}
	t, err := model.ParseClockTime(raw)
	if err != nil {
		return 0, errors.NewBadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return t, nil
}

// IntQuery parses an optional integer query parameter, returning def when
// it is absent.
func IntQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewBadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return n, nil
}

// BoolQuery parses an optional boolean query parameter.
func BoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewBadRequest(fmt.Sprintf("invalid %s", name), err)
	}
	return b, nil
}

// PageQuery reads page and page_size. ok is false when the caller asked
// for no pagination.
func PageQuery(c *gin.Context) (page, size int, ok bool, err error) {
	if c.Query("page") == "" && c.Query("page_size") == "" {
		return 0, 0, false, nil
	}
	if page, err = IntQuery(c, "page", 1); err != nil {
		return 0, 0, false, err
	}
	if size, err = IntQuery(c, "page_size", DefaultPageSize); err != nil {
		return 0, 0, false, err
	}
	if page < 1 || size < 1 || size > MaxPageSize {
		return 0, 0, false, errors.NewBadRequest(
			fmt.Sprintf("page must be >= 1 and page_size between 1 and %d", MaxPageSize), nil)
	}
	return page, size, true, nil
}

// BindJSON decodes the request body, reporting decode failures as bad
// requests.
func BindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return errors.NewBadRequest("invalid request body", err)
	}
	return nil
}
