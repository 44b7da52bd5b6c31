package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"deals_api/internal/app/service"
	"deals_api/internal/common"
)

func respondWithErr(w http.ResponseWriter, err error) {
	common.RespondWithError(w, common.HTTPStatusFromError(err), common.ErrorMessage(err))
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.NewError(common.ErrValidation, "Invalid request payload: "+err.Error())
	}
	return nil
}

// parseID reads a positive integer identifier; name is used in the error message.
func parseID(name, value string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, common.NewError(common.ErrValidation, fmt.Sprintf("%s must be a positive integer", name))
	}
	return uint(id), nil
}

func pageFromQuery(r *http.Request) common.PageRequest {
	q := r.URL.Query()
	return common.NewPageRequest(q.Get("page"), q.Get("limit"))
}

// dateFromQuery reads ?date=, defaulting to today when absent.
func dateFromQuery(r *http.Request) (time.Time, error) {
	value := r.URL.Query().Get("date")
	if value == "" {
		return service.Today(), nil
	}
	d, err := service.ParseDate(value)
	if err != nil {
		return time.Time{}, common.NewError(common.ErrValidation, "Invalid date: "+err.Error())
	}
	return d, nil
}

func boolFromQuery(r *http.Request, name string) (*bool, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, common.NewError(common.ErrValidation, fmt.Sprintf("%s must be true or false", name))
	}
	return &b, nil
}
