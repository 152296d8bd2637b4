package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/apperror"
	"github.com/Simplici0/spicebooks/internal/books"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeResult[T any](w http.ResponseWriter, status int, res books.Result[T]) {
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	writeJSON(w, status, res)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", appErr.Code),
			zap.Error(err))
	}
	writeJSON(w, appErr.HTTPStatus, appErr)
}

// decodeAndValidate reads a JSON body into dst and runs the struct validator over it.
func (s *server) decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidation("invalid request body").WithDetail("body", err.Error())
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewValidation(err.Error())
	}
	appErr := apperror.NewValidation("invalid request")
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		appErr.WithDetail(fe.Namespace(), rule)
	}
	return appErr
}

// setDownloadHeaders marks a CSV attachment. Stale data is flagged in a header
// since the body has no room for warnings.
func setDownloadHeaders(w http.ResponseWriter, filename string, stale bool) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if stale {
		w.Header().Set("X-Data-Stale", "true")
	}
}
