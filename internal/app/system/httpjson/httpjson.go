// Package httpjson holds the JSON request and response helpers shared by
// the feature handlers, and the mapping from apperr kinds to HTTP status.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/dalemusser/ideahub/internal/app/system/inputval"
	"github.com/dalemusser/ideahub/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// errorBody is the wire form of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write encodes v as JSON with status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) { Write(w, http.StatusOK, v) }

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) { Write(w, http.StatusCreated, v) }

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error. Transient and untyped errors are logged
// and their detail is not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := Status(err)
	detail := errorDetail{Kind: apperr.KindOf(err).String(), Code: apperr.CodeOf(err)}

	var ae *apperr.Error
	switch {
	case status >= 500:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", detail.Code),
			zap.Error(err))
		detail.Message = http.StatusText(status)
		if detail.Code == "" {
			detail.Code = "internal"
		}
	case errors.As(err, &ae):
		detail.Message = ae.Message
	default:
		detail.Message = err.Error()
	}
	Write(w, status, errorBody{Error: detail})
}

// Unauthenticated writes the 401 used when no caller is in the context.
func Unauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="ideahub"`)
	Write(w, http.StatusUnauthorized, errorBody{Error: errorDetail{
		Kind: "unauthenticated", Code: "unauthenticated", Message: "sign in required",
	}})
}

// TooManyRequests writes a 429 with a Retry-After hint in seconds.
func TooManyRequests(w http.ResponseWriter, retryAfter int, message string) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	Write(w, http.StatusTooManyRequests, errorBody{Error: errorDetail{
		Kind: "rate_limited", Code: "rate_limited", Message: message,
	}})
}

// Caller returns the authenticated caller, writing a 401 when there is none.
func Caller(w http.ResponseWriter, r *http.Request) (identity.Caller, bool) {
	c, ok := identity.FromContext(r.Context())
	if !ok {
		Unauthenticated(w)
	}
	return c, ok
}

// Decode reads a JSON body into dst and validates its struct tags.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limits.MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation(apperr.CodeInvalidInput, "request body is empty")
		}
		return apperr.Validation(apperr.CodeInvalidInput, "malformed JSON: %v", err)
	}
	return inputval.Struct(dst)
}

// ObjectID parses the named chi URL parameter as a Mongo ObjectID.
func ObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(apperr.CodeInvalidInput, "%s: not a valid id", name)
	}
	return id, nil
}
