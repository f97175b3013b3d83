package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/mbarek2002/car-plateform/core"
	"github.com/mbarek2002/car-plateform/logging"
)

// ErrorBody 是错误响应体：{"error": {...}}
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

// writeError 把领域错误映射为 HTTP 状态码：
// INVALID_INPUT -> 400，NOT_FOUND -> 404，UNAVAILABLE/超时/取消 -> 503，其余 -> 500。
// 500 只返回通用消息，完整错误写日志。
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fe.Field()+": failed "+fe.Tag()+ruleParam(fe.Param()))
		}
		writeErrorBody(w, http.StatusBadRequest, core.ErrorCodeInvalidInput, "request validation failed", details...)
	case core.IsInvalidInput(err):
		writeErrorBody(w, http.StatusBadRequest, core.ErrorCodeInvalidInput, err.Error())
	case core.IsNotFound(err):
		writeErrorBody(w, http.StatusNotFound, core.ErrorCodeNotFound, err.Error())
	case core.IsUnavailable(err):
		logging.Ctx(ctx).Warn().Err(err).Msg("dependency unavailable")
		writeErrorBody(w, http.StatusServiceUnavailable, core.ErrorCodeUnavailable, "service temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(ctx).Warn().Err(err).Msg("request timed out")
		writeErrorBody(w, http.StatusServiceUnavailable, core.ErrorCodeUnavailable, "request timed out")
	case errors.Is(err, context.Canceled):
		logging.Ctx(ctx).Info().Err(err).Msg("request canceled")
		writeErrorBody(w, http.StatusServiceUnavailable, core.ErrorCodeUnavailable, "request canceled")
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("request failed")
		writeErrorBody(w, http.StatusInternalServerError, core.ErrorCodeInternalError, "internal error")
	}
}

func ruleParam(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}
