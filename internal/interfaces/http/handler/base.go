package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	membershipapp "github.com/comfund/backend/internal/application/membership"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/domain/shared"
	"github.com/comfund/backend/internal/infrastructure/logger"
	"github.com/comfund/backend/internal/infrastructure/storage"
	"github.com/comfund/backend/internal/interfaces/http/dto"
	"github.com/comfund/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnauthorized, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if de, ok := shared.AsDomainError(err); ok {
		status := dto.GetHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("Request failed",
				zap.String("code", de.Code), zap.Error(err))
		}
		c.JSON(status, dto.NewErrorResponseWithRequestID(de.Code, de.Message, middleware.GetRequestID(c)))
		return
	}

	logger.FromContext(c.Request.Context()).Error("Unexpected error", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bind reads the JSON body into req and answers the request on failure
func (h *BaseHandler) bind(c *gin.Context, req any) bool {
	return h.handleBindError(c, c.ShouldBindJSON(req))
}

// bindForm reads a multipart or urlencoded body into req
func (h *BaseHandler) bindForm(c *gin.Context, req any) bool {
	return h.handleBindError(c, c.ShouldBind(req))
}

// bindQuery reads query parameters into req
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	return h.handleBindError(c, c.ShouldBindQuery(req))
}

func (h *BaseHandler) handleBindError(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		h.ValidationError(c, details)
		return false
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body too large")
		return false
	}
	h.Error(c, dto.ErrCodeInvalidJSON, "Invalid request body")
	return false
}

// pathID parses the :id path parameter
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidID, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the member behind the request, answering 401 when the
// route was registered without LoadPrincipal
func (h *BaseHandler) principal(c *gin.Context) (*membership.Member, bool) {
	m := middleware.GetPrincipal(c)
	if m == nil {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}
	return m, true
}

// actor describes the principal to the member administration service
func (h *BaseHandler) actor(c *gin.Context) (membershipapp.Actor, bool) {
	m, ok := h.principal(c)
	if !ok {
		return membershipapp.Actor{}, false
	}
	return membershipapp.Actor{MemberID: m.ID, Name: m.Name, Admin: m.IsAdmin()}, true
}

// isMultipart reports whether the request carries a multipart form
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readUpload takes the file from a multipart field, or else decodes the
// data URL. Neither present means no upload.
func readUpload(c *gin.Context, field, dataURL string, maxSize int64) (*storage.Upload, error) {
	if isMultipart(c) {
		fh, err := c.FormFile(field)
		if err == nil {
			if maxSize > 0 && fh.Size > maxSize {
				return nil, storage.ErrUploadTooLarge(maxSize)
			}
			f, err := fh.Open()
			if err != nil {
				return nil, shared.NewDomainError("INVALID_UPLOAD", "Uploaded file could not be read")
			}
			defer f.Close()

			limit := maxSize
			if limit <= 0 {
				limit = 32 << 20
			}
			data, err := io.ReadAll(io.LimitReader(f, limit+1))
			if err != nil {
				return nil, shared.NewDomainError("INVALID_UPLOAD", "Uploaded file could not be read")
			}
			return storage.NewUpload(data, fh.Header.Get("Content-Type"), maxSize)
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, shared.NewDomainError("INVALID_UPLOAD", "Uploaded file could not be read")
		}
	}
	if strings.TrimSpace(dataURL) == "" {
		return nil, nil
	}
	return storage.DecodeDataURL(dataURL, maxSize)
}
