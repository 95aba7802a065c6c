package analyses

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/feedback"
	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/server/respond"
)

// multipart field overhead allowed on top of the file limit
const formOverheadBytes = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.createAnalysis)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.DELETE("/analyses/:id", h.deleteAnalysis)
	rg.POST("/analyses/:id/reanalyze", h.reanalyze)
	rg.POST("/analyses/:id/improve", h.improve)
	rg.POST("/keywords/preview", h.preview)
}

type createRequest struct {
	JobTitle       string `json:"jobTitle" binding:"max=200"`
	JobDescription string `json:"jobDescription" binding:"required"`
	ResumeText     string `json:"resumeText" binding:"required"`
}

type reanalyzeRequest struct {
	JobTitle       *string `json:"jobTitle" binding:"omitempty,max=200"`
	JobDescription *string `json:"jobDescription"`
}

type analysisResponse struct {
	AnalysisID       string           `json:"analysisId"`
	Status           string           `json:"status"`
	JobTitle         string           `json:"jobTitle,omitempty"`
	FileName         string           `json:"fileName,omitempty"`
	ExtractionSource string           `json:"extractionSource,omitempty"`
	Feedback         *feedback.Record `json:"feedback,omitempty"`
	Error            *failureBody     `json:"error,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type failureBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listItem struct {
	AnalysisID   string    `json:"analysisId"`
	Status       string    `json:"status"`
	JobTitle     string    `json:"jobTitle,omitempty"`
	OverallScore *int      `json:"overallScore,omitempty"`
	KeywordMatch *int      `json:"keywordMatch,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handler) createAnalysis(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	analysis, err := h.Svc.Analyze(WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c)), in)
	if analysis.ID != "" {
		c.Set(middleware.AnalysisIDKey, analysis.ID)
	}
	if err != nil {
		writeError(c, err, "failed to analyze resume")
		return
	}
	respond.Created(c, toResponse(analysis))
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	analysis, err := h.Svc.Get(c.Request.Context(), analysisID, middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to fetch analysis")
		return
	}
	respond.OK(c, toResponse(analysis))
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := DefaultListLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	analyses, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit)
	if err != nil {
		writeError(c, err, "failed to list analyses")
		return
	}

	resp := make([]listItem, 0, len(analyses))
	for _, a := range analyses {
		item := listItem{
			AnalysisID: a.ID,
			Status:     a.Status,
			JobTitle:   a.JobTitle,
			CreatedAt:  a.CreatedAt,
		}
		if a.Status == StatusCompleted && a.Feedback != nil {
			overall := a.Feedback.OverallScore
			match := a.Feedback.ATS.KeywordMatch
			item.OverallScore = &overall
			item.KeywordMatch = &match
		}
		resp = append(resp, item)
	}
	respond.OK(c, gin.H{"items": resp})
}

func (h *Handler) reanalyze(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	var req reanalyzeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", gin.H{
				"field": "body", "issue": sanitizeError(err),
			})
			return
		}
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	analysis, err := h.Svc.Reanalyze(ctx, analysisID, middleware.UserIDFromContext(c), ReanalyzeInput{
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		writeError(c, err, "failed to reanalyze resume")
		return
	}
	respond.OK(c, toResponse(analysis))
}

func (h *Handler) improve(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	out, err := h.Svc.Improve(ctx, analysisID, middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to improve resume")
		return
	}
	respond.OK(c, out)
}

func (h *Handler) deleteAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	if err := h.Svc.Delete(ctx, analysisID, middleware.UserIDFromContext(c)); err != nil {
		writeError(c, err, "failed to delete analysis")
		return
	}
	respond.OK(c, gin.H{"deletedAnalysisId": analysisID})
}

func (h *Handler) preview(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}
	out, err := h.Svc.Preview(WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c)), in)
	if err != nil {
		writeError(c, err, "failed to preview keywords")
		return
	}
	respond.OK(c, out)
}

// bindInput reads either a multipart upload or a JSON body with resumeText.
func (h *Handler) bindInput(c *gin.Context) (Input, bool) {
	in := Input{UserID: middleware.UserIDFromContext(c)}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "jobDescription and resumeText are required", gin.H{
				"field": "body", "issue": sanitizeError(err),
			})
			return Input{}, false
		}
		in.JobTitle = req.JobTitle
		in.JobDescription = req.JobDescription
		in.ResumeText = req.ResumeText
		return in, true
	}

	limit := h.Svc.maxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverheadBytes)

	in.JobTitle = c.PostForm("jobTitle")
	in.JobDescription = c.PostForm("jobDescription")
	in.ResumeText = c.PostForm("resumeText")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Sprintf("file exceeds %d bytes", limit), nil)
			return Input{}, false
		}
		if errors.Is(err, http.ErrMissingFile) {
			return in, true
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid multipart form", nil)
		return Input{}, false
	}
	if fileHeader.Size > limit {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Sprintf("file exceeds %d bytes", limit), nil)
		return Input{}, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read uploaded file", nil)
		return Input{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read uploaded file", nil)
		return Input{}, false
	}

	in.FileName = fileHeader.Filename
	in.MimeType = fileHeader.Header.Get("Content-Type")
	in.Data = data
	return in, true
}

func writeError(c *gin.Context, err error, fallback string) {
	var failure *FailureError
	switch {
	case errors.As(err, &failure):
		respond.Error(c, failureStatus(failure.Code), failure.Code, failure.Message, gin.H{"analysisId": failure.AnalysisID})
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, ErrFileTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", sanitizeError(err), nil)
	case errors.Is(err, ErrNoResumeText):
		respond.Error(c, http.StatusConflict, "no_resume_text", "upload the resume again to analyze it", nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", sanitizeError(err), nil)
	default:
		code := classifyFailure(err)
		if code == ErrorCodeInternal || code == ErrorCodeStorage {
			respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
			return
		}
		respond.Error(c, failureStatus(code), code, publicMessage(code, err), nil)
	}
}

func failureStatus(code string) int {
	switch code {
	case ErrorCodeExtraction, ErrorCodeInsufficientContent:
		return http.StatusUnprocessableEntity
	case ErrorCodeAIMalformed, ErrorCodeLLMFailed:
		return http.StatusBadGateway
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrorCodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(a Analysis) analysisResponse {
	resp := analysisResponse{
		AnalysisID:       a.ID,
		Status:           a.Status,
		JobTitle:         a.JobTitle,
		FileName:         a.FileName,
		ExtractionSource: a.ExtractionSource,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.Status == StatusCompleted {
		resp.Feedback = a.Feedback
	}
	if a.Status == StatusFailed && a.ErrorCode != nil {
		body := &failureBody{Code: *a.ErrorCode}
		if a.ErrorMessage != nil {
			body.Message = *a.ErrorMessage
		}
		resp.Error = body
	}
	return resp
}
