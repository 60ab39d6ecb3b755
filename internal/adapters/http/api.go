package http

import (
	"net/http"

	"github.com/dkeye/CallRelay/internal/app/orch"
	"github.com/dkeye/CallRelay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	StatusOK    = "ok"
	StatusError = "error"

	CodeBadRequest     = "bad_request"
	CodeNotFound       = "not_found"
	CodeNotImplemented = "not_implemented"
)

type CallsResponse struct {
	Calls     []domain.Call `json:"calls"`
	Observers int           `json:"observers"`
}

// AnalyzeRequest is an uploaded recording to be checked for synthetic
// voice and scam patterns.
type AnalyzeRequest struct {
	Audio    string `json:"audio" binding:"required,base64"`
	Filename string `json:"filename" binding:"required"`
	MimeType string `json:"mimeType" binding:"required"`
	Size     int64  `json:"size" binding:"gte=0"`
}

type VoiceAnalysis struct {
	SoundsArtificial bool     `json:"sounds_artificial"`
	Confidence       float64  `json:"confidence"`
	Indicators       []string `json:"indicators"`
	Description      string   `json:"description"`
}

type ScamAnalysis struct {
	Probability float64  `json:"probability"`
	Label       string   `json:"label"`
	Reasons     []string `json:"reasons"`
}

type AnalyzeResult struct {
	Status        string        `json:"status"`
	Transcription string        `json:"transcription"`
	VoiceAnalysis VoiceAnalysis `json:"voice_analysis"`
	Scam          ScamAnalysis  `json:"scam"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status string   `json:"status"`
	Error  APIError `json:"error"`
}

func errorJSON(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{Status: StatusError, Error: APIError{Code: code, Message: msg}})
}

type apiHandlers struct {
	orch *orch.Orchestrator
}

func (h *apiHandlers) listCalls(c *gin.Context) {
	c.JSON(http.StatusOK, CallsResponse{
		Calls:     h.orch.Calls.Snapshot(),
		Observers: h.orch.Hub.Count(),
	})
}

func (h *apiHandlers) getCall(c *gin.Context) {
	call, ok := h.orch.Calls.Get(domain.CallID(c.Param("id")))
	if !ok {
		errorJSON(c, http.StatusNotFound, CodeNotFound, "call not found")
		return
	}
	c.JSON(http.StatusOK, call)
}

// analyze validates the upload. Analysis itself is not wired to a backend.
func (h *apiHandlers) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	log.Info().Str("module", "adapters.http").Str("file", req.Filename).Str("mime", req.MimeType).Int64("size", req.Size).Msg("analyze requested")
	errorJSON(c, http.StatusNotImplemented, CodeNotImplemented, "analysis backend not configured")
}
