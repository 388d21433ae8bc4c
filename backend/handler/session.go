package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/form"
	"github.com/thermalytics/thermoinsights/backend/middleware"
	"github.com/thermalytics/thermoinsights/backend/model"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
	"github.com/thermalytics/thermoinsights/backend/report"
	"github.com/thermalytics/thermoinsights/backend/service"
)

// ReportLocationHeader points at an archived copy of an exported report
const ReportLocationHeader = "X-Report-Location"

type SessionHandler struct {
	config   *config.Config
	store    *service.SessionStore
	analyzer service.Analyzer
	exporter *service.Exporter
}

func NewSessionHandler(cfg *config.Config, store *service.SessionStore, analyzer service.Analyzer, exporter *service.Exporter) *SessionHandler {
	return &SessionHandler{
		config:   cfg,
		store:    store,
		analyzer: analyzer,
		exporter: exporter,
	}
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type FileInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type SessionResponse struct {
	SessionID string                `json:"session_id"`
	Fields    model.PatientMetadata `json:"fields"`
	File      *FileInfo             `json:"file"`
	View      service.View          `json:"view"`
}

// Create starts a new upload session and returns its token
func (h *SessionHandler) Create(c *gin.Context) {
	session := service.NewSession(h.analyzer, h.config.Analysis.Timeout(), h.exporter)

	token, expiresAt, err := middleware.GenerateToken(session.ID, &h.config.Session)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to generate session token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	h.store.Save(session)

	logger.Info(logger.WithSession(c.Request.Context(), session.ID), "session created")
	c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// Get returns the form and the presented submission state
func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// UpdateFields sets metadata fields from a JSON object
func (h *SessionHandler) UpdateFields(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := session.Form.SetFields(fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// UploadFile selects the thermal image. Any prior result is discarded.
func (h *SessionHandler) UploadFile(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	maxBytes := h.config.Analysis.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("File exceeds the %d MB limit", h.config.Analysis.MaxUploadMB),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": form.MsgMissingFile})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	if err := session.Form.SelectFile(header.Filename, data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.UserMessage(err), "field": "file"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// Submit sends the form for analysis. With ?wait=true the response is
// delayed until the analysis completes or the client goes away.
func (h *SessionHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	ticket, err := session.Submit(c.Request.Context())
	if err != nil {
		var verr *form.ValidationError
		switch {
		case errors.Is(err, service.ErrSubmissionInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": service.UserMessage(err), "view": session.View()})
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field, "view": session.View()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": service.UserMessage(err)})
		}
		return
	}
	middleware.SetSubmission(c, ticket.SubmissionID)

	if c.Query("wait") != "true" {
		c.JSON(http.StatusAccepted, gin.H{"submission_id": ticket.SubmissionID, "view": session.View()})
		return
	}

	if _, err := ticket.Wait(c.Request.Context()); err != nil {
		// client went away; the submission keeps running
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission_id": ticket.SubmissionID, "view": session.View()})
}

// Report renders the PDF for the last successful analysis
func (h *SessionHandler) Report(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	middleware.SetSubmission(c, session.State().SubmissionID)

	out, err := session.Export(c.Request.Context())
	if errors.Is(err, service.ErrNoResult) {
		c.JSON(http.StatusConflict, gin.H{"error": "No analysis result to export"})
		return
	}
	if out == nil {
		logger.Error(c.Request.Context(), "failed to export report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}
	if err != nil {
		// archive failures do not block the download
		logger.Warn(c.Request.Context(), "report delivered without archive", "error", err)
	}

	if len(out.Locations) > 0 {
		c.Header(ReportLocationHeader, out.Locations[0])
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, report.ContentType, out.PDF)
}

// Delete cancels any in-flight request and forgets the session
func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if err := h.store.Delete(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	logger.Info(c.Request.Context(), "session closed")
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) session(c *gin.Context) (*service.Session, bool) {
	session, err := h.store.Get(middleware.GetSessionID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return session, true
}

func sessionResponse(s *service.Session) SessionResponse {
	meta, file := s.Form.Snapshot()
	resp := SessionResponse{
		SessionID: s.ID,
		Fields:    meta,
		View:      s.View(),
	}
	if file != nil {
		resp.File = &FileInfo{
			Filename:    file.Filename,
			ContentType: file.ContentType,
			Size:        file.Size(),
			Width:       file.Width,
			Height:      file.Height,
		}
	}
	return resp
}
