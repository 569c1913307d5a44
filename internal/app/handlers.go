package app

import (
	"context"
	"io"
	"net/http"
	"strings"

	"codecounselor/internal/llm"
	"codecounselor/internal/metrics"
	"codecounselor/internal/version"
	"codecounselor/pkg/utils"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// ChatRequest is the body accepted by /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

const (
	detailNotConfigured = "Azure OpenAI client not configured. Please check your environment variables."
	detailInvalidBody   = "Invalid request format"
	detailBlankMessage  = "Please provide a code snippet for therapy."
)

func (a *App) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":         "Welcome to CodeCounselor - Your AI Code Therapist",
		"chat_endpoint":   EndPointChat,
		"health_endpoint": EndPointHealth,
	})
}

func (a *App) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"upstream_configured": a.UpstreamConfigured(),
	})
}

func (a *App) handleDebug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"azure_openai": gin.H{
			"client_configured":   a.UpstreamConfigured(),
			"endpoint":            a.cfg.Endpoint,
			"deployment_name":     a.cfg.DeploymentName,
			"api_version":         a.cfg.APIVersion,
			"api_key_length":      len(a.cfg.APIKey),
			"api_key_starts_with": utils.KeyPrefix(a.cfg.APIKey, 10),
		},
		"prompt": gin.H{
			"source":   a.template.Source(),
			"path":     a.template.Path(),
			"metadata": a.template.Metadata(),
		},
		"environment": version.Get(serviceName),
		"server": gin.H{
			"host": a.cfg.Host,
			"port": a.cfg.Port,
		},
	})
}

// handleTestSimple runs one non-streaming completion and reports the outcome.
// Upstream failures are part of the report, not an HTTP error.
func (a *App) handleTestSimple(c *gin.Context) {
	if a.service == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailNotConfigured})
		return
	}

	completion, err := a.service.Probe(c.Request.Context())
	if err != nil {
		d := llm.Classify(err)
		s := a.service.Settings()
		log.WithError(err).WithField("category", string(d.Category)).Error("test_simple.failed")
		c.JSON(http.StatusOK, gin.H{
			"status":      "error",
			"error":       d.Message,
			"error_type":  d.ErrorType,
			"category":    string(d.Category),
			"endpoint":    s.Endpoint,
			"deployment":  s.Deployment,
			"api_version": s.APIVersion,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"response": completion.Content,
		"usage":    completion.Usage,
		"model":    completion.Model,
		"created":  completion.Created,
	})
}

// handleChat streams a therapy session as plain text. Once the status line is
// written every failure is reported inside the body.
func (a *App) handleChat(c *gin.Context) {
	if a.service == nil {
		metrics.ChatRejections.WithLabelValues("not_configured").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailNotConfigured})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ChatRejections.WithLabelValues("invalid_body").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailInvalidBody})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		metrics.ChatRejections.WithLabelValues("blank_message").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailBlankMessage})
		return
	}
	if !a.limiter.admit(c) {
		return
	}

	log.WithFields(log.Fields{
		"length":     len(req.Message),
		"request_id": c.GetString(HeaderRequestID),
	}).Info("chat.request")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	chunks := a.service.Stream(ctx, req.Message)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for text := range chunks {
		if _, err := io.WriteString(c.Writer, text); err != nil {
			log.WithError(err).Warn("chat.write_failed")
			// Unblocks the producer; the channel drains below.
			cancel()
			break
		}
		c.Writer.Flush()
	}
	for range chunks {
	}
}
