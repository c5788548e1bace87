package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-craftscore"
	"github.com/anatolykoptev/go-craftscore/internal/apperrors"
	"github.com/anatolykoptev/go-craftscore/internal/config"
	"github.com/anatolykoptev/go-craftscore/internal/logger"
	"github.com/anatolykoptev/go-craftscore/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

type AIDetectionRequest struct {
	ImageURL string `json:"image_url"`
}

type AIDetectionResponse struct {
	craftscore.Verdict
	Badge craftscore.BadgeInfo `json:"badge"`
}

type SustainabilityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

type SustainabilityResponse struct {
	craftscore.SustainabilityVerdict
	Badge craftscore.BadgeInfo `json:"badge"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler wires the scoring routes. scorer must be fully configured; it
// is shared by every request.
func NewHandler(scorer *craftscore.Config, cfg *config.Config) http.Handler {
	r := gin.New()
	r.Use(
		gin.CustomRecovery(recoverPanic),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	v1 := r.Group("/v1")
	v1.POST("/ai-detection", detectAIImage(scorer, cfg, imageURLValidator(cfg)))
	v1.POST("/sustainability", classifySustainability())
	v1.GET("/badges/ai", badge(craftscore.AIBadge))
	v1.GET("/badges/sustainability", badge(craftscore.SustainabilityBadge))

	return r
}

// imageURLValidator only admits http(s) URLs, so clients cannot make the
// service read local files.
func imageURLValidator(cfg *config.Config) *validation.URLValidator {
	if len(cfg.AllowedImageHosts) == 0 {
		return validation.NewURLValidator()
	}
	return validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts)
}

func detectAIImage(scorer *craftscore.Config, cfg *config.Config, urls *validation.URLValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req AIDetectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(bindError(err))
			return
		}
		// An empty reference still gets the no_image verdict.
		if strings.TrimSpace(req.ImageURL) != "" {
			if err := urls.ValidateImageURL(req.ImageURL); err != nil {
				_ = c.Error(err)
				return
			}
		}

		start := time.Now()
		verdict := scorer.DetectAIImage(ctx, req.ImageURL)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			_ = c.Error(apperrors.NewTimeoutError("AI detection timed out", ctx.Err()))
			return
		}

		logger.WithFields(logrus.Fields{
			"image_url":          req.ImageURL,
			"is_ai_generated":    verdict.IsAIGenerated,
			"confidence_score":   verdict.ConfidenceScore,
			"detection_method":   verdict.DetectionMethod,
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("AI detection completed")

		c.JSON(http.StatusOK, AIDetectionResponse{
			Verdict: verdict,
			Badge:   craftscore.AIBadge(verdict.ConfidenceScore),
		})
	}
}

func classifySustainability() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SustainabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(bindError(err))
			return
		}
		if req.Title == "" && req.Description == "" {
			_ = c.Error(apperrors.NewValidationError("title or description is required", nil))
			return
		}

		verdict := craftscore.ClassifyProductSustainability(req.Title, req.Description, req.ImageURL)

		logger.WithFields(logrus.Fields{
			"title":          req.Title,
			"is_sustainable": verdict.IsSustainable,
			"score":          verdict.Score,
			"keywords":       len(verdict.KeywordsFound),
		}).Info("Sustainability classification completed")

		c.JSON(http.StatusOK, SustainabilityResponse{
			SustainabilityVerdict: verdict,
			Badge:                 craftscore.SustainabilityBadge(verdict.Score),
		})
	}
}

func badge(lookup func(float64) craftscore.BadgeInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("score")
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			_ = c.Error(apperrors.NewValidationError(fmt.Sprintf("invalid score %q", raw), err))
			return
		}
		c.JSON(http.StatusOK, lookup(score))
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "available",
		"version":      version,
		"capabilities": craftscore.Detected().String(),
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}

func bindError(err error) *apperrors.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewTooLargeError("request body too large", err)
	}
	return apperrors.NewValidationError("invalid request format", err)
}

func recoverPanic(c *gin.Context, recovered any) {
	respondError(c, http.StatusInternalServerError,
		apperrors.NewInternalError("internal error", fmt.Errorf("panic: %v", recovered)))
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"ip":          c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}
