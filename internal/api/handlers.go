package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"courtlookup/internal/cache"
	"courtlookup/internal/config"
	"courtlookup/internal/database"
	"courtlookup/internal/extractor"
	"courtlookup/internal/relay"
	"courtlookup/pkg/logger"
)

// CaseLookup runs one browser-automated lookup attempt and returns the
// extracted details together with the raw page HTML.
type CaseLookup interface {
	Lookup(ctx context.Context, caseType, caseNumber, filingYear string) (*extractor.CaseDetails, string, error)
}

// Handlers holds all HTTP handlers
type Handlers struct {
	store  *database.Store
	cache  cache.Cache
	lookup CaseLookup
	relay  *relay.Relay
	logger *logger.Logger
	cfg    *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(store *database.Store, cache cache.Cache, lookup CaseLookup, relay *relay.Relay, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		store:  store,
		cache:  cache,
		lookup: lookup,
		relay:  relay,
		logger: logger,
		cfg:    cfg,
	}
}

type searchRequest struct {
	CaseType   string `json:"case_type" form:"case_type"`
	CaseNumber string `json:"case_number" form:"case_number"`
	FilingYear string `json:"filing_year" form:"filing_year"`
}

// SearchCase runs one lookup attempt and appends exactly one query record,
// whatever the outcome. Invalid input short-circuits before any automation
// or log write.
func (h *Handlers) SearchCase(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	req.CaseType = strings.TrimSpace(req.CaseType)
	req.CaseNumber = strings.TrimSpace(req.CaseNumber)
	req.FilingYear = strings.TrimSpace(req.FilingYear)
	if req.CaseType == "" || req.CaseNumber == "" || req.FilingYear == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	ctx := c.Request.Context()

	// Cache hit skips the browser but still counts as an attempt.
	cacheKey := cache.GenerateCacheKey(req.CaseType, req.CaseNumber, req.FilingYear)
	if cached, found := h.cache.Get(cacheKey); found {
		h.logger.Info("Cache hit", "key", cacheKey)
		if aerr := h.appendRecord(ctx, &req, "", cached, nil); aerr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, cached)
		return
	}

	details, rawHTML, err := h.lookup.Lookup(ctx, req.CaseType, req.CaseNumber, req.FilingYear)
	if err != nil {
		h.appendRecord(ctx, &req, rawHTML, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if aerr := h.appendRecord(ctx, &req, rawHTML, details, nil); aerr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.cache.Set(cacheKey, details)
	c.JSON(http.StatusOK, details)
}

// appendRecord writes the one QueryRecord for a lookup attempt. Store
// failures on the error path are logged, not surfaced; the lookup error
// already owns the response.
func (h *Handlers) appendRecord(ctx context.Context, req *searchRequest, rawHTML string, details *extractor.CaseDetails, lookupErr error) error {
	rec := &database.QueryRecord{
		CaseType:    req.CaseType,
		CaseNumber:  req.CaseNumber,
		FilingYear:  req.FilingYear,
		RawResponse: rawHTML,
	}

	if lookupErr != nil {
		rec.Status = database.StatusError
		payload, _ := json.Marshal(gin.H{"error": lookupErr.Error()})
		rec.ParsedData = string(payload)
	} else {
		rec.Status = database.StatusSuccess
		payload, err := json.Marshal(details)
		if err != nil {
			h.logger.Error("Failed to serialize case details", "error", err)
			return err
		}
		rec.ParsedData = string(payload)
	}

	if err := h.store.Append(ctx, rec); err != nil {
		h.logger.Error("Failed to append query record",
			"case_type", req.CaseType,
			"case_number", req.CaseNumber,
			"error", err,
		)
		return err
	}
	return nil
}

// DownloadPDF relays a court document to the caller as an attachment. The
// staged temporary file is removed once the response has been written.
// Relay requests are never logged to the query store.
func (h *Handlers) DownloadPDF(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PDF URL required"})
		return
	}

	dl, err := h.relay.Fetch(c.Request.Context(), rawURL)
	if err != nil {
		switch {
		case errors.Is(err, relay.ErrInvalidURL), errors.Is(err, relay.ErrHostNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, relay.ErrRemoteStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to download PDF"})
		default:
			h.logger.Error("Document relay failed", "url", rawURL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Download failed"})
		}
		return
	}
	defer dl.Cleanup()

	c.FileAttachment(dl.Path, dl.Filename)
}

// History lists the most recent lookup attempts, newest first.
func (h *Handlers) History(c *gin.Context) {
	summaries, err := h.store.Recent(c.Request.Context(), database.MaxHistory)
	if err != nil {
		h.logger.Error("Failed to fetch history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	dbHealthy := h.store.Ping(c.Request.Context()) == nil

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"cache":    h.cache.Stats(),
		"time":     time.Now().Unix(),
	})
}

// Index describes the service and its endpoints.
func (h *Handlers) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "court case lookup",
		"court":   h.cfg.CourtName,
		"endpoints": gin.H{
			"search":   "POST /search",
			"download": "GET /download_pdf?url=",
			"history":  "GET /history",
			"health":   "GET /health",
		},
	})
}
