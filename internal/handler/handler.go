package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chessman8212-ai/poinatge-app/internal/account"
	"github.com/chessman8212-ai/poinatge-app/internal/config"
	"github.com/chessman8212-ai/poinatge-app/internal/export"
	"github.com/chessman8212-ai/poinatge-app/internal/httpmiddleware"
	"github.com/chessman8212-ai/poinatge-app/internal/ledger"
	"github.com/chessman8212-ai/poinatge-app/internal/metrics"
	"github.com/chessman8212-ai/poinatge-app/internal/policy"
	"github.com/chessman8212-ai/poinatge-app/internal/session"
)

// Handler exposes the service operations over gin.
type Handler struct {
	accounts *account.Service
	records  *ledger.Service
	sessions session.Store
	cfg      config.App
}

// New creates a handler.
func New(accounts *account.Service, records *ledger.Service, sessions session.Store, cfg config.App) *Handler {
	return &Handler{accounts: accounts, records: records, sessions: sessions, cfg: cfg}
}

// Register wires all routes onto the engine. The session-resolution
// middleware must already be installed.
func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", httpmiddleware.RequireAuthenticated(), h.Me)

	records := v1.Group("/records", httpmiddleware.RequireAuthenticated())
	records.POST("", h.CreateRecord)
	records.GET("", h.ListRecords)
	records.DELETE("/:id", httpmiddleware.RequireAdmin(), h.DeleteRecord)

	admin := v1.Group("/admin", httpmiddleware.RequireAdmin())
	admin.GET("/records", h.AdminRecords)
	admin.GET("/stats", h.AdminStats)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.DELETE("/users/:id", h.DeleteUser)

	// Export carries its own authorization: admin session or download token.
	v1.POST("/export/token", httpmiddleware.RequireAdmin(), h.ExportToken)
	v1.GET("/export/csv", h.ExportCSV)
}

// ---------- Auth ----------

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Next     string `json:"next"`
}

// Login verifies credentials and establishes a session. Failures are
// uniform regardless of whether the username exists.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct, err := h.accounts.Verify(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		metrics.Logins.WithLabelValues("failed").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": account.ErrInvalidCredentials.Error()})
		return
	}
	if err != nil {
		h.storageError(c, err)
		return
	}

	p := policy.Principal{ID: acct.ID, Username: acct.Username, Role: acct.Role}
	token, err := h.sessions.Establish(c.Request.Context(), p)
	if err != nil {
		h.storageError(c, err)
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	secure := h.cfg.Env == "production" || h.cfg.Env == "prod"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(h.cfg.SessionTTL.Seconds()), "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"principal": p,
		"redirect":  policy.SafeRedirect(req.Next, "/"),
	})
}

// Logout terminates the session. Terminating an already-invalid session is
// a no-op, not an error.
func (h *Handler) Logout(c *gin.Context) {
	if token := httpmiddleware.SessionToken(c); token != "" {
		if err := h.sessions.Terminate(c.Request.Context(), token); err != nil {
			log.Printf("session terminate failed: %v", err)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me returns the current principal.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, httpmiddleware.CurrentPrincipal(c))
}

// ---------- Records ----------

type clockRequest struct {
	Jour    string `json:"jour"`
	Arrivee string `json:"arrivee" binding:"required"`
	Depart  string `json:"depart"`
	Service string `json:"service"`
	Note    string `json:"note"`
}

// CreateRecord records a clock-in for the acting principal. The owner is
// forced server-side.
func (h *Handler) CreateRecord(c *gin.Context) {
	var req clockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.records.Clock(c.Request.Context(), httpmiddleware.CurrentPrincipal(c), ledger.ClockInput{
		Day:       req.Jour,
		Arrival:   req.Arrivee,
		Departure: req.Depart,
		Category:  req.Service,
		Note:      req.Note,
	})
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.storageError(c, err)
		return
	}

	metrics.ClockIns.Inc()
	c.JSON(http.StatusCreated, rec)
}

// ListRecords returns the day's records visible to the principal.
func (h *Handler) ListRecords(c *gin.Context) {
	recs, err := h.records.ListDay(c.Request.Context(), httpmiddleware.CurrentPrincipal(c), c.Query("day"))
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.storageError(c, err)
		return
	}
	if recs == nil {
		recs = []ledger.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// DeleteRecord permanently removes a record.
func (h *Handler) DeleteRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---------- Admin ----------

// AdminRecords returns every record, newest day first.
func (h *Handler) AdminRecords(c *gin.Context) {
	recs, err := h.records.ListAll(c.Request.Context())
	if err != nil {
		h.storageError(c, err)
		return
	}
	if recs == nil {
		recs = []ledger.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// AdminStats returns per-day record counts.
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.records.DailyStats(c.Request.Context())
	if err != nil {
		h.storageError(c, err)
		return
	}
	if stats == nil {
		stats = []ledger.DayStat{}
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListUsers returns all accounts. Password hashes never serialize.
func (h *Handler) ListUsers(c *gin.Context) {
	accts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.storageError(c, err)
		return
	}
	if accts == nil {
		accts = []account.Account{}
	}
	c.JSON(http.StatusOK, gin.H{"users": accts})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// CreateUser provisions an account.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := req.Role
	if role == "" {
		role = policy.RoleUser
	}
	acct, err := h.accounts.Provision(c.Request.Context(), req.Username, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateUsername):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, account.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, acct)
}

// DeleteUser removes an account, refusing self-deletion and removal of the
// last admin.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}
	err = h.accounts.Delete(c.Request.Context(), id, httpmiddleware.CurrentPrincipal(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	case errors.Is(err, account.ErrSelfDeletion), errors.Is(err, account.ErrLastAdmin):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, account.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.storageError(c, err)
	}
}

// ---------- Export ----------

// ExportToken issues a short-lived token that authorizes a CSV download
// without the session cookie.
func (h *Handler) ExportToken(c *gin.Context) {
	p := httpmiddleware.CurrentPrincipal(c)
	token, exp, err := export.IssueToken(p.Username, h.cfg.ExportIssuer, h.cfg.ExportSigningKey, h.cfg.ExportTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"expires_at": exp.Unix(),
		"url":        "/v1/export/csv?token=" + token,
	})
}

// ExportCSV streams the record set as CSV. Authorized by an admin session
// or a valid download token; an optional day query scopes the export.
func (h *Handler) ExportCSV(c *gin.Context) {
	if policy.RequireAdmin(httpmiddleware.CurrentPrincipal(c)) != nil {
		if _, err := export.ParseToken(c.Query("token"), h.cfg.ExportIssuer, h.cfg.ExportSigningKey); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "admin session or export token required"})
			return
		}
	}

	day := c.Query("day")
	var (
		recs []ledger.Record
		err  error
	)
	if day == "" {
		recs, err = h.records.ListAll(c.Request.Context())
	} else {
		day, err = ledger.NormalizeDay(day)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		recs, err = h.records.ListDayAll(c.Request.Context(), day)
	}
	if err != nil {
		h.storageError(c, err)
		return
	}

	body, err := export.Render(recs, h.cfg.CSVDelimiter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	metrics.Exports.Inc()
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(day)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// storageError answers a transient persistence fault; the request can be
// retried.
func (h *Handler) storageError(c *gin.Context, err error) {
	log.Printf("storage error: %v", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable"})
}
