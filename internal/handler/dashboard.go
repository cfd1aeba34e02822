// Package handler exposes the analytics core over HTTP.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellfield/rigops/internal/analytics"
	"github.com/wellfield/rigops/internal/auth"
	"github.com/wellfield/rigops/internal/cache"
	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/logger"
	"github.com/wellfield/rigops/internal/storage"
	"github.com/wellfield/rigops/internal/timewindow"
)

// DashboardHandler serves the KPI endpoints. The anchor clock is injected so
// tests can pin "today"; in production it is time.Now.
type DashboardHandler struct {
	engine   *analytics.Engine
	cache    *cache.SnapshotCache
	log      logger.Logger
	topLimit int
	now      func() time.Time
}

// NewDashboardHandler creates the dashboard handler. snapCache may be nil
// when caching is disabled.
func NewDashboardHandler(
	engine *analytics.Engine,
	snapCache *cache.SnapshotCache,
	log logger.Logger,
	topLimit int,
	now func() time.Time,
) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{
		engine:   engine,
		cache:    snapCache,
		log:      log,
		topLimit: topLimit,
		now:      now,
	}
}

// parseFilter builds the request's FilterContext from query parameters.
// A preset token resolves the window; otherwise explicit start/end dates
// are required. group_by may override the preset default either way.
func (h *DashboardHandler) parseFilter(c *gin.Context, anchor time.Time) (domain.FilterContext, error) {
	params := domain.FilterParams{
		RigID:    c.Query("rig_id"),
		ClientID: c.Query("client_id"),
		JobType:  c.Query("job_type"),
		GroupBy:  c.Query("group_by"),
	}

	if preset := c.Query("preset"); preset != "" {
		w, err := timewindow.Resolve(preset, anchor)
		if err != nil {
			return domain.FilterContext{}, &domain.ValidationError{Field: "preset", Message: err.Error()}
		}
		params.StartDate = w.Start
		params.EndDate = w.End
		if params.GroupBy == "" {
			params.GroupBy = string(w.GroupBy)
		}
		return domain.NewFilterContext(params)
	}

	var err error
	params.StartDate, err = parseDate(c.Query("start_date"), anchor.Location())
	if err != nil {
		return domain.FilterContext{}, &domain.ValidationError{Field: "start_date", Message: err.Error()}
	}
	params.EndDate, err = parseDate(c.Query("end_date"), anchor.Location())
	if err != nil {
		return domain.FilterContext{}, &domain.ValidationError{Field: "end_date", Message: err.Error()}
	}
	return domain.NewFilterContext(params)
}

// parseDate reads a calendar date in the anchor's location so explicit
// ranges and preset-resolved windows describe the same instants.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("is required (or use a preset)")
	}
	return time.ParseInLocation(domain.DateLayout, raw, loc)
}

// computeSnapshot runs the engine with a cache read-through.
func (h *DashboardHandler) computeSnapshot(c *gin.Context, f domain.FilterContext, anchor time.Time) (*domain.StatsSnapshot, error) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if snap, ok := h.cache.Get(ctx, f, anchor); ok {
			return snap, nil
		}
	}

	snap, err := h.engine.ComputeSnapshot(ctx, f, anchor)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		h.cache.Put(ctx, snap)
	}
	return snap, nil
}

// GetSnapshot handles GET /api/v1/dashboard/snapshot.
func (h *DashboardHandler) GetSnapshot(c *gin.Context) {
	anchor := h.now()

	f, err := h.parseFilter(c, anchor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.computeSnapshot(c, f, anchor)
	if err != nil {
		h.respondComputeError(c, err)
		return
	}

	caps := auth.CapabilitiesFrom(c)
	gated := analytics.ApplyPermissions(snap, caps)

	resp := gin.H{
		"snapshot":      gated,
		"active_preset": timewindow.ActivePreset(f.StartDate, f.EndDate, anchor),
	}
	if !gated.NoAccess {
		resp["alerts"] = analytics.EvaluateAlerts(snap)
	}
	c.JSON(http.StatusOK, resp)
}

// GetRigPerformance handles GET /api/v1/dashboard/rigs.
func (h *DashboardHandler) GetRigPerformance(c *gin.Context) {
	caps := auth.CapabilitiesFrom(c)
	if !caps.Operational {
		c.JSON(http.StatusForbidden, gin.H{"error": "operational capability required"})
		return
	}

	anchor := h.now()
	f, err := h.parseFilter(c, anchor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.engine.ComputeRigPerformance(c.Request.Context(), f)
	if err != nil {
		h.respondComputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rigs": rows, "count": len(rows)})
}

// GetTopEntities handles GET /api/v1/dashboard/top.
func (h *DashboardHandler) GetTopEntities(c *gin.Context) {
	kind, ok := analytics.ParseEntityKind(c.DefaultQuery("kind", string(analytics.KindClients)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of: clients, rigs, job_types"})
		return
	}

	caps := auth.CapabilitiesFrom(c)
	if !rankingAllowed(kind, caps) {
		c.JSON(http.StatusForbidden, gin.H{"error": "missing capability for " + string(kind)})
		return
	}

	anchor := h.now()
	f, err := h.parseFilter(c, anchor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := h.topLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	ranked, err := h.engine.ComputeTopEntities(c.Request.Context(), f, kind, limit)
	if err != nil {
		h.respondComputeError(c, err)
		return
	}

	resp := gin.H{"kind": kind, "entities": ranked, "count": len(ranked)}
	if leader, hasLeader := analytics.Leader(ranked); hasLeader {
		resp["leader"] = leader
	}
	c.JSON(http.StatusOK, resp)
}

// rankingAllowed maps ranking kinds to the capability that covers them.
func rankingAllowed(kind analytics.EntityKind, caps domain.Capabilities) bool {
	switch kind {
	case analytics.KindClients:
		return caps.CRM
	case analytics.KindRigs:
		return caps.Operational
	case analytics.KindJobTypes:
		return caps.Financial || caps.CRM
	default:
		return false
	}
}

// GetAlerts handles GET /api/v1/dashboard/alerts.
func (h *DashboardHandler) GetAlerts(c *gin.Context) {
	caps := auth.CapabilitiesFrom(c)
	if caps.None() {
		c.JSON(http.StatusOK, gin.H{"no_access": true})
		return
	}

	anchor := h.now()
	f, err := h.parseFilter(c, anchor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.computeSnapshot(c, f, anchor)
	if err != nil {
		h.respondComputeError(c, err)
		return
	}

	alerts := analytics.EvaluateAlerts(snap)
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// GetPresets handles GET /api/v1/dashboard/presets. When the caller passes
// its current start/end the matching preset is flagged active.
func (h *DashboardHandler) GetPresets(c *gin.Context) {
	anchor := h.now()

	active := ""
	startRaw, endRaw := c.Query("start_date"), c.Query("end_date")
	if startRaw != "" && endRaw != "" {
		start, startErr := parseDate(startRaw, anchor.Location())
		end, endErr := parseDate(endRaw, anchor.Location())
		if startErr == nil && endErr == nil {
			active = timewindow.ActivePreset(start, end, anchor)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"presets":       timewindow.Catalog(),
		"active_preset": active,
	})
}

// respondComputeError distinguishes a down record source from an internal
// failure so clients can tell "system down" from "server bug".
func (h *DashboardHandler) respondComputeError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, storage.ErrSourceUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "record store unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
}
