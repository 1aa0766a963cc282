package handler

import (
	"context"
	"time"

	appledger "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/scheduler"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Refresher reloads every collection on demand
type Refresher interface {
	TriggerRefresh(ctx context.Context) error
	LastResult() *scheduler.RefreshResult
}

// LedgerHandler serves calculated fields, reports and engine status
type LedgerHandler struct {
	BaseHandler
	engine    *appledger.Engine
	assembler *appledger.Assembler
	refresher Refresher
	logger    *zap.Logger
}

// NewLedgerHandler creates a new LedgerHandler. refresher may be nil, in
// which case the refresh endpoint is not registered.
func NewLedgerHandler(engine *appledger.Engine, assembler *appledger.Assembler, refresher Refresher, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{
		engine:    engine,
		assembler: assembler,
		refresher: refresher,
		logger:    logger,
	}
}

// RegisterRoutes mounts the ledger endpoints under rg
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ledger")
	g.GET("/status", h.GetStatus)
	g.GET("/entities/:kind/:id/calculated", h.GetCalculatedFields)
	g.GET("/entities/:kind/:id/period", h.GetPeriod)
	g.GET("/entities/:kind/:id/balance", h.GetBalance)
	g.GET("/orders/:id/lines", h.GetOrderLines)
	g.GET("/reports/:type", h.GetReport)
	if h.refresher != nil {
		g.POST("/refresh", h.Refresh)
	}
}

func (h *LedgerHandler) entityKind(c *gin.Context) (ledger.EntityKind, bool) {
	kind, ok := ledger.ParseEntityKind(c.Param("kind"))
	if !ok {
		h.HandleError(c, shared.ErrInvalidInput.WithDetail("unknown entity kind %q", c.Param("kind")))
	}
	return kind, ok
}

func (h *LedgerHandler) window(c *gin.Context, q dto.WindowQuery) (ledger.DateWindow, bool) {
	w, err := ledger.NewDateWindow(q.Start, q.End)
	if err != nil {
		h.HandleError(c, err)
		return ledger.DateWindow{}, false
	}
	return w, true
}

// GetCalculatedFields returns the calculated fields of one vendor or project
func (h *LedgerHandler) GetCalculatedFields(c *gin.Context) {
	kind, ok := h.entityKind(c)
	if !ok {
		return
	}
	var q dto.WindowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	w, ok := h.window(c, q)
	if !ok {
		return
	}

	fields, err := h.engine.GetCalculatedFields(kind, c.Param("id"), w)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.CalculatedFieldsResponse{CalculatedFields: fields, Window: dto.NewWindowResponse(w)})
}

// GetPeriod returns the window totals of one vendor or project
func (h *LedgerHandler) GetPeriod(c *gin.Context) {
	kind, ok := h.entityKind(c)
	if !ok {
		return
	}
	var q dto.WindowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	w, ok := h.window(c, q)
	if !ok {
		return
	}

	id := c.Param("id")
	totals, err := h.engine.ComputePeriod(kind, id, w)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPeriodResponse(kind, id, w, totals))
}

// GetBalance returns the epoch balance of one vendor or project, optionally
// bounded by the end of the as_of day
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	kind, ok := h.entityKind(c)
	if !ok {
		return
	}
	var q dto.BalanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	bound, ok := h.window(c, dto.WindowQuery{End: q.AsOf})
	if !ok {
		return
	}

	id := c.Param("id")
	balance, err := h.engine.ComputeBalance(kind, id, bound.End)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.BalanceResponse{
		EntityID:   id,
		EntityKind: kind,
		Epoch:      h.engine.Epoch(),
		AsOf:       bound.End,
		Balance:    balance,
	})
}

// GetOrderLines returns the reconciliation bucket of each invoice line of an order
func (h *LedgerHandler) GetOrderLines(c *gin.Context) {
	id := c.Param("id")
	lines, err := h.engine.ClassifyOrderLines(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.OrderLinesResponse{OrderID: id, Lines: lines})
}

// GetReport assembles one report
func (h *LedgerHandler) GetReport(c *gin.Context) {
	reportType, ok := appledger.ParseReportType(c.Param("type"))
	if !ok {
		h.HandleError(c, shared.ErrInvalidInput.WithDetail("unknown report type %q", c.Param("type")))
		return
	}
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	w, ok := h.window(c, q.WindowQuery)
	if !ok {
		return
	}

	req := appledger.ReportRequest{
		Type:         reportType,
		Window:       w,
		EntityID:     q.EntityID,
		MismatchOnly: q.MismatchOnly,
	}
	if q.Kind != "" {
		req.Kind, _ = ledger.ParseEntityKind(q.Kind)
	}
	if q.Status != "" {
		req.Bucket, _ = ledger.ParseReconciliationBucket(q.Status)
	}

	report, err := h.assembler.Build(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Refresh reloads every collection and waits for the result
func (h *LedgerHandler) Refresh(c *gin.Context) {
	start := time.Now()
	if err := h.refresher.TriggerRefresh(c.Request.Context()); err != nil {
		h.logger.Warn("Manual refresh failed",
			zap.String("request_id", getRequestID(c)),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.RefreshResponse{
		Version:  h.engine.Snapshot().Version(),
		Duration: time.Since(start).Round(time.Millisecond).String(),
	})
}

// GetStatus reports loaded collections, cache counters and the last refresh
func (h *LedgerHandler) GetStatus(c *gin.Context) {
	s := h.engine.Snapshot()
	resp := dto.StatusResponse{
		Version:     s.Version(),
		Collections: s.Status(),
		Cache:       h.engine.CacheStats(),
	}
	if h.refresher != nil {
		if last := h.refresher.LastResult(); last != nil {
			resp.Refresh = &dto.RefreshStatus{
				StartedAt: last.StartedAt,
				Duration:  last.Duration.Round(time.Millisecond).String(),
			}
			if last.Err != nil {
				resp.Refresh.Error = last.Err.Error()
			}
		}
	}
	h.Success(c, resp)
}
