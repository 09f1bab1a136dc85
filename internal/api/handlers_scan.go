package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-scanner/internal/scan"
)

type scanRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	GateSetID string `json:"gate_set_id" binding:"required"`
}

type scanWatchlistRequest struct {
	GateSetID string   `json:"gate_set_id" binding:"required"`
	Symbols   []string `json:"symbols"`
}

func (s *Server) handleScanSymbol(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := s.eval.ScanSymbol(c.Request.Context(), req.Symbol, req.GateSetID)
	if err != nil {
		// Fetch failures still yield a well-formed result object.
		s.log.Warn().Err(err).Str("symbol", req.Symbol).Msg("scan fetch failed")
		res = &scan.ScanResult{Symbol: req.Symbol, Error: err.Error()}
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleScanWatchlist(c *gin.Context) {
	var req scanWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.scanAndRespond(c, req.GateSetID, req.Symbols)
}

func (s *Server) handleScanDefaultWatchlist(c *gin.Context) {
	s.scanAndRespond(c, c.Param("gateSetId"), nil)
}

func (s *Server) scanAndRespond(c *gin.Context, gateSetID string, symbols []string) {
	res, err := s.orch.ScanWatchlist(c.Request.Context(), gateSetID, symbols)
	if err != nil {
		// Cancellation mid-scan: partial results are still valid.
		s.log.Warn().Err(err).Str("gate_set", gateSetID).Msg("watchlist scan interrupted")
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleScanHistory(c *gin.Context) {
	if s.repo == nil {
		errorResponse(c, http.StatusNotImplemented, "scan history is disabled: no database configured")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := s.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "query scan history: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}
