package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"market-scanner/internal/gateset"
	"market-scanner/internal/rules"
)

type gateSpecRequest struct {
	Gate     *int         `json:"gate"`
	RuleID   string       `json:"rule_id"`
	Required *bool        `json:"required"`
	Weight   *float64     `json:"weight"`
	Params   rules.Params `json:"params"`
}

type createGateSetRequest struct {
	ID    string            `json:"id" binding:"required"`
	Name  string            `json:"name" binding:"required"`
	Gates []gateSpecRequest `json:"gates" binding:"required"`
}

func (s *Server) handleListGateSets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"gate_sets": s.sets.List()})
}

// handleCreateGateSet inserts or replaces a gate set. Omitted fields get
// defaults: gate index from position, required true only for the master
// gate, weight 20.
func (s *Server) handleCreateGateSet(c *gin.Context) {
	var req createGateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Gates) == 0 {
		errorResponse(c, http.StatusBadRequest, "gates must not be empty")
		return
	}

	cfg := gateset.GateSetConfig{
		ID:    req.ID,
		Name:  req.Name,
		Gates: make([]gateset.GateSpec, 0, len(req.Gates)),
	}
	for i, g := range req.Gates {
		if g.RuleID == "" {
			errorResponse(c, http.StatusBadRequest, fmt.Sprintf("gate %d is missing rule_id", i))
			return
		}
		spec := gateset.GateSpec{
			Gate:     i,
			RuleID:   g.RuleID,
			Required: i == 0,
			Weight:   20,
			Params:   g.Params,
		}
		if g.Gate != nil {
			spec.Gate = *g.Gate
		}
		if g.Required != nil {
			spec.Required = *g.Required
		}
		if g.Weight != nil {
			spec.Weight = *g.Weight
		}
		cfg.Gates = append(cfg.Gates, spec)
	}

	s.sets.Add(cfg)
	s.log.Info().Str("id", cfg.ID).Int("gates", len(cfg.Gates)).Msg("gate set stored")
	c.JSON(http.StatusCreated, cfg)
}

func (s *Server) handleDeleteGateSet(c *gin.Context) {
	id := c.Param("id")
	if !s.sets.Delete(id) {
		errorResponse(c, http.StatusNotFound, fmt.Sprintf("gate set %s not found", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
