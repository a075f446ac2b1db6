package server

import (
	"net/http"

	"github.com/calriss/corsair/internal/models"
)

type flowStartRequest struct {
	UserID  string `json:"user_id"`
	GuildID string `json:"guild_id"`
}

func (s *Server) handleFlowStart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req flowStartRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.GuildID == "" {
		WriteError(w, http.StatusBadRequest, "user_id and guild_id are required")
		return
	}
	if err := s.ledger.StartFlow(req.UserID, req.GuildID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"state": "idle"})
}

type flowCargoRequest struct {
	UserID       string  `json:"user_id"`
	Slug         string  `json:"slug"`
	Boxes        int     `json:"boxes"`
	Price        float64 `json:"price"`
	SellLocation string  `json:"sell_location"`
}

func (s *Server) handleFlowCargo(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req flowCargoRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Slug == "" {
		WriteError(w, http.StatusBadRequest, "user_id and slug are required")
		return
	}

	// Resolve the commodity and its box size from the market site. A
	// caller-supplied price overrides the scraped best price.
	quote, err := s.market.PriceCheck(r.Context(), req.Slug)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	price := req.Price
	if price <= 0 && quote.BestLocation != nil {
		price = quote.BestLocation.Price.Current
	}
	unitsPerBox := quote.BoxInfo.UnitsPerBox
	if unitsPerBox <= 0 {
		unitsPerBox = models.DefaultUnitsPerBox
	}
	commodity := models.Commodity{Slug: req.Slug, Name: req.Slug}
	if matches, err := s.market.Search(r.Context(), req.Slug, 1); err == nil && len(matches) > 0 {
		commodity = matches[0]
	}

	if err := s.ledger.SetCargo(req.UserID, commodity, req.Boxes, price, req.SellLocation, unitsPerBox); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"state":         "cargo_chosen",
		"price":         price,
		"units_per_box": unitsPerBox,
	})
}

type flowCrewRequest struct {
	UserID string            `json:"user_id"`
	Crew   map[string]string `json:"crew"`
}

func (s *Server) handleFlowCrew(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req flowCrewRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	crew := make(map[string]models.CrewRole, len(req.Crew))
	for userID, role := range req.Crew {
		crew[userID] = models.CrewRole(role)
	}
	if err := s.ledger.SetCrew(req.UserID, crew); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"state": "crew_chosen"})
}

type flowSellerRequest struct {
	UserID   string `json:"user_id"`
	SellerID string `json:"seller_id"`
}

func (s *Server) handleFlowSeller(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req flowSellerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := s.ledger.SetSeller(req.UserID, req.SellerID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"state": "seller_chosen"})
}

type flowCommitRequest struct {
	UserID       string `json:"user_id"`
	TargetHandle string `json:"target_handle"`
	Notes        string `json:"notes"`
}

func (s *Server) handleFlowCommit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req flowCommitRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.TargetHandle == "" {
		WriteError(w, http.StatusBadRequest, "target_handle is required")
		return
	}
	report, err := s.ledger.Commit(r.Context(), req.UserID, req.TargetHandle, req.Notes)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, report)
}

type flowAbandonRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleFlowAbandon(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost, http.MethodDelete) {
		return
	}
	var req flowAbandonRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	s.ledger.Abandon(req.UserID)
	WriteJSON(w, http.StatusOK, map[string]string{"state": "abandoned"})
}
