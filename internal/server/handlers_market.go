package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleCommodities(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	catalog, err := s.market.Catalog(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"commodities": catalog,
		"count":       len(catalog),
	})
}

func (s *Server) handleMarketSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	matches, err := s.market.Search(r.Context(), query, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"commodities": matches,
		"count":       len(matches),
	})
}

func (s *Server) handlePriceCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	slug := PathParam(r, "/api/market/price/", "")
	if slug == "" {
		WriteError(w, http.StatusBadRequest, "Commodity slug is required")
		return
	}

	quote, err := s.market.PriceCheck(r.Context(), slug)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	// A commodity with no listed sell locations is an answer, not an error.
	WriteJSON(w, http.StatusOK, quote)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	handle := PathParam(r, "/api/profile/", "")
	if handle == "" {
		WriteError(w, http.StatusBadRequest, "Handle is required")
		return
	}

	profile, err := s.profiles.GetProfile(r.Context(), handle)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}
