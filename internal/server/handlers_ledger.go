package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/calriss/corsair/internal/models"
)

func (s *Server) handleListHits(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	guildID := r.URL.Query().Get("guild")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := s.ledger.ListReports(r.Context(), guildID, page, pageSize)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// handleHitByID serves the per-report sub-resources:
//
//	GET  /api/hits/{id}           report detail
//	POST /api/hits/{id}/replay    re-run fan-out
//	POST /api/hits/{id}/status    lifecycle transition
//	POST /api/hits/{id}/storage   record cargo holder
func (s *Server) handleHitByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/hits/")
	hitID, action, _ := strings.Cut(rest, "/")
	if hitID == "" {
		WriteError(w, http.StatusBadRequest, "Report ID is required")
		return
	}

	switch action {
	case "":
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}
		report, err := s.ledger.GetReport(r.Context(), hitID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, report)
	case "replay":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		replayed, err := s.ledger.ReplayFanOut(r.Context(), hitID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]int{"replayed": replayed})
	case "status":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := s.ledger.UpdateStatus(r.Context(), hitID, models.ReportStatus(req.Status)); err != nil {
			s.writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
	case "storage":
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			HolderID string `json:"holder_id"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := s.ledger.SetStorageHolder(r.Context(), hitID, req.HolderID); err != nil {
			s.writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"holder_id": req.HolderID})
	default:
		WriteError(w, http.StatusNotFound, "Unknown report action")
	}
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID := PathParam(r, "/api/balance/", "")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	guildID := r.URL.Query().Get("guild")
	if guildID == "" {
		WriteError(w, http.StatusBadRequest, "guild query parameter is required")
		return
	}

	balance, err := s.ledger.GetBalance(r.Context(), userID, guildID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        balance.UserID,
		"guild_id":       balance.GuildID,
		"total_share":    balance.TotalShare,
		"total_received": balance.TotalReceived,
		"outstanding":    balance.Outstanding(),
	})
}

type paymentRequest struct {
	HitID      string `json:"hit_id"`
	PayerID    string `json:"payer_id"`
	ReceiverID string `json:"receiver_id"`
	Amount     int64  `json:"amount"`
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req paymentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.HitID == "" || req.PayerID == "" || req.ReceiverID == "" {
		WriteError(w, http.StatusBadRequest, "hit_id, payer_id and receiver_id are required")
		return
	}
	paymentID, err := s.ledger.RecordPayment(r.Context(), req.HitID, req.PayerID, req.ReceiverID, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"payment_id": paymentID})
}
