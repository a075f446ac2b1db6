package server

import (
	"errors"
	"net/http"

	"github.com/calriss/corsair/internal/clients/rsi"
	"github.com/calriss/corsair/internal/clients/scrape"
	"github.com/calriss/corsair/internal/services/ledger"
)

// writeDomainError maps service-layer errors onto HTTP responses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsValidation(err):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "validation")
	case errors.Is(err, ledger.ErrFlowInProgress):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "flow_in_progress")
	case errors.Is(err, ledger.ErrReportNotFound):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "report_not_found")
	case errors.Is(err, ledger.ErrNoFlow):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "no_flow")
	case isFlowState(err):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "flow_state")
	case rsi.IsProfileNotFound(err):
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "profile_not_found")
	case scrape.IsRateLimited(err):
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), "rate_limited")
	case scrape.IsTimeout(err):
		WriteErrorWithCode(w, http.StatusGatewayTimeout, err.Error(), "timeout")
	case isFetch(err):
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), "fetch")
	case ledger.IsSubmission(err):
		// Partial failure after the report row was written. The error text
		// carries the report ID so the caller can replay the fan-out.
		WriteErrorWithCode(w, http.StatusInternalServerError, err.Error(), "submission")
	default:
		s.logger.Error().Err(err).Msg("Unhandled service error")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isFlowState(err error) bool {
	var fse *ledger.FlowStateError
	return errors.As(err, &fse)
}

func isFetch(err error) bool {
	var fe *scrape.FetchError
	return errors.As(err, &fe)
}
