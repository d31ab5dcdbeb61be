package http

import (
	"net/http"

	"financetracker/internal/log"
)

// handleDashboard renders the monthly overview. Optional year and month
// query parameters pick another month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query(), s.deps.Dashboard.Today())

	d, err := s.deps.Dashboard.Build(r.Context(), userID(r), params.Year, params.Month)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(newDashboardView(d)).Write(w)
}
