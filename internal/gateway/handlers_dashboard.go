package gateway

import "net/http"

// handleDashboardOverview serves the static dashboard snapshot. Real
// aggregation lands once document ingestion is wired up.
func (g *Gateway) handleDashboardOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.handleNotFound(w, r)
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]any{
		"complianceScore": 82,
		"urgentIssues":    2,
		"documents":       []any{},
		"recentQueries":   []any{},
		"products":        []any{},
	})
}
