package http

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type metricsResponse struct {
	TotalRequests           int64 `json:"totalRequests"`
	AverageResponseMicros   int64 `json:"averageResponseMicros"`
	RateLimitHits           int64 `json:"rateLimitHits"`
	RateLimitTrackedClients int64 `json:"rateLimitTrackedClients"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	reqMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()

	writeJSON(w, http.StatusOK, metricsResponse{
		TotalRequests:           reqMetrics.TotalRequests,
		AverageResponseMicros:   reqMetrics.AverageResponseTime,
		RateLimitHits:           limitMetrics.TotalHits,
		RateLimitTrackedClients: int64(s.limiter.ActiveClients()),
	})
}
