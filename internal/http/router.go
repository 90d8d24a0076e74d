package http

import "net/http"

// NewRouter registers the admin API routes.
func NewRouter(h *AdminHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/admin/compute/cumulative", h.computeCumulative)
	mux.HandleFunc("/api/admin/compute/ewma", h.computeEWMA)
	mux.HandleFunc("/api/admin/compute/peaks", h.computePeaks)
	mux.HandleFunc("/api/admin/compute/predict", h.computePredict)
	mux.HandleFunc("/api/admin/compute/exposure", h.computeExposure)
	mux.HandleFunc("/api/admin/compute/health", h.computeHealth)
	mux.HandleFunc("/api/admin/computed", h.listComputed)
	mux.HandleFunc("/api/admin/alerts", h.listAlerts)
	mux.HandleFunc("/api/admin/alerts/acknowledge", h.acknowledgeAlert)
	mux.HandleFunc("/api/admin/devices/health", h.getDeviceHealth)
	mux.HandleFunc("/api/admin/export/readings", h.exportReadings)
	mux.HandleFunc("/healthz", h.healthz)

	return mux
}
