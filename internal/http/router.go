package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux. The route surface is
// small and fixed; no third-party router pays its way here.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAPIRoutes wires the complete endpoint surface.
func (r *Router) RegisterAPIRoutes(
	ingest *IngestHandler,
	query *QueryHandler,
	dashboard *DashboardHandler,
	export *ExportHandler,
	admin *AdminHandler,
	system *SystemHandler,
) {
	// Write tier.
	r.Handle("/api/log/", ingest.ServeHTTP)

	// Read tier.
	r.Handle("/api/events", query.Events)
	r.Handle("/api/climate/", query.ClimateHistory)
	r.Handle("/api/battery/", query.BatteryHistory)
	r.Handle("/api/alarms", query.Alarms)
	r.Handle("/api/sensors", query.Sensors)
	r.Handle("/api/sensors/", query.SensorDetail)
	r.Handle("/api/bridges", query.Bridges)
	r.Handle("/api/stats/daily", query.DailyStats)
	r.Handle("/api/dashboard/", dashboard.ServeHTTP)
	r.Handle("/api/export/events", export.Events)

	// Write tier, admin.
	r.Handle("/api/admin/", admin.ServeHTTP)

	// Unauthenticated bootstrap.
	r.Handle("/api/health", system.Health)
	r.Handle("/api/server/time", system.ServerTime)
}
