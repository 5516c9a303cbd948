package httpapi

import (
	"net/http"

	"jobintake-engine/internal/metrics"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Intake
	ih := IntakeHandler{Importer: d.Importer, Hub: d.Hub}
	for _, prefix := range []string{"/job_intake", "/import"} {
		mux.HandleFunc(prefix+"/csv", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: ih.ImportCSV,
		}))
		mux.HandleFunc(prefix+"/google_sheet", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: ih.ImportSheet,
		}))
	}
	mux.HandleFunc("/job_intake/rows", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.ImportRows,
	}))

	// Postings
	ph := PostingsHandler{Postings: d.Postings, Hub: d.Hub, CfgVal: d.CfgVal}
	for _, prefix := range []string{"/job_intake", "/jobs"} {
		mux.HandleFunc(prefix, methodMux(map[string]http.HandlerFunc{
			http.MethodGet: ph.List,
		}))
		mux.HandleFunc(prefix+"/", methodMux(map[string]http.HandlerFunc{
			http.MethodGet:    ph.GetByPath,
			http.MethodDelete: ph.DeleteByPath, // expects {prefix}/{id}
		}))
	}

	// ATS enrichment
	ah := AtsHandler{Resolver: d.Ats}
	mux.HandleFunc("/ats/resolve", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Resolve,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/postgres", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetPostgresPassword,
		http.MethodDelete: sh.DeletePostgresPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Ops
	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))
	mux.Handle("/metrics", metrics.Handler())

	return mux
}
