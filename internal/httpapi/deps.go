package httpapi

import (
	"sync/atomic"

	"jobintake-engine/internal/ats"
	"jobintake-engine/internal/config"
	"jobintake-engine/internal/events"
	"jobintake-engine/internal/importer"
	"jobintake-engine/internal/postings"
	"jobintake-engine/internal/store"
)

type Deps struct {
	DB *store.DB

	Importer *importer.Service
	Postings *postings.Service
	Ats      *ats.Resolver

	Hub *events.Hub

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
