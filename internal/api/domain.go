package api

import (
	"github.com/oakmoor/scout/internal/runs"
)

// Domain holds the domain systems that comprise the API.
type Domain struct {
	Runs runs.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	runsSystem := runs.New(
		runtime.Database.Connection(),
		runtime.Resolver,
		runtime.Searcher,
		runtime.Extractor,
		runtime.Logger,
	)

	return &Domain{
		Runs: runsSystem,
	}
}
