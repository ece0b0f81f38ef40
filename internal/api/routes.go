package api

import (
	"net/http"

	"github.com/oakmoor/scout/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Runs.Handler().Routes(),
	)
}
