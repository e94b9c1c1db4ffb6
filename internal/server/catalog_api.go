package server

import (
	"net/http"

	catalogservices "github.com/lodestarhq/lodestar/modules/catalog/services"
)

func handleCatalogReload(catalog catalogservices.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalog.Reload(r.Context()); err != nil {
			writeServiceError(w, err, "CATALOG_RELOAD_FAILED")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
