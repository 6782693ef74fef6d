package collection

import "net/http"

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" /{$}", h.handleHome)
	mux.HandleFunc(http.MethodGet+" /set/{code}", h.handleSetDetail)
	mux.HandleFunc(http.MethodPost+" /set/{code}", h.handleCollect)
	mux.HandleFunc("/", h.handleNotFound)
}
