package iiif

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// MakeRouter construct the basic router (no middlewares)
func MakeRouter() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", IndexHandler)
	router.HandleFunc("/{title:.*}/info.json", InfoHandler)
	router.HandleFunc("/{title:.*}/thumbnail.json", ThumbnailHandler)
	router.HandleFunc("/{title:.*}/thumbnail.jpg", ThumbnailImageHandler)
	router.HandleFunc("/{title:.*}/landing", LandingHandler)
	router.HandleFunc("/{title:.*}", RedirectHandler)

	return router
}

// NewHandler wires the router with its middlewares.
func NewHandler(repo *Repo, config *ServerConfig, logger *log.Logger) http.Handler {
	h := MakeRouter()
	h = WithRepo(h, repo)
	h = WithConfig(h, config)
	return WithRequestID(h, logger)
}
