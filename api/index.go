package handler

import (
	"net/http"

	"multinvest-backend/bootstrap"
	"multinvest-backend/internal/interfaces/router"
)

var h http.Handler

func init() {
	app, err := bootstrap.New()
	if err != nil {
		panic("app create: " + err.Error())
	}
	h = router.Handler(app)
}

// Handler is the serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()
	h.ServeHTTP(w, r)
}
