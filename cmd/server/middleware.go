package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linnemanlabs/go-core/httpmw"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/acuity/internal/authmw"
	ac "github.com/linnemanlabs/acuity/internal/cfg"
	"github.com/linnemanlabs/acuity/internal/ratelimit"
	"github.com/linnemanlabs/acuity/internal/triage"
	"github.com/linnemanlabs/acuity/internal/triageapi"
)

// apiRouter builds the API listener's router with the triage routes
// registered. The router-wide body cap matches the predict limit so the
// handler decides between 400 and 413.
func apiRouter(L log.Logger, svc triageapi.TriageService, c ac.Config, observe func(result string)) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(httpmw.AnnotateHTTPRoute)
	r.Use(httpmw.AccessLog())
	r.Use(httpmw.MaxBody(triageapi.MaxBodyBytes))

	triageapi.New(L, svc, observe).RegisterRoutes(r, predictMiddleware(c, observe)...)
	return r
}

// predictMiddleware builds the /predict-only stack from config. The rate
// limiter runs first so unauthenticated floods are shed cheaply.
func predictMiddleware(c ac.Config, observe func(result string)) []func(http.Handler) http.Handler {
	var mw []func(http.Handler) http.Handler

	if c.RateLimited() {
		rl := ratelimit.New(c.RateLimitRPS, c.RateLimitBurst)
		rl.OnLimited = func(*http.Request) { observe(triage.ResultRateLimited) }
		mw = append(mw, rl.Middleware)
	}

	if tokens := c.APITokens(); len(tokens) > 0 {
		onReject := func(*http.Request) { observe(triage.ResultUnauthorized) }
		mw = append(mw, authmw.BearerToken(onReject, tokens...))
	}

	return mw
}
