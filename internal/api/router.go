package api

import (
	"net/http"

	"github.com/cakedek/myitemlibrary/internal/config"
	"github.com/cakedek/myitemlibrary/internal/ratelimit"
	"github.com/cakedek/myitemlibrary/internal/roster"
	"github.com/cakedek/myitemlibrary/internal/store"
)

// NewRouter creates the API router with all endpoints registered behind the
// gateway. Methods are checked by each handler, not by the mux, so that a
// wrong method on an unauthenticated request still yields 401.
func NewRouter(cfg *config.Config, s store.Store, players *roster.Memory, limiter *ratelimit.Limiter, recorder ratelimit.Recorder) http.Handler {
	mux := http.NewServeMux()
	gw := NewGateway(cfg, limiter, recorder)

	itemsHandler := &ItemsHandler{Store: s}
	addHandler := &AddHandler{Store: s}
	if players != nil {
		addHandler.Roster = players
	}

	mux.Handle("/add-item", gw.Protect("/add-item", http.HandlerFunc(addHandler.Add)))
	mux.Handle("/add-item-all", gw.Protect("/add-item-all", http.HandlerFunc(addHandler.AddAll)))
	mux.Handle("/add-item-online", gw.Protect("/add-item-online", http.HandlerFunc(addHandler.AddOnline)))
	mux.Handle("/items", gw.Protect("/items", http.HandlerFunc(itemsHandler.List)))
	mux.Handle("/items/", gw.Protect("/items/{player}", http.HandlerFunc(itemsHandler.ListByPlayer)))
	mux.Handle("/item/", gw.Protect("/item/{id}", http.HandlerFunc(itemsHandler.Operations)))

	if cfg.Presence.Enabled && players != nil {
		presence := &roster.PresenceHandler{Roster: players}
		mux.Handle("/presence", gw.Protect("/presence", getOnly(presence)))
	}

	mux.HandleFunc("/", notFound)

	return SecurityHeaders(cfg.CORS, cfg.Security)(mux)
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
