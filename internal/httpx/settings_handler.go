package httpx

import (
	"net/http"
	"sort"
)

func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	all, err := a.Settings.All(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// putSettings stores each key it is given; keys left out are untouched.
func (a *API) putSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := a.Settings.Set(ctx, k, req[k]); err != nil {
			a.writeError(w, r, err)
			return
		}
	}

	all, err := a.Settings.All(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}
