package httpx

import (
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-juice-pos/internal/profiles"
)

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	var roles []profiles.Role
	for _, v := range r.URL.Query()["role"] {
		role, err := profiles.ToRole(v)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		roles = append(roles, role)
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	ps, err := a.Profiles.List(ctx, roles...)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// createUser adds employees and customers. There is only one owner.
func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var n profiles.NewProfile
	if err := decodeJSON(w, r, &n); err != nil {
		a.writeError(w, r, err)
		return
	}
	if n.Role == "" {
		n.Role = profiles.RoleEmployee
	}
	if n.Role == profiles.RoleOwner {
		a.writeError(w, r, fmt.Errorf("%w: owner accounts cannot be created", errBadRequest))
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Profiles.Create(ctx, n)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Profiles.Get(ctx, id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var c profiles.Changes
	if err := decodeJSON(w, r, &c); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Profiles.Update(ctx, id, c)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if id == principal(r).UserID {
		a.writeError(w, r, errDeleteSelf)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	if err := a.Profiles.Delete(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
