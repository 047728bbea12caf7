package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-juice-pos/internal/profiles"
)

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string           `json:"token"`
	User  profiles.Profile `json:"user"`
}

// register signs up customers. Staff accounts are created by the owner.
func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Profiles.Create(ctx, profiles.NewProfile{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     profiles.RoleCustomer,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	token, p, err := a.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.log().InfoContext(ctx, "login", "profile_id", p.ID, "role", p.Role)
	writeJSON(w, http.StatusOK, loginResp{Token: token, User: p})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	p := principal(r)
	if err := a.Auth.Logout(ctx, p.SessionID); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.Carts.Clear(ctx, p.SessionID); err != nil {
		a.log().WarnContext(ctx, "clear cart on logout", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) getMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Profiles.Get(ctx, principal(r).UserID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updateMe(w http.ResponseWriter, r *http.Request) {
	var c profiles.Changes
	if err := decodeJSON(w, r, &c); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Profiles.Update(ctx, principal(r).UserID, c)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
