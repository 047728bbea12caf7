package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-juice-pos/internal/catalog"
)

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	a.writeProducts(w, r, true)
}

func (a *API) listAllProducts(w http.ResponseWriter, r *http.Request) {
	a.writeProducts(w, r, false)
}

func (a *API) writeProducts(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	ps, err := a.Catalog.List(ctx, activeOnly)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Catalog.Get(ctx, id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Catalog.Create(ctx, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in catalog.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Catalog.Update(ctx, id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	if err := a.Catalog.Delete(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
