package httpx

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-juice-pos/internal/promptpay"
	"github.com/ariefcatur/go-juice-pos/internal/settings"
	"github.com/shopspring/decimal"
)

type promptPayResp struct {
	Payload    string           `json:"payload"`
	Identifier string           `json:"identifier"`
	Kind       string           `json:"kind"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

// promptPayPayload returns the QR payload for the shop's PromptPay number.
// Without amount the payer types it in.
func (a *API) promptPayPayload(w http.ResponseWriter, r *http.Request) {
	resp, err := a.promptPay(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) promptPayImage(w http.ResponseWriter, r *http.Request) {
	resp, err := a.promptPay(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	size := promptpay.DefaultImageSize
	if v := r.URL.Query().Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 64 || size > 1024 {
			a.writeError(w, r, fmt.Errorf("%w: size must be 64-1024", errBadRequest))
			return
		}
	}

	png, err := promptpay.PNG(resp.Payload, size)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (a *API) promptPay(r *http.Request) (promptPayResp, error) {
	var amount *decimal.Decimal
	if v := r.URL.Query().Get("amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return promptPayResp{}, fmt.Errorf("%w: amount %q", errBadRequest, v)
		}
		if err := promptpay.CheckAmount(d); err != nil {
			return promptPayResp{}, err
		}
		amount = &d
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	number, err := a.Settings.Get(ctx, settings.KeyPromptPayNumber)
	if err != nil {
		return promptPayResp{}, err
	}
	if number == "" {
		return promptPayResp{}, errPromptPayUnset
	}

	id, err := promptpay.Classify(number)
	if err != nil {
		return promptPayResp{}, err
	}

	return promptPayResp{
		Payload:    promptpay.Encode(number, amount),
		Identifier: id.Digits,
		Kind:       id.Kind.String(),
		Amount:     amount,
	}, nil
}
