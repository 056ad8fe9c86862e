package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weforyou/ledger/internal/domain"
	"github.com/weforyou/ledger/internal/ledger"
	"github.com/weforyou/ledger/internal/middleware"
)

type donationRequest struct {
	CampaignID  *string      `json:"campaign_id"`
	Amount      domain.Money `json:"amount"`
	Currency    string       `json:"currency"`
	Method      string       `json:"method"`
	IsAnonymous bool         `json:"is_anonymous"`
	Want80G     bool         `json:"want_80g"`
	PAN         string       `json:"pan"`
	LegalName   string       `json:"legal_name"`
	Address     string       `json:"address"`
}

func (req donationRequest) intent(r *http.Request, userID string) domain.DonationIntent {
	campaignID := req.CampaignID
	if campaignID != nil && *campaignID == "" {
		campaignID = nil
	}
	return domain.DonationIntent{
		CampaignID:  campaignID,
		UserID:      userID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Method:      req.Method,
		IsAnonymous: req.IsAnonymous,
		Want80G:     req.Want80G,
		PAN:         req.PAN,
		LegalName:   req.LegalName,
		Address:     req.Address,
		Country:     middleware.CountryFromContext(r.Context()),
	}
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	checkout, err := a.Ledger.CreateDonation(r.Context(), req.intent(r, a.currentUserID(r)))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, checkout)
}

// DonationsGeneral opens an untied donation. The amount comes from the query
// string in rupees; the body may carry the 80G details.
func (a *App) DonationsGeneral(w http.ResponseWriter, r *http.Request) {
	amount, err := domain.ParseMoney(r.URL.Query().Get("amount"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req donationRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.CampaignID = nil
	req.Amount = amount
	in := req.intent(r, a.currentUserID(r))
	in.Type = domain.DonationGeneral
	checkout, err := a.Ledger.CreateDonation(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, checkout)
}

func (a *App) DonationsVerify(w http.ResponseWriter, r *http.Request) {
	var cb ledger.PaymentCallback
	if !a.decode(w, r, &cb) {
		return
	}
	if cb.OrderID == "" || cb.PaymentID == "" || cb.Signature == "" {
		a.fail(w, r, domain.Invalid("razorpay_signature", "order id, payment id and signature are required"))
		return
	}
	d, err := a.Ledger.VerifyDonation(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r), cb)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": d.Status, "donation": d})
}

func (a *App) DonationsMine(w http.ResponseWriter, r *http.Request) {
	status := domain.DonationStatus(r.URL.Query().Get("status"))
	items, err := a.Ledger.ListMyDonations(r.Context(), a.currentUserID(r), status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Donation{}
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) DonationsReceipt(w http.ResponseWriter, r *http.Request) {
	p := a.principal(r)
	doc, err := a.Receipts.Fetch(r.Context(), chi.URLParam(r, "id"), p.UserID, isAdmin(p))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

// RazorpayWebhook is unauthenticated; the body signature is the credential.
func (a *App) RazorpayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}
	res, err := a.Ledger.HandleWebhook(r.Context(), body, r.Header.Get("X-Razorpay-Signature"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
