package campaign

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-fundraise/internal/common"
	"github.com/noah-isme/backend-fundraise/internal/money"
	"github.com/noah-isme/backend-fundraise/internal/pricing"
)

// Handler serves the campaign HTTP surface. Monetary fields arrive as
// major-unit decimals and are converted to minor units at this boundary.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type pledgePayload struct {
	PledgeOption    string   `json:"pledgeOption" validate:"required,oneof=WITH_REWARDS WITHOUT_REWARDS"`
	Amount          *float64 `json:"amount" validate:"omitempty,gte=0"`
	BonusSupport    float64  `json:"bonusSupport" validate:"gte=0"`
	RewardID        *string  `json:"rewardId" validate:"omitempty,uuid"`
	ShippingCountry *string  `json:"shippingCountry" validate:"omitempty,min=2"`
	Email           string   `json:"email" validate:"omitempty,email"`
}

type donationPayload struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Email  string  `json:"email" validate:"omitempty,email"`
}

// Progress handles GET /campaigns/{id}/progress.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	out, err := h.Svc.Progress(r.Context(), campaignID)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// PreviewPledge handles POST /campaigns/{id}/pledges/quote.
func (h *Handler) PreviewPledge(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodePledge(w, r)
	if !ok {
		return
	}
	quote, err := h.Svc.PreviewPledge(r.Context(), campaignID, req)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

// RecordPledge handles POST /campaigns/{id}/pledges.
func (h *Handler) RecordPledge(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodePledge(w, r)
	if !ok {
		return
	}
	if req.Email == "" {
		common.JSONError(w, http.StatusBadRequest, "EMAIL_REQUIRED", "email is required to record a pledge", nil)
		return
	}
	out, err := h.Svc.RecordPledge(r.Context(), campaignID, req)
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}

// RecordDonation handles POST /campaigns/{id}/donations.
func (h *Handler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	var payload donationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", validationDetails(err))
		return
	}
	amount, err := money.ToMinorUnits(payload.Amount)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_AMOUNT", "amount is not a finite number", nil)
		return
	}
	out, err := h.Svc.RecordDonation(r.Context(), campaignID, DonationRequest{
		Amount: amount,
		Email:  payload.Email,
	})
	if err != nil {
		common.JSONAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}

func (h *Handler) campaignID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "campaign service not configured", nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_CAMPAIGN_ID", "campaign id must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodePledge(w http.ResponseWriter, r *http.Request) (PledgeRequest, bool) {
	var payload pledgePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return PledgeRequest{}, false
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", validationDetails(err))
		return PledgeRequest{}, false
	}

	req := PledgeRequest{
		Option:          pricing.PledgeOption(payload.PledgeOption),
		ShippingCountry: payload.ShippingCountry,
		Email:           payload.Email,
	}
	if payload.Amount != nil {
		amount, err := money.ToMinorUnits(*payload.Amount)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_AMOUNT", "amount is not a finite number", nil)
			return PledgeRequest{}, false
		}
		req.Amount = &amount
	}
	bonus, err := money.ToMinorUnits(payload.BonusSupport)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_AMOUNT", "bonusSupport is not a finite number", nil)
		return PledgeRequest{}, false
	}
	req.BonusSupport = bonus
	if payload.RewardID != nil {
		rewardID, err := uuid.Parse(*payload.RewardID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_REWARD_ID", "rewardId must be a UUID", nil)
			return PledgeRequest{}, false
		}
		req.RewardID = &rewardID
	}
	return req, true
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func validationDetails(err error) any {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
