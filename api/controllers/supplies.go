package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Tag-Take/tagandtake-backend-sub000/api/responses"
	"github.com/Tag-Take/tagandtake-backend-sub000/api/validators"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/supplies"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

type createSupplyOrderRequest struct {
	StoreID  string `json:"store_id" validate:"required,uuid4"`
	TagCount int    `json:"tag_count" validate:"required,min=1,max=500"`
}

// CreateSupplyOrder places a tag supply order for a store. Tags are
// provisioned only once the order's payment is confirmed.
func CreateSupplyOrder(svc supplies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplies service unavailable"))
			return
		}

		var body createSupplyOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID, err := uuid.Parse(body.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store_id must be a valid uuid"))
			return
		}

		order, err := svc.CreateOrder(r.Context(), supplies.CreateOrderInput{StoreID: storeID, TagCount: body.TagCount})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetSupplyOrder returns a single supply order.
func GetSupplyOrder(svc supplies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplies service unavailable"))
			return
		}

		orderID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListSupplyOrders returns a store's supply orders, newest first.
func ListSupplyOrders(svc supplies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplies service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("store_id"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store_id query parameter is required"))
			return
		}
		storeID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store_id must be a valid uuid"))
			return
		}

		list, err := svc.ListOrders(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
