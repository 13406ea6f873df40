package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Tag-Take/tagandtake-backend-sub000/api/responses"
	"github.com/Tag-Take/tagandtake-backend-sub000/api/validators"
	"github.com/Tag-Take/tagandtake-backend-sub000/internal/listings"
	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

type createListingRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid4"`
	TagID  string `json:"tag_id" validate:"required,uuid4"`
}

type listingReasonRequest struct {
	ReasonID string `json:"reason_id" validate:"required,uuid4"`
}

type replaceTagRequest struct {
	NewTagID string `json:"new_tag_id" validate:"required,uuid4"`
}

type collectRequest struct {
	Pin string `json:"pin" validate:"required,min=4,max=6,numeric"`
}

// CreateListing pairs an item with a physical tag and puts it on sale.
func CreateListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		var body createListingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(body.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item_id must be a valid uuid"))
			return
		}
		tagID, err := uuid.Parse(body.TagID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "tag_id must be a valid uuid"))
			return
		}

		listing, err := svc.Create(r.Context(), listings.CreateListingInput{ItemID: itemID, TagID: tagID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// GetListing returns an active listing together with its price breakdown.
func GetListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		listingID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// RecallListing withdraws an active listing so the owner can collect the item.
func RecallListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		listingID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body listingReasonRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reasonID, err := uuid.Parse(body.ReasonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reason_id must be a valid uuid"))
			return
		}

		recalled, err := svc.Recall(r.Context(), listings.RecallInput{ListingID: listingID, ReasonID: reasonID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recalled)
	}
}

// DelistListing takes an active listing down and returns the item to the pool.
func DelistListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		listingID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body listingReasonRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reasonID, err := uuid.Parse(body.ReasonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reason_id must be a valid uuid"))
			return
		}

		if err := svc.Delist(r.Context(), listings.DelistInput{ListingID: listingID, ReasonID: reasonID}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// ReplaceListingTag swaps the physical tag on an active listing.
func ReplaceListingTag(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		listingID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body replaceTagRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		newTagID, err := uuid.Parse(body.NewTagID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "new_tag_id must be a valid uuid"))
			return
		}

		if err := svc.ReplaceTag(r.Context(), listingID, newTagID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// CollectRecalledListing releases a recalled item against its collection pin.
func CollectRecalledListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		recalledID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body collectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Collect(r.Context(), listings.CollectInput{RecalledListingID: recalledID, Pin: body.Pin}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// RegenerateCollectionPin issues a fresh pin for a recalled listing.
func RegenerateCollectionPin(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		recalledID, err := parseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RegeneratePin(r.Context(), recalledID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
