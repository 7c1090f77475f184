package httphandler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

var (
	// ErrInvalidOfferID ...
	ErrInvalidOfferID = errors.New("offer id must be a positive integer")
	// ErrInvalidPage ...
	ErrInvalidPage = errors.New("offset and limit must be non negative integers")
)

func parseOfferID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidOfferID
	}
	return id, nil
}

func parseAmount(field, amount string) (uint64, error) {
	units, err := mathutil.ToUnits(amount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return units, nil
}

// parseValue parses the optional native value attached to a call.
func parseValue(value string) (uint64, error) {
	if value == "" {
		return 0, nil
	}
	return parseAmount("value", value)
}

func parseAsset(field, asset string) (domain.Asset, error) {
	a, err := domain.ParseAsset(asset)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("%s: %w", field, err)
	}
	return a, nil
}

func parseAccount(account string) (domain.Account, error) {
	a := domain.Account(account)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

func parsePage(c *gin.Context) (domain.Page, error) {
	var offset uint64
	limit := uint64(domain.DefaultPageSize)
	var err error
	if str := c.Query("offset"); str != "" {
		if offset, err = strconv.ParseUint(str, 10, 64); err != nil {
			return domain.Page{}, ErrInvalidPage
		}
	}
	if str := c.Query("limit"); str != "" {
		if limit, err = strconv.ParseUint(str, 10, 64); err != nil {
			return domain.Page{}, ErrInvalidPage
		}
	}
	return domain.NewPage(offset, limit), nil
}

func (r createOfferRequest) toTerms() (*domain.OfferTerms, uint64, error) {
	makerAsset, err := parseAsset("maker_asset", r.MakerAsset)
	if err != nil {
		return nil, 0, err
	}
	takerAsset, err := parseAsset("taker_asset", r.TakerAsset)
	if err != nil {
		return nil, 0, err
	}
	makerAmount, err := parseAmount("maker_amount", r.MakerAmount)
	if err != nil {
		return nil, 0, err
	}
	takerAmount, err := parseAmount("taker_amount", r.TakerAmount)
	if err != nil {
		return nil, 0, err
	}
	value, err := parseValue(r.Value)
	if err != nil {
		return nil, 0, err
	}

	return &domain.OfferTerms{
		MakerAsset:   makerAsset,
		MakerAmount:  makerAmount,
		TakerAsset:   takerAsset,
		TakerAmount:  takerAmount,
		Expiry:       r.Expiry,
		AllowedTaker: domain.Account(r.AllowedTaker),
	}, value, nil
}
