package httphandler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/interfaces/http/middleware"
)

// OfferHandler serves the lifecycle of offers and the public read-only
// views of the engine.
type OfferHandler struct {
	settlementSvc application.SettlementService
	querySvc      application.QueryService
	buildInfo     application.BuildInfo
}

// NewOfferHandler is a constructor function returning an OfferHandler.
func NewOfferHandler(
	settlementSvc application.SettlementService,
	querySvc application.QueryService,
	buildInfo application.BuildInfo,
) *OfferHandler {
	return &OfferHandler{settlementSvc, querySvc, buildInfo}
}

func (h *OfferHandler) GetInfo(c *gin.Context) {
	c.JSON(http.StatusOK, infoReply{
		Version:        h.buildInfo.Version,
		Commit:         h.buildInfo.Commit,
		Date:           h.buildInfo.Date,
		CancelCooldown: int64(h.querySvc.CancelCooldown().Seconds()),
	})
}

func (h *OfferHandler) GetParams(c *gin.Context) {
	params, err := h.querySvc.GetParams(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, paramsInfo{params}.toReply())
}

func (h *OfferHandler) ListActiveOffers(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		abortWithBadRequest(c, err)
		return
	}

	offerPage, err := h.querySvc.ListActiveOffers(c.Request.Context(), page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	offers := make([]offerReply, 0, len(offerPage.Offers))
	for _, o := range offerPage.Offers {
		offers = append(offers, h.offerInfo(o).toReply())
	}
	c.JSON(http.StatusOK, offerPageReply{Offers: offers, Total: offerPage.Total})
}

func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, err := parseOfferID(c)
	if err != nil {
		abortWithBadRequest(c, err)
		return
	}

	offer, err := h.querySvc.GetOffer(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.offerInfo(offer).toReply())
}

func (h *OfferHandler) ListAccountOffers(c *gin.Context) {
	account, err := parseAccount(c.Param("account"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ids, err := h.querySvc.ListOffersByAccount(c.Request.Context(), account)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if ids == nil {
		ids = make([]uint64, 0)
	}
	c.JSON(http.StatusOK, offerIDsReply{IDs: ids})
}

func (h *OfferHandler) GetProfile(c *gin.Context) {
	account, err := parseAccount(c.Param("account"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	info, err := h.querySvc.GetProfile(c.Request.Context(), account)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileInfo{info}.toReply())
}

func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	terms, value, err := req.toTerms()
	if err != nil {
		abortWithError(c, err)
		return
	}

	id, err := h.settlementSvc.CreateOffer(
		c.Request.Context(), middleware.Account(c), *terms, value,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createOfferReply{ID: id})
}

func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	id, err := parseOfferID(c)
	if err != nil {
		abortWithBadRequest(c, err)
		return
	}
	var req acceptOfferRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithBadRequest(c, err)
			return
		}
	}
	value, err := parseValue(req.Value)
	if err != nil {
		abortWithError(c, err)
		return
	}

	offer, err := h.settlementSvc.AcceptOffer(
		c.Request.Context(), middleware.Account(c), id, value,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.offerInfo(offer).toReply())
}

func (h *OfferHandler) RequestCancel(c *gin.Context) {
	h.transition(c, h.settlementSvc.RequestCancel)
}

func (h *OfferHandler) FinalizeCancel(c *gin.Context) {
	h.transition(c, h.settlementSvc.FinalizeCancel)
}

func (h *OfferHandler) ReclaimExpired(c *gin.Context) {
	h.transition(c, h.settlementSvc.ReclaimExpired)
}

type transitionFn func(
	ctx context.Context, caller domain.Account, offerID uint64,
) (*domain.Offer, error)

func (h *OfferHandler) transition(c *gin.Context, fn transitionFn) {
	id, err := parseOfferID(c)
	if err != nil {
		abortWithBadRequest(c, err)
		return
	}

	offer, err := fn(c.Request.Context(), middleware.Account(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.offerInfo(offer).toReply())
}

func (h *OfferHandler) offerInfo(offer *domain.Offer) offerInfo {
	return offerInfo{offer, h.querySvc.CancelCooldown()}
}
