package httphandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/interfaces/http/middleware"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

// AdminHandler serves the administrative operations. The caller is checked
// against the stored administrator by the application layer.
type AdminHandler struct {
	adminSvc application.AdminService
}

// NewAdminHandler is a constructor function returning an AdminHandler.
func NewAdminHandler(adminSvc application.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc}
}

func (h *AdminHandler) UpdateMinStake(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}

	params, err := h.adminSvc.UpdateMinStake(
		c.Request.Context(), middleware.Account(c), amount,
	)
	h.replyParams(c, params, err)
}

func (h *AdminHandler) UpdateFee(c *gin.Context) {
	var req feeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	params, err := h.adminSvc.UpdateFeeBasisPoints(
		c.Request.Context(), middleware.Account(c), *req.BasisPoints,
	)
	h.replyParams(c, params, err)
}

func (h *AdminHandler) UpdateFeeRecipient(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	params, err := h.adminSvc.UpdateFeeRecipient(
		c.Request.Context(), middleware.Account(c), domain.Account(req.Account),
	)
	h.replyParams(c, params, err)
}

func (h *AdminHandler) TransferAdmin(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	params, err := h.adminSvc.TransferAdmin(
		c.Request.Context(), middleware.Account(c), domain.Account(req.Account),
	)
	h.replyParams(c, params, err)
}

func (h *AdminHandler) WithdrawFees(c *gin.Context) {
	amount, err := h.adminSvc.WithdrawFees(
		c.Request.Context(), middleware.Account(c),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawFeesReply{Amount: mathutil.FromUnits(amount)})
}

func (h *AdminHandler) AddWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}

	id, err := h.adminSvc.AddWebhook(
		c.Request.Context(), middleware.Account(c), application.Webhook{
			Topic:    req.Topic,
			Endpoint: req.Endpoint,
			Secret:   req.Secret,
		},
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, webhookReply{ID: id})
}

func (h *AdminHandler) RemoveWebhook(c *gin.Context) {
	if err := h.adminSvc.RemoveWebhook(
		c.Request.Context(), middleware.Account(c), c.Param("id"),
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListWebhooks(c *gin.Context) {
	hooks, err := h.adminSvc.ListWebhooks(
		c.Request.Context(), middleware.Account(c), c.Query("topic"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	reply := webhooksReply{Webhooks: make([]webhookReply, 0, len(hooks))}
	for _, hook := range hooks {
		reply.Webhooks = append(reply.Webhooks, webhookReply{
			ID:        hook.Id,
			Topic:     hook.Topic,
			Endpoint:  hook.Endpoint,
			IsSecured: hook.IsSecured,
		})
	}
	c.JSON(http.StatusOK, reply)
}

func (h *AdminHandler) replyParams(
	c *gin.Context, params *domain.Params, err error,
) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, paramsInfo{params}.toReply())
}
