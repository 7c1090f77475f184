package httphandler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/interfaces/http/middleware"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

// Ledger is the subset of the in-process asset ledger exposed over http.
type Ledger interface {
	Approve(account domain.Account, asset domain.Asset, amount uint64) error
	Balances(account domain.Account) map[domain.Asset]uint64
	Allowance(account domain.Account, asset domain.Asset) uint64
}

// LedgerHandler lets accounts inspect their balances and grant allowances
// to the escrow.
type LedgerHandler struct {
	ledger Ledger
}

// NewLedgerHandler is a constructor function returning a LedgerHandler.
func NewLedgerHandler(ledger Ledger) *LedgerHandler {
	return &LedgerHandler{ledger}
}

func (h *LedgerHandler) GetBalances(c *gin.Context) {
	account, err := parseAccount(c.Param("account"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	balances := h.ledger.Balances(account)
	assets := make([]domain.Asset, 0, len(balances))
	for asset := range balances {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].String() < assets[j].String()
	})

	reply := balancesReply{Balances: make([]balanceReply, 0, len(assets))}
	for _, asset := range assets {
		b := balanceReply{
			Asset:   asset.String(),
			Balance: mathutil.FromUnits(balances[asset]),
		}
		if !asset.IsNative() {
			b.Allowance = mathutil.FromUnits(h.ledger.Allowance(account, asset))
		}
		reply.Balances = append(reply.Balances, b)
	}
	c.JSON(http.StatusOK, reply)
}

func (h *LedgerHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBadRequest(c, err)
		return
	}
	asset, err := parseAsset("asset", req.Asset)
	if err != nil {
		abortWithError(c, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.ledger.Approve(middleware.Account(c), asset, amount); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
