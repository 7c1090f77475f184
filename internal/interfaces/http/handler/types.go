package httphandler

import (
	"time"

	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

// Amounts are exchanged as decimal strings of whole units, ie. "1.5".

type errorReply struct {
	Error string `json:"error"`
}

type createOfferRequest struct {
	MakerAsset   string `json:"maker_asset" binding:"required"`
	MakerAmount  string `json:"maker_amount" binding:"required"`
	TakerAsset   string `json:"taker_asset" binding:"required"`
	TakerAmount  string `json:"taker_amount" binding:"required"`
	Expiry       int64  `json:"expiry" binding:"required"`
	AllowedTaker string `json:"allowed_taker"`
	// Value is the native amount attached to the call.
	Value string `json:"value"`
}

type createOfferReply struct {
	ID uint64 `json:"id"`
}

type acceptOfferRequest struct {
	Value string `json:"value"`
}

type offerReply struct {
	ID                uint64 `json:"id"`
	Maker             string `json:"maker"`
	MakerAsset        string `json:"maker_asset"`
	MakerAmount       string `json:"maker_amount"`
	TakerAsset        string `json:"taker_asset"`
	TakerAmount       string `json:"taker_amount"`
	Expiry            int64  `json:"expiry"`
	AllowedTaker      string `json:"allowed_taker,omitempty"`
	Stake             string `json:"stake"`
	Status            string `json:"status"`
	CreatedAt         int64  `json:"created_at"`
	CancelRequestedAt int64  `json:"cancel_requested_at,omitempty"`
	CancelDeadline    int64  `json:"cancel_deadline,omitempty"`
	Taker             string `json:"taker,omitempty"`
	MakerFee          string `json:"maker_fee,omitempty"`
	TakerFee          string `json:"taker_fee,omitempty"`
	SettledAt         int64  `json:"settled_at,omitempty"`
	ClosedAt          int64  `json:"closed_at,omitempty"`
}

type offerPageReply struct {
	Offers []offerReply `json:"offers"`
	Total  uint64       `json:"total"`
}

type offerIDsReply struct {
	IDs []uint64 `json:"ids"`
}

type profileReply struct {
	Account         string `json:"account"`
	TradesCompleted uint64 `json:"trades_completed"`
	TotalVolume     string `json:"total_volume"`
	OffersCancelled uint64 `json:"offers_cancelled"`
	OffersExpired   uint64 `json:"offers_expired"`
	FirstTradeAt    int64  `json:"first_trade_at,omitempty"`
	Score           uint64 `json:"score"`
	CompletionScore uint64 `json:"completion_score"`
	AgeScore        uint64 `json:"age_score"`
	VolumeScore     uint64 `json:"volume_score"`
}

type paramsReply struct {
	Admin             string `json:"admin"`
	MinStake          string `json:"min_stake"`
	FeeBasisPoints    uint64 `json:"fee_basis_points"`
	FeePercentage     string `json:"fee_percentage"`
	FeeRecipient      string `json:"fee_recipient"`
	AccruedNativeFees string `json:"accrued_native_fees"`
}

type infoReply struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Date           string `json:"date"`
	CancelCooldown int64  `json:"cancel_cooldown_seconds"`
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type feeRequest struct {
	BasisPoints *uint64 `json:"basis_points" binding:"required"`
}

type accountRequest struct {
	Account string `json:"account" binding:"required"`
}

type withdrawFeesReply struct {
	Amount string `json:"amount"`
}

type webhookRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	Secret   string `json:"secret"`
}

type webhookReply struct {
	ID        string `json:"id"`
	Topic     string `json:"topic,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	IsSecured bool   `json:"is_secured,omitempty"`
}

type webhooksReply struct {
	Webhooks []webhookReply `json:"webhooks"`
}

type approveRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type balanceReply struct {
	Asset     string `json:"asset"`
	Balance   string `json:"balance"`
	Allowance string `json:"allowance,omitempty"`
}

type balancesReply struct {
	Balances []balanceReply `json:"balances"`
}

type offerInfo struct {
	*domain.Offer
	cooldown time.Duration
}

func (i offerInfo) toReply() offerReply {
	o := i.Offer
	reply := offerReply{
		ID:                o.ID,
		Maker:             o.Maker.String(),
		MakerAsset:        o.MakerAsset.String(),
		MakerAmount:       mathutil.FromUnits(o.MakerAmount),
		TakerAsset:        o.TakerAsset.String(),
		TakerAmount:       mathutil.FromUnits(o.TakerAmount),
		Expiry:            o.Expiry,
		AllowedTaker:      o.AllowedTaker.String(),
		Stake:             mathutil.FromUnits(o.Stake),
		Status:            o.Status.String(),
		CreatedAt:         o.CreatedAt,
		CancelRequestedAt: o.CancelRequestedAt,
		CancelDeadline:    o.CancelDeadline(i.cooldown),
		Taker:             o.Taker.String(),
		SettledAt:         o.SettledAt,
		ClosedAt:          o.ClosedAt,
	}
	if o.IsSettled() {
		reply.MakerFee = mathutil.FromUnits(o.MakerFee)
		reply.TakerFee = mathutil.FromUnits(o.TakerFee)
	}
	return reply
}

type profileInfo struct {
	*application.ProfileInfo
}

func (i profileInfo) toReply() profileReply {
	p := i.Profile
	return profileReply{
		Account:         p.Account.String(),
		TradesCompleted: p.TradesCompleted,
		TotalVolume:     mathutil.FromUnits(p.TotalVolume),
		OffersCancelled: p.OffersCancelled,
		OffersExpired:   p.OffersExpired,
		FirstTradeAt:    p.FirstTradeAt,
		Score:           i.Score,
		CompletionScore: i.Breakdown.Completion,
		AgeScore:        i.Breakdown.Age,
		VolumeScore:     i.Breakdown.Volume,
	}
}

type paramsInfo struct {
	*domain.Params
}

func (i paramsInfo) toReply() paramsReply {
	p := i.Params
	return paramsReply{
		Admin:             p.Admin.String(),
		MinStake:          mathutil.FromUnits(p.MinStake),
		FeeBasisPoints:    p.FeeBasisPoints,
		FeePercentage:     mathutil.BasisPointsToPercentage(p.FeeBasisPoints),
		FeeRecipient:      p.FeeRecipient.String(),
		AccruedNativeFees: mathutil.FromUnits(p.AccruedNativeFees),
	}
}
