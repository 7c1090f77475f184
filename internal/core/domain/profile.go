package domain

import (
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

const (
	secondsPerDay = 24 * 60 * 60

	maxCompletionScore = 80
	maxAgeScore        = 10
	maxVolumeScore     = 10
	ageScoreFullDays   = 90
)

// VolumeCap is the total volume, in units, that grants the full volume score:
// 10 whole units of native asset.
var VolumeCap = 10 * mathutil.BigOne

// TraderProfile holds the aggregate reputation counters of an account.
// Counters only ever increase.
type TraderProfile struct {
	Account         Account
	TradesCompleted uint64
	// TotalVolume is the cumulative amount received by the account across all
	// its trades, regardless of the asset.
	TotalVolume     uint64
	OffersCancelled uint64
	OffersExpired   uint64
	// FirstTradeAt is set by the first completed trade and never overwritten.
	FirstTradeAt int64
}

// ScoreBreakdown details the components of a reliability score.
type ScoreBreakdown struct {
	Completion uint64
	Age        uint64
	Volume     uint64
}

// Total returns the reliability score.
func (b ScoreBreakdown) Total() uint64 {
	return b.Completion + b.Age + b.Volume
}

// NewTraderProfile returns an empty profile for the given account.
func NewTraderProfile(account Account) *TraderProfile {
	return &TraderProfile{Account: account}
}

// RecordTrade accounts for a completed trade where the account received the
// given amount.
func (p *TraderProfile) RecordTrade(receivedAmount uint64, now int64) {
	p.TradesCompleted++
	p.TotalVolume = mathutil.SaturatingAdd(p.TotalVolume, receivedAmount)
	if p.FirstTradeAt == 0 {
		p.FirstTradeAt = now
	}
}

// RecordCancel accounts for an offer cancelled by the account.
func (p *TraderProfile) RecordCancel() {
	p.OffersCancelled++
}

// RecordExpire accounts for an offer of the account reclaimed after expiry.
func (p *TraderProfile) RecordExpire() {
	p.OffersExpired++
}

// IsEmpty returns whether the account never had any trade outcome recorded.
func (p TraderProfile) IsEmpty() bool {
	return p.TradesCompleted == 0 && p.OffersCancelled == 0 && p.OffersExpired == 0
}

// Outcomes returns the number of trade outcomes recorded on the profile.
// Every recorded outcome increments it by one, so a profile with more
// outcomes is a more recent version of the same account.
func (p TraderProfile) Outcomes() uint64 {
	return mathutil.SaturatingAdd(
		mathutil.SaturatingAdd(p.TradesCompleted, p.OffersCancelled),
		p.OffersExpired,
	)
}

// ScoreBreakdown returns the components of the reliability score at the
// given time.
func (p TraderProfile) ScoreBreakdown(now int64) ScoreBreakdown {
	total := p.Outcomes()
	if total == 0 {
		return ScoreBreakdown{}
	}

	return ScoreBreakdown{
		Completion: mathutil.MulDiv(p.TradesCompleted, maxCompletionScore, total),
		Age:        p.ageScore(now),
		Volume:     p.volumeScore(),
	}
}

// ReliabilityScore returns a score in the range [0, 100] derived from the
// completion ratio, the age of the first trade and the traded volume.
func (p TraderProfile) ReliabilityScore(now int64) uint64 {
	return p.ScoreBreakdown(now).Total()
}

func (p TraderProfile) ageScore(now int64) uint64 {
	if p.FirstTradeAt == 0 || now <= p.FirstTradeAt {
		return 0
	}
	days := uint64(now-p.FirstTradeAt) / secondsPerDay
	if days >= ageScoreFullDays {
		return maxAgeScore
	}
	return days * maxAgeScore / ageScoreFullDays
}

func (p TraderProfile) volumeScore() uint64 {
	if p.TotalVolume >= VolumeCap {
		return maxVolumeScore
	}
	return p.TotalVolume * maxVolumeScore / VolumeCap
}
