package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

type legDirection int

const (
	legIn legDirection = iota
	legOut
)

func (d legDirection) String() string {
	if d == legIn {
		return "in"
	}
	return "out"
}

type transferLeg struct {
	direction legDirection
	asset     domain.Asset
	account   domain.Account
	amount    uint64
}

func (l transferLeg) String() string {
	return fmt.Sprintf(
		"%s %d %s (%s)", l.direction, l.amount, l.asset, l.account,
	)
}

// transferPlan is the ordered list of asset movements of an operation.
// Legs are only collected while the ledger records are mutated, and executed
// all together as the very last step of the transaction body. Executed legs
// are compensated in reverse order if a later leg, or the commit, fails.
type transferPlan struct {
	legs     []transferLeg
	executed []transferLeg
}

func newTransferPlan() *transferPlan {
	return &transferPlan{}
}

func (p *transferPlan) in(
	asset domain.Asset, from domain.Account, amount uint64,
) *transferPlan {
	return p.add(legIn, asset, from, amount)
}

func (p *transferPlan) out(
	asset domain.Asset, to domain.Account, amount uint64,
) *transferPlan {
	return p.add(legOut, asset, to, amount)
}

func (p *transferPlan) add(
	direction legDirection, asset domain.Asset, account domain.Account,
	amount uint64,
) *transferPlan {
	if amount > 0 {
		p.legs = append(p.legs, transferLeg{direction, asset, account, amount})
	}
	return p
}

// totals returns the amounts moved into and out of the escrow per asset.
func (p *transferPlan) totals() (in, out map[domain.Asset]uint64) {
	in = make(map[domain.Asset]uint64)
	out = make(map[domain.Asset]uint64)
	for _, l := range p.legs {
		if l.direction == legIn {
			in[l.asset] += l.amount
		} else {
			out[l.asset] += l.amount
		}
	}
	return
}

func (p *transferPlan) execute(
	ctx context.Context, transfer ports.AssetTransfer,
) error {
	for _, leg := range p.legs {
		var err error
		if leg.direction == legIn {
			err = transfer.TransferIn(ctx, leg.asset, leg.account, leg.amount)
		} else {
			err = transfer.TransferOut(ctx, leg.asset, leg.account, leg.amount)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrTransferFailed, leg, err)
		}
		p.executed = append(p.executed, leg)
	}
	return nil
}

// rollback undoes all executed legs, most recent first. It's safe to call
// it multiple times.
func (p *transferPlan) rollback(
	ctx context.Context, transfer ports.AssetTransfer,
) {
	reverter, canRevert := transfer.(ports.TransferReverter)

	for i := len(p.executed) - 1; i >= 0; i-- {
		leg := p.executed[i]
		var err error
		switch {
		case leg.direction == legIn && canRevert:
			err = reverter.RevertTransferIn(ctx, leg.asset, leg.account, leg.amount)
		case leg.direction == legIn:
			err = transfer.TransferOut(ctx, leg.asset, leg.account, leg.amount)
		case canRevert:
			err = reverter.RevertTransferOut(ctx, leg.asset, leg.account, leg.amount)
		default:
			err = fmt.Errorf("transfer layer cannot revert outgoing transfers")
		}
		if err != nil {
			log.WithError(err).WithField("leg", leg.String()).Error(
				"failed to compensate transfer",
			)
		}
	}
	p.executed = nil
}
