package ports

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

// AssetTransfer moves assets between accounts and the escrow.
type AssetTransfer interface {
	// TransferIn moves the given amount of asset from the account to the
	// escrow. It fails if balance or allowance are insufficient.
	TransferIn(
		ctx context.Context, asset domain.Asset, from domain.Account, amount uint64,
	) error
	// TransferOut moves the given amount of asset from the escrow to the
	// account. A zero amount is a no-op.
	TransferOut(
		ctx context.Context, asset domain.Asset, to domain.Account, amount uint64,
	) error
}

// TransferReverter is optionally implemented by an AssetTransfer to undo
// transfers already executed when a later leg of the same operation fails.
// Unlike a plain transfer in the opposite direction, reverting a TransferIn
// restores the consumed allowance.
type TransferReverter interface {
	RevertTransferIn(
		ctx context.Context, asset domain.Asset, from domain.Account, amount uint64,
	) error
	RevertTransferOut(
		ctx context.Context, asset domain.Asset, to domain.Account, amount uint64,
	) error
}
