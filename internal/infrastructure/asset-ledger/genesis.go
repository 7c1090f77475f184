package assetledger

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

// Genesis maps every account to its initial balances. Assets are in their
// string form ("native" or "token:<id>") and amounts are decimal strings in
// whole units, ie. "1.5" is 150000000 units.
type Genesis map[string]map[string]string

// LoadGenesis reads the genesis balances from the given json file.
func LoadGenesis(path string) (Genesis, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}

	genesis := make(Genesis)
	if err := json.Unmarshal(buf, &genesis); err != nil {
		return nil, fmt.Errorf("failed to parse genesis file: %w", err)
	}
	return genesis, nil
}

// NewLedgerFromGenesis returns an in-memory ledger with the given initial
// balances.
func NewLedgerFromGenesis(genesis Genesis) (*Ledger, error) {
	ledger := NewLedger()
	if err := ledger.creditGenesis(genesis); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (l *Ledger) creditGenesis(genesis Genesis) error {
	for account, assets := range genesis {
		for assetStr, amountStr := range assets {
			asset, err := domain.ParseAsset(assetStr)
			if err != nil {
				return fmt.Errorf("genesis of %s: %w", account, err)
			}
			amount, err := mathutil.ToUnits(amountStr)
			if err != nil {
				return fmt.Errorf(
					"genesis of %s: invalid amount %q for %s: %w",
					account, amountStr, asset, err,
				)
			}
			if err := l.Credit(domain.Account(account), asset, amount); err != nil {
				return fmt.Errorf("genesis of %s: %w", account, err)
			}
		}
		log.Debugf("ledger: loaded genesis balances of %s", account)
	}
	return nil
}
