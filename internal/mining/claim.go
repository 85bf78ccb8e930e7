package mining

import (
	"math/big"

	"github.com/NARAProtocol/nara-simple-ui/internal/ledger"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// ClaimBatch is the subset of claimable epochs that fits the claim
// budget, in the order the ledger returned them.
type ClaimBatch struct {
	Epochs []uint64
	Total  *big.Int
}

// SelectClaimBatch picks the epochs to claim. The ledger rejects any
// claim whose total exceeds either the internal reward-pool counter or
// the contract's actual token balance, so the budget is the smaller of
// the two. Candidates are walked in server order with no reordering;
// zero-amount entries are skipped; the first non-fitting entry ends the
// walk. First fit, not knapsack: predictable and gas-bounded.
func SelectClaimBatch(set *ledger.ClaimableSet, pool, balance *big.Int) ClaimBatch {
	batch := ClaimBatch{Total: new(big.Int)}
	if set == nil || pool == nil || balance == nil {
		return batch
	}

	remaining := new(big.Int).Set(types.MinBig(pool, balance))
	for _, entry := range set.Entries {
		if entry.Amount == nil || entry.Amount.Sign() == 0 {
			continue
		}
		if entry.Amount.Cmp(remaining) > 0 {
			break
		}
		batch.Epochs = append(batch.Epochs, entry.Epoch)
		batch.Total.Add(batch.Total, entry.Amount)
		remaining.Sub(remaining, entry.Amount)
	}
	return batch
}
