// sync.go holds the Altair sync-committee types.
package eth

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
	fieldparams "github.com/sentrychain/beacon-stf/config/fieldparams"
	"github.com/sentrychain/beacon-stf/config/params"
)

// SyncCommittee is the fixed-size set of validators responsible for
// attesting to chain liveness between slots. Rotated every
// EPOCHS_PER_SYNC_COMMITTEE_PERIOD.
type SyncCommittee struct {
	Pubkeys         [][]byte
	AggregatePubkey []byte
}

// Copy returns a deep copy of c.
func (c *SyncCommittee) Copy() *SyncCommittee {
	if c == nil {
		return nil
	}
	pubkeys := make([][]byte, len(c.Pubkeys))
	for i, pk := range c.Pubkeys {
		pubkeys[i] = append([]byte(nil), pk...)
	}
	return &SyncCommittee{
		Pubkeys:         pubkeys,
		AggregatePubkey: append([]byte(nil), c.AggregatePubkey...),
	}
}

// HashTreeRootWith merkleizes the sync committee: a vector of the active
// config's SyncCommitteeSize pubkey roots, followed by the aggregate pubkey root.
func (c *SyncCommittee) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()

	pubkeysIdx := hh.Index()
	if uint64(len(c.Pubkeys)) != params.BeaconConfig().SyncCommitteeSize {
		return errors.Errorf("sync committee has wrong pubkey count: %d", len(c.Pubkeys))
	}
	for _, pk := range c.Pubkeys {
		if len(pk) != fieldparams.BLSPubkeyLength {
			return errors.Errorf("sync committee pubkey has wrong length: %d", len(pk))
		}
		hh.PutBytes(pk)
	}
	hh.Merkleize(pubkeysIdx)

	if len(c.AggregatePubkey) != fieldparams.BLSPubkeyLength {
		return errors.Errorf("sync committee aggregate pubkey has wrong length: %d", len(c.AggregatePubkey))
	}
	hh.PutBytes(c.AggregatePubkey)

	hh.Merkleize(idx)
	return nil
}

// SyncAggregate is the block-body operation carrying the current sync
// committee's attestation to the previous slot's block.
type SyncAggregate struct {
	SyncCommitteeBits      bitfield.Bitvector512
	SyncCommitteeSignature []byte
}
