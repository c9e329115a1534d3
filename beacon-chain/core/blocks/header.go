package blocks

import (
	"github.com/pkg/errors"
	coreblocks "github.com/sentrychain/beacon-stf/consensus-types/blocks"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessBlockHeader verifies block's envelope against st (slot, parent
// root, proposer) and replaces st's cached latest_block_header with the
// new, still-state-root-zeroed header; process_slot fills the state root in
// on the following slot's transition.
func ProcessBlockHeader(st *state.BeaconState, b coreblocks.BeaconBlock, proposerIndex uint64) error {
	if b == nil {
		return errors.New("nil block")
	}
	if b.Slot() != st.Slot() {
		return errors.Errorf("block slot %d does not match state slot %d", b.Slot(), st.Slot())
	}
	if b.Slot() <= st.LatestBlockHeader().Slot {
		return errors.Errorf("block slot %d is not later than latest header slot %d", b.Slot(), st.LatestBlockHeader().Slot)
	}
	if uint64(b.ProposerIndex()) != proposerIndex {
		return errors.Errorf("proposer index %d does not match expected %d", b.ProposerIndex(), proposerIndex)
	}

	parentHeaderRoot, err := st.LatestBlockHeader().HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not hash latest block header")
	}
	if string(b.ParentRoot()) != string(parentHeaderRoot[:]) {
		return errors.New("block parent root does not match latest block header root")
	}

	proposer, err := st.ValidatorAtIndex(b.ProposerIndex())
	if err != nil {
		return errors.Wrap(err, "could not fetch proposer")
	}
	if proposer.Slashed {
		return errors.New("proposer has been slashed")
	}

	bodyRoot, err := b.Body().HashTreeRoot()
	if err != nil {
		return errors.Wrap(err, "could not hash block body")
	}

	return st.SetLatestBlockHeader(&eth.BeaconBlockHeader{
		Slot:          b.Slot(),
		ProposerIndex: b.ProposerIndex(),
		ParentRoot:    b.ParentRoot(),
		StateRoot:     make([]byte, 32),
		BodyRoot:      bodyRoot[:],
	})
}
