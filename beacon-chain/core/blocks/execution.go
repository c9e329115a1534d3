package blocks

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// ProcessExecutionPayload validates payload against st's bookkeeping (randao
// mix, timestamp, and, once the merge has happened, parent hash continuity)
// and caches its header for the next block to build on.
func ProcessExecutionPayload(st *state.BeaconState, payload *eth.ExecutionPayload) error {
	if payload == nil {
		return errors.New("nil execution payload")
	}
	if isMergeTransitionComplete(st) {
		prev := st.LatestExecutionPayloadHeader()
		if !bytes.Equal(payload.ParentHash, prev.BlockHash) {
			return errors.New("execution payload parent hash does not match latest header")
		}
	}

	randaoMix, err := helpers.RandaoMix(st, coretime.CurrentEpoch(st))
	if err != nil {
		return err
	}
	if !bytes.Equal(payload.PrevRandao, randaoMix) {
		return errors.New("execution payload prev_randao does not match randao mix")
	}

	wantTimestamp := st.GenesisTime() + uint64(st.Slot())*params.BeaconConfig().SecondsPerSlot
	if payload.Timestamp != wantTimestamp {
		return errors.New("execution payload timestamp does not match slot")
	}

	return st.SetLatestExecutionPayloadHeader(payload.Header())
}

// isMergeTransitionComplete reports whether st has already adopted a
// non-empty execution payload header, the point after which every
// subsequent payload's parent hash must chain from the last.
func isMergeTransitionComplete(st *state.BeaconState) bool {
	h := st.LatestExecutionPayloadHeader()
	if h == nil {
		return false
	}
	return len(h.BlockHash) > 0 && !isZero(h.BlockHash)
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
