package state

import (
	"github.com/sentrychain/beacon-stf/beacon-chain/state/stateutils"
	"github.com/sentrychain/beacon-stf/config/params"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	"github.com/sentrychain/beacon-stf/runtime/version"
)

// UpgradeToAltair restructures a Phase0 state into an Altair one: the
// attestation lists are dropped (core/altair.UpgradeToAltair translates
// pre's previous-epoch attestations into post's participation flags after
// this returns), the new Altair-only fields start zeroed, and the fork
// record's previous/current version split at the boundary epoch. Returns a
// fresh state in transient mode (the caller restores pre's mode); pre's
// fields are untouched.
func UpgradeToAltair(pre *BeaconState) (*BeaconState, error) {
	cfg := params.BeaconConfig()
	n := len(pre.validators)
	post := &BeaconState{
		ver:                         version.Altair,
		cfg:                         cfg,
		// Built transient so the caller (core/altair.UpgradeToAltair) can
		// seed the new sync committees with ordinary setters; it restores
		// pre's mode once those writes are done.
		mode:                        ModeTransient,
		sharedRef:                   pre.sharedRef,
		genesisTime:                 pre.genesisTime,
		genesisValidatorsRoot:       pre.genesisValidatorsRoot,
		slot:                        pre.slot,
		fork:                        &eth.Fork{PreviousVersion: pre.fork.CurrentVersion, CurrentVersion: cfg.AltairForkVersion, Epoch: cfg.AltairForkEpoch},
		latestBlockHeader:           pre.latestBlockHeader,
		blockRoots:                  pre.blockRoots,
		stateRoots:                  pre.stateRoots,
		historicalRoots:             pre.historicalRoots,
		eth1Data:                    pre.eth1Data,
		eth1DataVotes:               pre.eth1DataVotes,
		eth1DepositIndex:            pre.eth1DepositIndex,
		validators:                  pre.validators,
		balances:                    pre.balances,
		randaoMixes:                 pre.randaoMixes,
		slashings:                   pre.slashings,
		previousEpochParticipation:  make([]byte, n),
		currentEpochParticipation:   make([]byte, n),
		inactivityScores:            make([]uint64, n),
		justificationBits:           pre.justificationBits,
		previousJustifiedCheckpoint: pre.previousJustifiedCheckpoint,
		currentJustifiedCheckpoint:  pre.currentJustifiedCheckpoint,
		finalizedCheckpoint:         pre.finalizedCheckpoint,
	}
	post.pubkeyToIndex = stateutils.BuildPubkeyIndexMap(post.validators)
	// post aliases pre's carried-over slices; sharing the refcount makes
	// post's first in-place write detach instead of clobbering pre.
	pre.sharedRef.AddRef()
	return post, nil
}

// UpgradeToBellatrix restructures an Altair state into a Bellatrix one: the
// only new field, the execution payload header, starts as the all-zero
// "empty" header until the first execution block fills it in.
func UpgradeToBellatrix(pre *BeaconState) (*BeaconState, error) {
	cfg := params.BeaconConfig()
	post := &BeaconState{
		ver:                          version.Bellatrix,
		cfg:                          cfg,
		// See UpgradeToAltair: left transient for the caller's setters,
		// restored to pre's mode afterward.
		mode:                         ModeTransient,
		sharedRef:                    pre.sharedRef,
		genesisTime:                  pre.genesisTime,
		genesisValidatorsRoot:        pre.genesisValidatorsRoot,
		slot:                         pre.slot,
		fork:                         &eth.Fork{PreviousVersion: pre.fork.CurrentVersion, CurrentVersion: cfg.BellatrixForkVersion, Epoch: cfg.BellatrixForkEpoch},
		latestBlockHeader:            pre.latestBlockHeader,
		blockRoots:                   pre.blockRoots,
		stateRoots:                   pre.stateRoots,
		historicalRoots:              pre.historicalRoots,
		eth1Data:                     pre.eth1Data,
		eth1DataVotes:                pre.eth1DataVotes,
		eth1DepositIndex:             pre.eth1DepositIndex,
		validators:                   pre.validators,
		balances:                     pre.balances,
		randaoMixes:                  pre.randaoMixes,
		slashings:                    pre.slashings,
		previousEpochParticipation:   pre.previousEpochParticipation,
		currentEpochParticipation:    pre.currentEpochParticipation,
		inactivityScores:             pre.inactivityScores,
		currentSyncCommittee:         pre.currentSyncCommittee,
		nextSyncCommittee:            pre.nextSyncCommittee,
		latestExecutionPayloadHeader: &eth.ExecutionPayloadHeader{},
		justificationBits:            pre.justificationBits,
		previousJustifiedCheckpoint:  pre.previousJustifiedCheckpoint,
		currentJustifiedCheckpoint:   pre.currentJustifiedCheckpoint,
		finalizedCheckpoint:          pre.finalizedCheckpoint,
	}
	post.pubkeyToIndex = stateutils.BuildPubkeyIndexMap(post.validators)
	// post aliases pre's carried-over slices; sharing the refcount makes
	// post's first in-place write detach instead of clobbering pre.
	pre.sharedRef.AddRef()
	return post, nil
}
