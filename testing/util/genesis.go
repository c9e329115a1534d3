// Package util builds small, internally consistent genesis fixtures for
// tests: a deterministic set of active validators with real BLS keys, so
// transition tests can sign blocks and randao reveals the same way a
// validator client would, without pulling in a keystore or deposit flow.
package util

import (
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/config/params"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/crypto/hash"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
)

// DeterministicGenesisStatePhase0 builds a Phase0 genesis state with
// numValidators active, fully-funded validators, each keyed by a freshly
// generated BLS secret key. Returned in persistent mode, ready to be cloned
// by a state-transition call.
func DeterministicGenesisStatePhase0(numValidators int) (*state.BeaconState, []bls.SecretKey, error) {
	cfg := params.BeaconConfig()

	keys := make([]bls.SecretKey, numValidators)
	validators := make([]*eth.Validator, numValidators)
	balances := make([]uint64, numValidators)
	for i := 0; i < numValidators; i++ {
		sk := bls.RandKey()
		keys[i] = sk
		validators[i] = &eth.Validator{
			PublicKey:                  sk.PublicKey().Marshal(),
			WithdrawalCredentials:      make([]byte, 32),
			EffectiveBalance:           cfg.MaxEffectiveBalance,
			ActivationEligibilityEpoch: 0,
			ActivationEpoch:            0,
			ExitEpoch:                  eth.FarFutureEpoch,
			WithdrawableEpoch:          eth.FarFutureEpoch,
		}
		balances[i] = cfg.MaxEffectiveBalance
	}

	seed := hash.Hash([]byte("deterministic genesis seed"))
	randaoMixes := make([][]byte, cfg.EpochsPerHistoricalVector)
	for i := range randaoMixes {
		randaoMixes[i] = append([]byte(nil), seed[:]...)
	}
	blockRoots := make([][]byte, cfg.SlotsPerHistoricalRoot)
	for i := range blockRoots {
		blockRoots[i] = make([]byte, 32)
	}
	stateRoots := make([][]byte, cfg.SlotsPerHistoricalRoot)
	for i := range stateRoots {
		stateRoots[i] = make([]byte, 32)
	}
	slashings := make([]uint64, cfg.EpochsPerSlashingsVector)

	raw := &eth.BeaconStatePhase0{
		GenesisTime:           1578787200,
		GenesisValidatorsRoot: make([]byte, 32),
		Slot:                  0,
		Fork: &eth.Fork{
			PreviousVersion: cfg.GenesisForkVersion,
			CurrentVersion:  cfg.GenesisForkVersion,
			Epoch:           0,
		},
		LatestBlockHeader: &eth.BeaconBlockHeader{
			ParentRoot: make([]byte, 32),
			StateRoot:  make([]byte, 32),
			BodyRoot:   make([]byte, 32),
		},
		BlockRoots:                  blockRoots,
		StateRoots:                  stateRoots,
		Eth1Data:                    &eth.Eth1Data{DepositRoot: make([]byte, 32), BlockHash: make([]byte, 32)},
		Validators:                  validators,
		Balances:                    balances,
		RandaoMixes:                 randaoMixes,
		Slashings:                   slashings,
		JustificationBits:           bitfield.Bitvector4{0x00},
		PreviousJustifiedCheckpoint: &eth.Checkpoint{Root: make([]byte, 32)},
		CurrentJustifiedCheckpoint:  &eth.Checkpoint{Root: make([]byte, 32)},
		FinalizedCheckpoint:         &eth.Checkpoint{Root: make([]byte, 32)},
	}

	st, err := state.InitializeFromProtoPhase0(raw)
	if err != nil {
		return nil, nil, err
	}
	return st, keys, nil
}

// EmptyBodyPhase0 returns a Phase0 block body with every operation list
// empty: the minimal body a block needs to pass ProcessOperations.
func EmptyBodyPhase0(randaoReveal []byte, eth1Data *eth.Eth1Data) *eth.BeaconBlockBodyPhase0 {
	return &eth.BeaconBlockBodyPhase0{
		RandaoReveal: randaoReveal,
		Eth1Data:     eth1Data,
		Graffiti:     make([]byte, 32),
	}
}
