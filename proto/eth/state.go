// state.go holds the raw per-fork BeaconState records. These are the
// "flat" representation the beacon-chain/state package's native
// implementation mutates directly in transient mode; persistent mode wraps
// them behind structural sharing instead of exposing them.
package eth

import (
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
)

// BeaconStatePhase0 is the genesis-fork state shape.
type BeaconStatePhase0 struct {
	GenesisTime                 uint64
	GenesisValidatorsRoot       []byte
	Slot                        primitives.Slot
	Fork                        *Fork
	LatestBlockHeader           *BeaconBlockHeader
	BlockRoots                  [][]byte
	StateRoots                  [][]byte
	HistoricalRoots              [][]byte
	Eth1Data                     *Eth1Data
	Eth1DataVotes                []*Eth1Data
	Eth1DepositIndex             uint64
	Validators                   []*Validator
	Balances                     []uint64
	RandaoMixes                  [][]byte
	Slashings                    []uint64
	PreviousEpochAttestations    []*PendingAttestation
	CurrentEpochAttestations     []*PendingAttestation
	JustificationBits            bitfield.Bitvector4
	PreviousJustifiedCheckpoint  *Checkpoint
	CurrentJustifiedCheckpoint   *Checkpoint
	FinalizedCheckpoint          *Checkpoint
}

// BeaconStateAltair replaces the Phase0 attestation lists with flat
// participation-flag byte vectors and adds inactivity scores and sync
// committees.
type BeaconStateAltair struct {
	GenesisTime                 uint64
	GenesisValidatorsRoot       []byte
	Slot                        primitives.Slot
	Fork                        *Fork
	LatestBlockHeader           *BeaconBlockHeader
	BlockRoots                  [][]byte
	StateRoots                  [][]byte
	HistoricalRoots              [][]byte
	Eth1Data                     *Eth1Data
	Eth1DataVotes                []*Eth1Data
	Eth1DepositIndex             uint64
	Validators                   []*Validator
	Balances                     []uint64
	RandaoMixes                  [][]byte
	Slashings                    []uint64
	PreviousEpochParticipation   []byte
	CurrentEpochParticipation    []byte
	JustificationBits            bitfield.Bitvector4
	PreviousJustifiedCheckpoint  *Checkpoint
	CurrentJustifiedCheckpoint   *Checkpoint
	FinalizedCheckpoint          *Checkpoint
	InactivityScores              []uint64
	CurrentSyncCommittee          *SyncCommittee
	NextSyncCommittee             *SyncCommittee
}

// BeaconStateBellatrix adds the cached execution payload header.
type BeaconStateBellatrix struct {
	GenesisTime                 uint64
	GenesisValidatorsRoot       []byte
	Slot                        primitives.Slot
	Fork                        *Fork
	LatestBlockHeader           *BeaconBlockHeader
	BlockRoots                  [][]byte
	StateRoots                  [][]byte
	HistoricalRoots              [][]byte
	Eth1Data                     *Eth1Data
	Eth1DataVotes                []*Eth1Data
	Eth1DepositIndex             uint64
	Validators                   []*Validator
	Balances                     []uint64
	RandaoMixes                  [][]byte
	Slashings                    []uint64
	PreviousEpochParticipation   []byte
	CurrentEpochParticipation    []byte
	JustificationBits            bitfield.Bitvector4
	PreviousJustifiedCheckpoint  *Checkpoint
	CurrentJustifiedCheckpoint   *Checkpoint
	FinalizedCheckpoint          *Checkpoint
	InactivityScores              []uint64
	CurrentSyncCommittee          *SyncCommittee
	NextSyncCommittee             *SyncCommittee
	LatestExecutionPayloadHeader  *ExecutionPayloadHeader
}
