package eth

import "github.com/sentrychain/beacon-stf/consensus-types/primitives"

// BeaconBlockBodyPhase0 is the Phase0 block body: randao reveal, eth1 vote,
// graffiti, and the five Phase0 operation lists.
type BeaconBlockBodyPhase0 struct {
	RandaoReveal      []byte
	Eth1Data          *Eth1Data
	Graffiti          []byte
	ProposerSlashings []*ProposerSlashing
	AttesterSlashings []*AttesterSlashing
	Attestations      []*Attestation
	Deposits          []*Deposit
	VoluntaryExits    []*SignedVoluntaryExit
}

// BeaconBlockBodyAltair adds the sync aggregate operation.
type BeaconBlockBodyAltair struct {
	RandaoReveal      []byte
	Eth1Data          *Eth1Data
	Graffiti          []byte
	ProposerSlashings []*ProposerSlashing
	AttesterSlashings []*AttesterSlashing
	Attestations      []*Attestation
	Deposits          []*Deposit
	VoluntaryExits    []*SignedVoluntaryExit
	SyncAggregate     *SyncAggregate
}

// BeaconBlockBodyBellatrix adds the execution payload.
type BeaconBlockBodyBellatrix struct {
	RandaoReveal      []byte
	Eth1Data          *Eth1Data
	Graffiti          []byte
	ProposerSlashings []*ProposerSlashing
	AttesterSlashings []*AttesterSlashing
	Attestations      []*Attestation
	Deposits          []*Deposit
	VoluntaryExits    []*SignedVoluntaryExit
	SyncAggregate     *SyncAggregate
	ExecutionPayload  *ExecutionPayload
}

// BeaconBlockPhase0 is a Phase0 block envelope.
type BeaconBlockPhase0 struct {
	Slot          primitives.Slot
	ProposerIndex primitives.ValidatorIndex
	ParentRoot    []byte
	StateRoot     []byte
	Body          *BeaconBlockBodyPhase0
}

// BeaconBlockAltair is an Altair block envelope.
type BeaconBlockAltair struct {
	Slot          primitives.Slot
	ProposerIndex primitives.ValidatorIndex
	ParentRoot    []byte
	StateRoot     []byte
	Body          *BeaconBlockBodyAltair
}

// BeaconBlockBellatrix is a Bellatrix block envelope.
type BeaconBlockBellatrix struct {
	Slot          primitives.Slot
	ProposerIndex primitives.ValidatorIndex
	ParentRoot    []byte
	StateRoot     []byte
	Body          *BeaconBlockBodyBellatrix
}

// SignedBeaconBlockPhase0 pairs a Phase0 block with its proposer signature.
type SignedBeaconBlockPhase0 struct {
	Block     *BeaconBlockPhase0
	Signature []byte
}

// SignedBeaconBlockAltair pairs an Altair block with its proposer signature.
type SignedBeaconBlockAltair struct {
	Block     *BeaconBlockAltair
	Signature []byte
}

// SignedBeaconBlockBellatrix pairs a Bellatrix block with its proposer
// signature.
type SignedBeaconBlockBellatrix struct {
	Block     *BeaconBlockBellatrix
	Signature []byte
}
