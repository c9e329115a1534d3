// Package fieldparams holds the fixed array lengths of BeaconState fields
// that SSZ requires to be compile-time constants (vector types), as opposed
// to config/params's runtime-swappable scalars.
package fieldparams

const (
	// RootLength is the byte length of a single Merkle root / hash.
	RootLength = 32
	// BLSPubkeyLength is the byte length of a compressed BLS12-381 pubkey.
	BLSPubkeyLength = 48
	// BLSSignatureLength is the byte length of a compressed BLS12-381 signature.
	BLSSignatureLength = 96
	// VersionLength is the byte length of a fork version.
	VersionLength = 4

	// SyncCommitteeLength is the number of validators in a sync committee
	// (Altair+). Mirrors params.BeaconConfig().SyncCommitteeSize for the
	// mainnet config; kept separate because it is an SSZ vector bound, not
	// a runtime-configurable scalar.
	SyncCommitteeLength = 512

	// SyncAggregateSyncCommitteeBytesLength is the byte length of the
	// sync-committee aggregation bitfield.
	SyncAggregateSyncCommitteeBytesLength = SyncCommitteeLength / 8

	// MaxValidatorsPerCommittee bounds a single committee's aggregation
	// bitlist, the SSZ List[bit, MAX_VALIDATORS_PER_COMMITTEE] limit every
	// attestation's (and PendingAttestation's) AggregationBits merkleizes
	// against.
	MaxValidatorsPerCommittee = 2048
)
