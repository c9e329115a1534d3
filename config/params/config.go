// Package params holds the consensus constants that parameterize the state
// transition function. A single process-wide BeaconConfig is read everywhere
// else in this module; swapping it (tests use a minimal config) never
// requires touching call sites.
package params

import (
	"sync"

	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
)

// BeaconChainConfig holds every constant the state transition function
// consults. Grouped as a single struct (rather than package-level vars) so
// it can be swapped wholesale for test configurations.
type BeaconChainConfig struct {
	// Time parameters.
	SecondsPerSlot    uint64
	SlotsPerEpoch     primitives.Slot
	MinSeedLookahead  primitives.Epoch
	MaxSeedLookahead  primitives.Epoch
	ShuffleRoundCount uint64

	// Ring buffer lengths.
	SlotsPerHistoricalRoot     primitives.Slot
	EpochsPerHistoricalVector  primitives.Epoch
	EpochsPerSlashingsVector   primitives.Epoch
	HistoricalRootsLimit       uint64
	ValidatorRegistryLimit     uint64

	// Gwei values.
	MinDepositAmount          uint64
	MaxEffectiveBalance       uint64
	EjectionBalance           uint64
	EffectiveBalanceIncrement uint64

	// Reward/penalty quotients.
	BaseRewardFactor       uint64
	BaseRewardsPerEpoch    uint64
	WhistleBlowerRewardQuotient uint64
	ProposerRewardQuotient uint64
	InactivityPenaltyQuotient        uint64
	InactivityPenaltyQuotientAltair  uint64
	InactivityScoreBias              uint64
	InactivityScoreRecoveryRate      uint64
	MinSlashingPenaltyQuotient       uint64
	MinSlashingPenaltyQuotientAltair uint64
	ProportionalSlashingMultiplier       uint64
	ProportionalSlashingMultiplierAltair uint64

	// Altair hysteresis / effective-balance update.
	HysteresisQuotient           uint64
	HysteresisDownwardMultiplier uint64
	HysteresisUpwardMultiplier   uint64

	// Churn.
	MinPerEpochChurnLimit uint64
	ChurnLimitQuotient    uint64

	// Validator eligibility.
	ShardCommitteePeriod primitives.Epoch
	MinEpochsToInactivityPenalty primitives.Epoch
	MinAttestationInclusionDelay primitives.Slot

	// Eth1 voting.
	EpochsPerEth1VotingPeriod primitives.Epoch

	// Deposit contract.
	DepositContractTreeDepth uint64

	// Max operations per block.
	MaxProposerSlashings uint64
	MaxAttesterSlashings uint64
	MaxAttestations      uint64
	MaxDeposits          uint64
	MaxVoluntaryExits    uint64

	// Participation flag weights (Altair).
	TimelySourceWeight uint64
	TimelyTargetWeight uint64
	TimelyHeadWeight   uint64
	SyncRewardWeight   uint64
	ProposerWeight     uint64
	WeightDenominator  uint64

	// Sync committee (Altair).
	SyncCommitteeSize            uint64
	EpochsPerSyncCommitteePeriod primitives.Epoch

	// Domains.
	DomainBeaconProposer    [4]byte
	DomainBeaconAttester    [4]byte
	DomainRandao            [4]byte
	DomainDeposit           [4]byte
	DomainVoluntaryExit     [4]byte
	DomainSelectionProof    [4]byte
	DomainSyncCommittee     [4]byte
	DomainAggregateAndProof [4]byte

	// Fork schedule: epoch at which each fork activates, and its version.
	GenesisForkVersion    [4]byte
	AltairForkVersion     [4]byte
	AltairForkEpoch       primitives.Epoch
	BellatrixForkVersion  [4]byte
	BellatrixForkEpoch    primitives.Epoch

	// Misc.
	TargetCommitteeSize   uint64
	MaxCommitteesPerSlot  uint64
	TargetAggregatorsPerCommittee uint64

	ZeroHash [32]byte
}

// MainnetConfig returns production-shaped constants. Values match the
// canonical consensus specs at the Bellatrix fork.
func MainnetConfig() *BeaconChainConfig {
	return &BeaconChainConfig{
		SecondsPerSlot:    12,
		SlotsPerEpoch:     32,
		MinSeedLookahead:  1,
		MaxSeedLookahead:  4,
		ShuffleRoundCount: 90,

		SlotsPerHistoricalRoot:    8192,
		EpochsPerHistoricalVector: 65536,
		EpochsPerSlashingsVector:  8192,
		HistoricalRootsLimit:      16777216,
		ValidatorRegistryLimit:    1099511627776,

		MinDepositAmount:          1000000000,
		MaxEffectiveBalance:       32000000000,
		EjectionBalance:           16000000000,
		EffectiveBalanceIncrement: 1000000000,

		BaseRewardFactor:            64,
		BaseRewardsPerEpoch:         4,
		WhistleBlowerRewardQuotient: 512,
		ProposerRewardQuotient:      8,
		InactivityPenaltyQuotient:        1 << 26,
		InactivityPenaltyQuotientAltair:  3 * (1 << 24),
		InactivityScoreBias:              4,
		InactivityScoreRecoveryRate:      16,
		MinSlashingPenaltyQuotient:       128,
		MinSlashingPenaltyQuotientAltair: 64,
		ProportionalSlashingMultiplier:       1,
		ProportionalSlashingMultiplierAltair: 2,

		HysteresisQuotient:           4,
		HysteresisDownwardMultiplier: 1,
		HysteresisUpwardMultiplier:   5,

		MinPerEpochChurnLimit: 4,
		ChurnLimitQuotient:    65536,

		ShardCommitteePeriod: 256,
		MinEpochsToInactivityPenalty: 4,
		MinAttestationInclusionDelay: 1,

		EpochsPerEth1VotingPeriod: 64,

		DepositContractTreeDepth: 32,

		MaxProposerSlashings: 16,
		MaxAttesterSlashings: 2,
		MaxAttestations:      128,
		MaxDeposits:          16,
		MaxVoluntaryExits:    16,

		TimelySourceWeight: 14,
		TimelyTargetWeight: 26,
		TimelyHeadWeight:   14,
		SyncRewardWeight:   2,
		ProposerWeight:     8,
		WeightDenominator:  64,

		SyncCommitteeSize:            512,
		EpochsPerSyncCommitteePeriod: 256,

		DomainBeaconProposer:    [4]byte{0, 0, 0, 0},
		DomainBeaconAttester:    [4]byte{1, 0, 0, 0},
		DomainRandao:            [4]byte{2, 0, 0, 0},
		DomainDeposit:           [4]byte{3, 0, 0, 0},
		DomainVoluntaryExit:     [4]byte{4, 0, 0, 0},
		DomainSelectionProof:    [4]byte{5, 0, 0, 0},
		DomainAggregateAndProof: [4]byte{6, 0, 0, 0},
		DomainSyncCommittee:     [4]byte{7, 0, 0, 0},

		GenesisForkVersion:   [4]byte{0, 0, 0, 0},
		AltairForkVersion:    [4]byte{1, 0, 0, 0},
		AltairForkEpoch:      74240,
		BellatrixForkVersion: [4]byte{2, 0, 0, 0},
		BellatrixForkEpoch:   144896,

		TargetCommitteeSize:           128,
		MaxCommitteesPerSlot:          64,
		TargetAggregatorsPerCommittee: 16,
	}
}

// MinimalConfig returns the small, fast-testing constant set used by unit
// tests: short epochs, tiny fork schedule, so a test can cross the
// Altair/Bellatrix boundary in a handful of slots.
func MinimalConfig() *BeaconChainConfig {
	cfg := MainnetConfig()
	cfg.SlotsPerEpoch = 8
	cfg.SlotsPerHistoricalRoot = 64
	cfg.EpochsPerHistoricalVector = 64
	cfg.EpochsPerSlashingsVector = 64
	cfg.EpochsPerSyncCommitteePeriod = 8
	cfg.SyncCommitteeSize = 32
	cfg.ShuffleRoundCount = 10
	cfg.MinPerEpochChurnLimit = 2
	cfg.AltairForkEpoch = 1
	cfg.BellatrixForkEpoch = 2
	return cfg
}

var (
	beaconConfig   = MainnetConfig()
	beaconConfigMu sync.RWMutex
)

// BeaconConfig returns the process-wide active configuration. Safe for
// concurrent use; see OverrideBeaconConfig.
func BeaconConfig() *BeaconChainConfig {
	beaconConfigMu.RLock()
	defer beaconConfigMu.RUnlock()
	return beaconConfig
}

// OverrideBeaconConfig replaces the process-wide configuration. Intended for
// test setup only; the STF itself never mutates it.
func OverrideBeaconConfig(cfg *BeaconChainConfig) {
	beaconConfigMu.Lock()
	defer beaconConfigMu.Unlock()
	beaconConfig = cfg
}

// UseMinimalConfig installs MinimalConfig and returns a restore function,
// for use as `defer params.UseMinimalConfig()()` in tests.
func UseMinimalConfig() func() {
	prev := BeaconConfig()
	OverrideBeaconConfig(MinimalConfig())
	return func() { OverrideBeaconConfig(prev) }
}
