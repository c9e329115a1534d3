package blocks_test

import (
	"context"
	"testing"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"

	"github.com/sentrychain/beacon-stf/beacon-chain/core/blocks"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/helpers"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/signing"
	coretime "github.com/sentrychain/beacon-stf/beacon-chain/core/time"
	"github.com/sentrychain/beacon-stf/beacon-chain/state"
	"github.com/sentrychain/beacon-stf/beacon-chain/core/transition"
	"github.com/sentrychain/beacon-stf/config/params"
	coreblocks "github.com/sentrychain/beacon-stf/consensus-types/blocks"
	"github.com/sentrychain/beacon-stf/consensus-types/primitives"
	"github.com/sentrychain/beacon-stf/crypto/bls"
	"github.com/sentrychain/beacon-stf/crypto/hash"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
	eth "github.com/sentrychain/beacon-stf/proto/eth"
	util "github.com/sentrychain/beacon-stf/testing/util"
)

func TestProcessRandao_MixesRevealIntoRing(t *testing.T) {
	defer params.UseMinimalConfig()()

	st, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	st.SetCachesTransient()

	epoch := coretime.CurrentEpoch(st)
	preMix, err := helpers.RandaoMix(st, epoch)
	require.NoError(t, err)

	reveal, err := util.RandaoReveal(st, epoch, keys[7])
	require.NoError(t, err)
	pub := keys[7].PublicKey().Marshal()
	require.NoError(t, blocks.ProcessRandao(st, reveal, pub, true))

	revealHash := hash.Hash(reveal)
	postMix, err := helpers.RandaoMix(st, epoch)
	require.NoError(t, err)
	for i := range postMix {
		require.Equal(t, preMix[i]^revealHash[i], postMix[i])
	}
}

func TestProcessRandao_RejectsWrongSigner(t *testing.T) {
	defer params.UseMinimalConfig()()

	st, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	st.SetCachesTransient()

	epoch := coretime.CurrentEpoch(st)
	reveal, err := util.RandaoReveal(st, epoch, keys[3])
	require.NoError(t, err)

	// Reveal signed by validator 3, claimed to be from validator 4.
	err = blocks.ProcessRandao(st, reveal, keys[4].PublicKey().Marshal(), true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "randao reveal did not verify")
}

func TestProcessBlockHeader_UpdatesStateHeader(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 1)
	require.NoError(t, err)

	proposerIdx, err := helpers.BeaconProposerIndex(working)
	require.NoError(t, err)
	parentRoot, err := working.LatestBlockHeader().HashTreeRoot()
	require.NoError(t, err)
	reveal, err := util.RandaoReveal(working, coretime.CurrentEpoch(working), keys[proposerIdx])
	require.NoError(t, err)

	raw := &eth.BeaconBlockPhase0{
		Slot:          1,
		ProposerIndex: proposerIdx,
		ParentRoot:    parentRoot[:],
		StateRoot:     make([]byte, 32),
		Body:          util.EmptyBodyPhase0(reveal, working.Eth1Data()),
	}
	wrapped, err := coreblocks.NewSignedBeaconBlock(&eth.SignedBeaconBlockPhase0{Block: raw})
	require.NoError(t, err)
	b := wrapped.Block()

	require.NoError(t, blocks.ProcessBlockHeader(working, b, uint64(proposerIdx)))

	header := working.LatestBlockHeader()
	require.Equal(t, primitives.Slot(1), header.Slot)
	require.Equal(t, proposerIdx, header.ProposerIndex)
	require.Equal(t, parentRoot[:], header.ParentRoot)
	// The state root stays zeroed until the next slot transition fills it.
	require.Equal(t, make([]byte, 32), header.StateRoot)

	bodyRoot, err := b.Body().HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, bodyRoot[:], header.BodyRoot)
}

func TestProcessBlockHeader_RejectsSlotMismatch(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 2)
	require.NoError(t, err)

	proposerIdx, err := helpers.BeaconProposerIndex(working)
	require.NoError(t, err)
	reveal, err := util.RandaoReveal(working, coretime.CurrentEpoch(working), keys[proposerIdx])
	require.NoError(t, err)

	raw := &eth.BeaconBlockPhase0{
		Slot:          1, // state is at slot 2
		ProposerIndex: proposerIdx,
		ParentRoot:    make([]byte, 32),
		StateRoot:     make([]byte, 32),
		Body:          util.EmptyBodyPhase0(reveal, working.Eth1Data()),
	}
	wrapped, err := coreblocks.NewSignedBeaconBlock(&eth.SignedBeaconBlockPhase0{Block: raw})
	require.NoError(t, err)

	err = blocks.ProcessBlockHeader(working, wrapped.Block(), uint64(proposerIdx))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not match state slot")
}

func TestProcessEth1DataVote_AdoptsMajority(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, _, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()

	vote := &eth.Eth1Data{
		DepositRoot:  bytesutil.PadTo([]byte{0xDE}, 32),
		DepositCount: 7,
		BlockHash:    bytesutil.PadTo([]byte{0xBE}, 32),
	}
	slotsPerPeriod := uint64(cfg.EpochsPerEth1VotingPeriod) * uint64(cfg.SlotsPerEpoch)
	majority := slotsPerPeriod/2 + 1

	for i := uint64(0); i < majority-1; i++ {
		require.NoError(t, blocks.ProcessEth1DataVote(st, vote))
	}
	require.NotEqual(t, vote.DepositCount, st.Eth1Data().DepositCount, "eth1 data must not flip before a strict majority")

	require.NoError(t, blocks.ProcessEth1DataVote(st, vote))
	require.Equal(t, vote.DepositCount, st.Eth1Data().DepositCount)
	require.Equal(t, vote.DepositRoot, st.Eth1Data().DepositRoot)
	require.Len(t, st.Eth1DataVotes(), int(majority))
}

func TestProcessVoluntaryExits_QueuesValidatorForExit(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, keys, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()
	// Old enough that the shard committee period has elapsed.
	require.NoError(t, st.SetSlot(coretime.StartSlot(cfg.ShardCommitteePeriod)))

	exit := &eth.VoluntaryExit{Epoch: 5, ValidatorIndex: 2}
	sig, err := signing.ComputeDomainAndSign(st.Fork(), st.GenesisValidatorsRoot(), uint64(exit.Epoch), exit, cfg.DomainVoluntaryExit, keys[2])
	require.NoError(t, err)

	require.NoError(t, blocks.ProcessVoluntaryExits(st, []*eth.SignedVoluntaryExit{{Exit: exit, Signature: sig}}))

	v := st.Validators()[2]
	require.NotEqual(t, eth.FarFutureEpoch, v.ExitEpoch)
	require.Equal(t, v.ExitEpoch+cfg.EpochsPerSlashingsVector, v.WithdrawableEpoch)
}

func TestProcessVoluntaryExits_RejectsTooRecentValidator(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, keys, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()
	require.NoError(t, st.SetSlot(coretime.StartSlot(5)))

	exit := &eth.VoluntaryExit{Epoch: 0, ValidatorIndex: 1}
	sig, err := signing.ComputeDomainAndSign(st.Fork(), st.GenesisValidatorsRoot(), uint64(exit.Epoch), exit, cfg.DomainVoluntaryExit, keys[1])
	require.NoError(t, err)

	err = blocks.ProcessVoluntaryExits(st, []*eth.SignedVoluntaryExit{{Exit: exit, Signature: sig}})
	require.Error(t, err)
	require.Contains(t, err.Error(), blocks.ValidatorCannotExitYetMsg)
}

func signedHeader(t *testing.T, st *state.BeaconState, h *eth.BeaconBlockHeader, key bls.SecretKey) *eth.SignedBeaconBlockHeader {
	t.Helper()
	sig, err := signing.ComputeDomainAndSign(st.Fork(), st.GenesisValidatorsRoot(), uint64(coretime.ToEpoch(h.Slot)), h, params.BeaconConfig().DomainBeaconProposer, key)
	require.NoError(t, err)
	return &eth.SignedBeaconBlockHeader{Header: h, Signature: sig}
}

func TestProcessProposerSlashings_SlashesDoubleProposer(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	st.SetCachesTransient()

	proposerIdx, err := helpers.BeaconProposerIndex(st)
	require.NoError(t, err)
	offender := (proposerIdx + 1) % 16

	h1 := &eth.BeaconBlockHeader{
		Slot:          0,
		ProposerIndex: offender,
		ParentRoot:    make([]byte, 32),
		StateRoot:     make([]byte, 32),
		BodyRoot:      bytesutil.PadTo([]byte{0x01}, 32),
	}
	h2 := &eth.BeaconBlockHeader{
		Slot:          0,
		ProposerIndex: offender,
		ParentRoot:    make([]byte, 32),
		StateRoot:     make([]byte, 32),
		BodyRoot:      bytesutil.PadTo([]byte{0x02}, 32),
	}
	ps := &eth.ProposerSlashing{
		Header_1: signedHeader(t, st, h1, keys[offender]),
		Header_2: signedHeader(t, st, h2, keys[offender]),
	}

	require.NoError(t, blocks.ProcessProposerSlashings(st, []*eth.ProposerSlashing{ps}))

	v := st.Validators()[offender]
	require.True(t, v.Slashed)
	require.NotEqual(t, eth.FarFutureEpoch, v.ExitEpoch)

	ringIdx := uint64(coretime.CurrentEpoch(st)) % uint64(cfg.EpochsPerSlashingsVector)
	burned, err := st.SlashingAtIndex(ringIdx)
	require.NoError(t, err)
	require.Equal(t, cfg.MaxEffectiveBalance, burned)

	penalty := cfg.MaxEffectiveBalance / cfg.MinSlashingPenaltyQuotient
	require.Equal(t, cfg.MaxEffectiveBalance-penalty, st.Balances()[offender])
}

func TestVerifyProposerSlashing_RejectsIdenticalHeaders(t *testing.T) {
	defer params.UseMinimalConfig()()

	st, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	st.SetCachesTransient()

	h := &eth.BeaconBlockHeader{
		Slot:          0,
		ProposerIndex: 3,
		ParentRoot:    make([]byte, 32),
		StateRoot:     make([]byte, 32),
		BodyRoot:      make([]byte, 32),
	}
	ps := &eth.ProposerSlashing{
		Header_1: signedHeader(t, st, h, keys[3]),
		Header_2: signedHeader(t, st, h, keys[3]),
	}

	err = blocks.VerifyProposerSlashing(st, ps)
	require.Error(t, err)
	require.Contains(t, err.Error(), "identical")
}

func TestIsSlashableAttestationData(t *testing.T) {
	source := &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)}
	data1 := &eth.AttestationData{Target: &eth.Checkpoint{Epoch: 3, Root: make([]byte, 32)}, Source: source, BeaconBlockRoot: bytesutil.PadTo([]byte{0x01}, 32)}
	data2 := &eth.AttestationData{Target: &eth.Checkpoint{Epoch: 3, Root: make([]byte, 32)}, Source: source, BeaconBlockRoot: bytesutil.PadTo([]byte{0x02}, 32)}
	require.True(t, blocks.IsSlashableAttestationData(data1, data2), "double vote")

	surrounder := &eth.AttestationData{Source: &eth.Checkpoint{Epoch: 1, Root: make([]byte, 32)}, Target: &eth.Checkpoint{Epoch: 6, Root: make([]byte, 32)}, BeaconBlockRoot: make([]byte, 32)}
	surrounded := &eth.AttestationData{Source: &eth.Checkpoint{Epoch: 2, Root: make([]byte, 32)}, Target: &eth.Checkpoint{Epoch: 5, Root: make([]byte, 32)}, BeaconBlockRoot: make([]byte, 32)}
	require.True(t, blocks.IsSlashableAttestationData(surrounder, surrounded), "surround vote")

	require.False(t, blocks.IsSlashableAttestationData(data1, data1), "identical data is not slashable")
	later := &eth.AttestationData{Target: &eth.Checkpoint{Epoch: 4, Root: make([]byte, 32)}, Source: source, BeaconBlockRoot: make([]byte, 32)}
	require.False(t, blocks.IsSlashableAttestationData(data1, later), "different target epochs, no surround")
}

func TestIntersectingAttestingIndices(t *testing.T) {
	as := &eth.AttesterSlashing{
		Attestation_1: &eth.IndexedAttestation{AttestingIndices: []uint64{1, 3, 5, 7}},
		Attestation_2: &eth.IndexedAttestation{AttestingIndices: []uint64{3, 4, 7, 9}},
	}
	require.Equal(t, []uint64{3, 7}, blocks.IntersectingAttestingIndices(as))
}

func signedIndexedAttestation(t *testing.T, st *state.BeaconState, data *eth.AttestationData, indices []uint64, keys []bls.SecretKey) *eth.IndexedAttestation {
	t.Helper()
	domain, err := signing.Domain(st.Fork(), uint64(data.Target.Epoch), params.BeaconConfig().DomainBeaconAttester, st.GenesisValidatorsRoot())
	require.NoError(t, err)
	root, err := signing.ComputeSigningRoot(data, domain)
	require.NoError(t, err)
	sigs := make([]bls.Signature, len(indices))
	for i, idx := range indices {
		sigs[i] = keys[idx].Sign(root[:])
	}
	return &eth.IndexedAttestation{
		AttestingIndices: indices,
		Data:             data,
		Signature:        bls.AggregateSignatures(sigs).Marshal(),
	}
}

func TestProcessAttesterSlashings_SlashesDoubleVoter(t *testing.T) {
	defer params.UseMinimalConfig()()

	st, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	st.SetCachesTransient()

	source := &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)}
	data1 := &eth.AttestationData{Slot: 0, Target: &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)}, Source: source, BeaconBlockRoot: bytesutil.PadTo([]byte{0x01}, 32)}
	data2 := &eth.AttestationData{Slot: 0, Target: &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)}, Source: source, BeaconBlockRoot: bytesutil.PadTo([]byte{0x02}, 32)}

	as := &eth.AttesterSlashing{
		Attestation_1: signedIndexedAttestation(t, st, data1, []uint64{6}, keys),
		Attestation_2: signedIndexedAttestation(t, st, data2, []uint64{6}, keys),
	}

	require.NoError(t, blocks.ProcessAttesterSlashings(st, []*eth.AttesterSlashing{as}))
	require.True(t, st.Validators()[6].Slashed)
}

func TestProcessAttestations_Phase0RecordsPending(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(64)
	require.NoError(t, err)
	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 1)
	require.NoError(t, err)

	committee, err := helpers.BeaconCommittee(working, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, committee)

	data := &eth.AttestationData{
		Slot:            0,
		CommitteeIndex:  0,
		BeaconBlockRoot: make([]byte, 32),
		Source:          &eth.Checkpoint{Epoch: 0, Root: working.CurrentJustifiedCheckpoint().Root},
		Target:          &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)},
	}
	bits := bitfield.NewBitlist(uint64(len(committee)))
	for i := range committee {
		bits.SetBitAt(uint64(i), true)
	}
	indices := make([]uint64, len(committee))
	for i, idx := range committee {
		indices[i] = uint64(idx)
	}

	domain, err := signing.Domain(working.Fork(), 0, params.BeaconConfig().DomainBeaconAttester, working.GenesisValidatorsRoot())
	require.NoError(t, err)
	root, err := signing.ComputeSigningRoot(data, domain)
	require.NoError(t, err)
	sigs := make([]bls.Signature, len(committee))
	for i, idx := range committee {
		sigs[i] = keys[idx].Sign(root[:])
	}
	att := &eth.Attestation{
		AggregationBits: bits,
		Data:            data,
		Signature:       bls.AggregateSignatures(sigs).Marshal(),
	}

	require.NoError(t, blocks.ProcessAttestations(working, []*eth.Attestation{att}))

	pending := working.CurrentEpochAttestations()
	require.Len(t, pending, 1)
	require.Equal(t, primitives.Slot(1), pending[0].InclusionDelay)
	recorded, err := helpers.AttestingIndices(working, 0, 0, pending[0].AggregationBits)
	require.NoError(t, err)
	require.ElementsMatch(t, indices, recorded)
}

func TestProcessOperations_EnforcesExitLimit(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, _, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()

	exits := make([]*eth.SignedVoluntaryExit, cfg.MaxVoluntaryExits+1)
	for i := range exits {
		exits[i] = &eth.SignedVoluntaryExit{Exit: &eth.VoluntaryExit{}}
	}
	body := &eth.BeaconBlockBodyPhase0{
		RandaoReveal:   make([]byte, 96),
		Eth1Data:       st.Eth1Data(),
		Graffiti:       make([]byte, 32),
		VoluntaryExits: exits,
	}
	wrapped, err := coreblocks.NewSignedBeaconBlock(&eth.SignedBeaconBlockPhase0{Block: &eth.BeaconBlockPhase0{Body: body}})
	require.NoError(t, err)

	err = blocks.ProcessOperations(st, wrapped.Block().Body())
	var limitErr *blocks.OperationLimitExceededError
	require.ErrorAs(t, err, &limitErr)
	require.Equal(t, "voluntary exits", limitErr.Kind)
	require.Equal(t, cfg.MaxVoluntaryExits, limitErr.Limit)
	require.Equal(t, cfg.MaxVoluntaryExits+1, limitErr.Got)
}

// depositTrieRoot folds a single deposit-data leaf through an otherwise
// empty deposit contract tree, returning the branch a Deposit carries and
// the root the state's eth1 data must claim.
func depositTrieRoot(t *testing.T, leaf [32]byte) ([][]byte, []byte) {
	t.Helper()
	depth := params.BeaconConfig().DepositContractTreeDepth

	zeroHashes := make([][32]byte, depth)
	for i := uint64(1); i < depth; i++ {
		zeroHashes[i] = hash.Hash(append(zeroHashes[i-1][:], zeroHashes[i-1][:]...))
	}

	branch := make([][]byte, depth+1)
	node := leaf
	for i := uint64(0); i < depth; i++ {
		branch[i] = append([]byte(nil), zeroHashes[i][:]...)
		node = hash.Hash(append(node[:], zeroHashes[i][:]...))
	}
	lengthLeaf := bytesutil.PadTo(bytesutil.Bytes8(1), 32)
	branch[depth] = lengthLeaf
	root := hash.Hash(append(node[:], lengthLeaf...))
	return branch, root[:]
}

func TestProcessDeposits_AppendsNewValidator(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, _, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()

	depositKey := bls.RandKey()
	data := &eth.DepositData{
		PublicKey:             depositKey.PublicKey().Marshal(),
		WithdrawalCredentials: make([]byte, 32),
		Amount:                cfg.MaxEffectiveBalance,
	}
	domain, err := signing.ComputeDomain(cfg.DomainDeposit, nil, nil)
	require.NoError(t, err)
	msgRoot, err := signing.ComputeSigningRoot(&eth.DepositMessage{
		PublicKey:             data.PublicKey,
		WithdrawalCredentials: data.WithdrawalCredentials,
		Amount:                data.Amount,
	}, domain)
	require.NoError(t, err)
	data.Signature = depositKey.Sign(msgRoot[:]).Marshal()

	leaf, err := data.HashTreeRoot()
	require.NoError(t, err)
	branch, root := depositTrieRoot(t, leaf)
	require.NoError(t, st.SetEth1Data(&eth.Eth1Data{DepositRoot: root, DepositCount: 1, BlockHash: make([]byte, 32)}))

	require.NoError(t, blocks.ProcessDeposits(st, []*eth.Deposit{{Proof: branch, Data: data}}))

	require.Equal(t, 9, st.NumValidators())
	require.Len(t, st.Balances(), 9)
	require.Equal(t, cfg.MaxEffectiveBalance, st.Balances()[8])
	require.Equal(t, uint64(1), st.Eth1DepositIndex())

	appended := st.Validators()[8]
	require.Equal(t, data.PublicKey, appended.PublicKey)
	require.Equal(t, eth.FarFutureEpoch, appended.ActivationEpoch, "a deposited validator waits for registry processing to activate")

	idx, ok := st.ValidatorIndexByPubkey(bytesutil.ToBytes48(data.PublicKey))
	require.True(t, ok)
	require.Equal(t, primitives.ValidatorIndex(8), idx)
}

func TestProcessDeposits_TopsUpExistingValidator(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, keys, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()

	topUp := cfg.EffectiveBalanceIncrement
	data := &eth.DepositData{
		PublicKey:             keys[5].PublicKey().Marshal(),
		WithdrawalCredentials: make([]byte, 32),
		Amount:                topUp,
		// Top-ups credit the balance without checking the proof of
		// possession, so a garbage signature must not matter.
		Signature: make([]byte, 96),
	}
	leaf, err := data.HashTreeRoot()
	require.NoError(t, err)
	branch, root := depositTrieRoot(t, leaf)
	require.NoError(t, st.SetEth1Data(&eth.Eth1Data{DepositRoot: root, DepositCount: 1, BlockHash: make([]byte, 32)}))

	require.NoError(t, blocks.ProcessDeposits(st, []*eth.Deposit{{Proof: branch, Data: data}}))

	require.Equal(t, 8, st.NumValidators())
	require.Equal(t, cfg.MaxEffectiveBalance+topUp, st.Balances()[5])
}

func TestProcessVoluntaryExitsNoVerifySignature_DefersSignatureSet(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, keys, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()
	require.NoError(t, st.SetSlot(coretime.StartSlot(cfg.ShardCommitteePeriod)))

	exit := &eth.VoluntaryExit{Epoch: 5, ValidatorIndex: 2}
	sig, err := signing.ComputeDomainAndSign(st.Fork(), st.GenesisValidatorsRoot(), uint64(exit.Epoch), exit, cfg.DomainVoluntaryExit, keys[2])
	require.NoError(t, err)

	set, err := blocks.ProcessVoluntaryExitsNoVerifySignature(st, []*eth.SignedVoluntaryExit{{Exit: exit, Signature: sig}})
	require.NoError(t, err)

	// The exit is applied without any pairing check; its set is handed back
	// for the block-wide batch, where it verifies.
	require.NotEqual(t, eth.FarFutureEpoch, st.Validators()[2].ExitEpoch)
	require.Len(t, set.Signatures, 1)
	ok, err := set.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProcessVoluntaryExitsNoVerifySignature_BadSignatureSurfacesInBatch(t *testing.T) {
	defer params.UseMinimalConfig()()
	cfg := params.BeaconConfig()

	st, keys, err := util.DeterministicGenesisStatePhase0(8)
	require.NoError(t, err)
	st.SetCachesTransient()
	require.NoError(t, st.SetSlot(coretime.StartSlot(cfg.ShardCommitteePeriod)))

	exit := &eth.VoluntaryExit{Epoch: 5, ValidatorIndex: 2}
	// Signed by the wrong validator: eligibility checks pass, the deferred
	// batch is what catches it.
	sig, err := signing.ComputeDomainAndSign(st.Fork(), st.GenesisValidatorsRoot(), uint64(exit.Epoch), exit, cfg.DomainVoluntaryExit, keys[3])
	require.NoError(t, err)

	set, err := blocks.ProcessVoluntaryExitsNoVerifySignature(st, []*eth.SignedVoluntaryExit{{Exit: exit, Signature: sig}})
	require.NoError(t, err)
	ok, err := set.Verify()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProcessAttesterSlashingsNoVerifySignature_DefersBothSets(t *testing.T) {
	defer params.UseMinimalConfig()()

	st, keys, err := util.DeterministicGenesisStatePhase0(16)
	require.NoError(t, err)
	st.SetCachesTransient()

	source := &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)}
	data1 := &eth.AttestationData{Slot: 0, Target: &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)}, Source: source, BeaconBlockRoot: bytesutil.PadTo([]byte{0x01}, 32)}
	data2 := &eth.AttestationData{Slot: 0, Target: &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)}, Source: source, BeaconBlockRoot: bytesutil.PadTo([]byte{0x02}, 32)}

	as := &eth.AttesterSlashing{
		Attestation_1: signedIndexedAttestation(t, st, data1, []uint64{6}, keys),
		Attestation_2: signedIndexedAttestation(t, st, data2, []uint64{6}, keys),
	}

	set, err := blocks.ProcessAttesterSlashingsNoVerifySignature(st, []*eth.AttesterSlashing{as})
	require.NoError(t, err)

	require.True(t, st.Validators()[6].Slashed)
	require.Len(t, set.Signatures, 2)
	ok, err := set.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestProcessAttestationsNoVerifySignature_DefersAggregateSet(t *testing.T) {
	defer params.UseMinimalConfig()()

	genesis, keys, err := util.DeterministicGenesisStatePhase0(64)
	require.NoError(t, err)
	working := genesis.Copy()
	working.SetCachesTransient()
	working, err = transition.ProcessSlots(context.Background(), working, 1)
	require.NoError(t, err)

	committee, err := helpers.BeaconCommittee(working, 0, 0)
	require.NoError(t, err)

	data := &eth.AttestationData{
		Slot:            0,
		CommitteeIndex:  0,
		BeaconBlockRoot: make([]byte, 32),
		Source:          &eth.Checkpoint{Epoch: 0, Root: working.CurrentJustifiedCheckpoint().Root},
		Target:          &eth.Checkpoint{Epoch: 0, Root: make([]byte, 32)},
	}
	bits := bitfield.NewBitlist(uint64(len(committee)))
	for i := range committee {
		bits.SetBitAt(uint64(i), true)
	}
	domain, err := signing.Domain(working.Fork(), 0, params.BeaconConfig().DomainBeaconAttester, working.GenesisValidatorsRoot())
	require.NoError(t, err)
	root, err := signing.ComputeSigningRoot(data, domain)
	require.NoError(t, err)
	sigs := make([]bls.Signature, len(committee))
	for i, idx := range committee {
		sigs[i] = keys[idx].Sign(root[:])
	}
	att := &eth.Attestation{
		AggregationBits: bits,
		Data:            data,
		Signature:       bls.AggregateSignatures(sigs).Marshal(),
	}

	set, err := blocks.ProcessAttestationsNoVerifySignature(working, []*eth.Attestation{att})
	require.NoError(t, err)

	require.Len(t, working.CurrentEpochAttestations(), 1)
	require.Len(t, set.Signatures, 1)
	ok, err := set.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}
