package bls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildBatch(t *testing.T, n int) (*SignatureBatch, []SecretKey) {
	t.Helper()
	batch := NewSet()
	keys := make([]SecretKey, n)
	for i := 0; i < n; i++ {
		keys[i] = RandKey()
		var msg [32]byte
		msg[0] = byte(i)
		batch.AddSet(keys[i].Sign(msg[:]).Marshal(), keys[i].PublicKey(), msg, "set")
	}
	return batch, keys
}

func TestSignatureBatch_VerifyAllValid(t *testing.T) {
	batch, _ := buildBatch(t, 5)
	ok, err := batch.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignatureBatch_VerifyDetectsBadSet(t *testing.T) {
	batch, keys := buildBatch(t, 5)
	// Replace set 3's signature with a signature over the wrong message.
	var wrong [32]byte
	wrong[0] = 0xFF
	batch.Signatures[3] = keys[3].Sign(wrong[:]).Marshal()

	ok, err := batch.Verify()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignatureBatch_VerifyVerboselyReportsOffender(t *testing.T) {
	batch, keys := buildBatch(t, 8)
	batch.Descriptions[5] = "attestation 2"
	var wrong [32]byte
	wrong[0] = 0xFF
	batch.Signatures[5] = keys[5].Sign(wrong[:]).Marshal()

	ok, err := batch.VerifyVerbosely()
	require.False(t, ok)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signature set 5")
	require.Contains(t, err.Error(), "attestation 2")
}

func TestSignatureBatch_JoinConcatenates(t *testing.T) {
	a, _ := buildBatch(t, 2)
	b, _ := buildBatch(t, 3)
	joined := a.Join(b)
	require.Len(t, joined.Signatures, 5)
	require.Len(t, joined.PublicKeys, 5)
	require.Len(t, joined.Messages, 5)

	ok, err := joined.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignatureBatch_EmptyVerifies(t *testing.T) {
	ok, err := NewSet().Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFastAggregateVerify(t *testing.T) {
	var msg [32]byte
	msg[0] = 0x42
	keys := []SecretKey{RandKey(), RandKey(), RandKey()}
	sigs := make([]Signature, len(keys))
	pubs := make([]PublicKey, len(keys))
	for i, k := range keys {
		sigs[i] = k.Sign(msg[:])
		pubs[i] = k.PublicKey()
	}
	agg := AggregateSignatures(sigs)
	require.True(t, agg.FastAggregateVerify(pubs, msg))

	var other [32]byte
	require.False(t, agg.FastAggregateVerify(pubs, other))
}
