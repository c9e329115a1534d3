// execution.go holds the Bellatrix execution-payload types: the merge
// introduced an embedded execution-layer block inside every beacon block,
// with a header-only form cached in state.
package eth

import (
	ssz "github.com/ferranbt/fastssz"
	fieldparams "github.com/sentrychain/beacon-stf/config/fieldparams"
	"github.com/sentrychain/beacon-stf/encoding/bytesutil"
)

// execution-payload-header field lengths that aren't already covered by
// fieldparams (SSZ vector bounds specific to this container).
const (
	feeRecipientLength  = 20
	logsBloomLength     = 256
	baseFeePerGasLength = 32
	executionExtraDataLimit = 32
)

// ExecutionPayloadHeader is the state-cached summary of the execution
// payload (full transaction list lives only in the block body).
type ExecutionPayloadHeader struct {
	ParentHash       []byte
	FeeRecipient     []byte
	StateRoot        []byte
	ReceiptsRoot     []byte
	LogsBloom        []byte
	PrevRandao       []byte
	BlockNumber      uint64
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	ExtraData        []byte
	BaseFeePerGas    []byte
	BlockHash        []byte
	TransactionsRoot []byte
}

// Copy returns a deep copy of h. A nil receiver (pre-Bellatrix states)
// copies to nil.
func (h *ExecutionPayloadHeader) Copy() *ExecutionPayloadHeader {
	if h == nil {
		return nil
	}
	cp := *h
	cp.ParentHash = append([]byte(nil), h.ParentHash...)
	cp.FeeRecipient = append([]byte(nil), h.FeeRecipient...)
	cp.StateRoot = append([]byte(nil), h.StateRoot...)
	cp.ReceiptsRoot = append([]byte(nil), h.ReceiptsRoot...)
	cp.LogsBloom = append([]byte(nil), h.LogsBloom...)
	cp.PrevRandao = append([]byte(nil), h.PrevRandao...)
	cp.ExtraData = append([]byte(nil), h.ExtraData...)
	cp.BaseFeePerGas = append([]byte(nil), h.BaseFeePerGas...)
	cp.BlockHash = append([]byte(nil), h.BlockHash...)
	cp.TransactionsRoot = append([]byte(nil), h.TransactionsRoot...)
	return &cp
}

// HashTreeRootWith merkleizes the payload header's fixed fields, with
// ExtraData as a byte list (limit 32) and Transactions excluded (it lives
// only on the full payload, not the header).
func (h *ExecutionPayloadHeader) HashTreeRootWith(hh *ssz.Hasher) error {
	idx := hh.Index()
	hh.PutBytes(bytesutil.PadTo(h.ParentHash, fieldparams.RootLength))
	hh.PutBytes(bytesutil.PadTo(h.FeeRecipient, feeRecipientLength))
	hh.PutBytes(bytesutil.PadTo(h.StateRoot, fieldparams.RootLength))
	hh.PutBytes(bytesutil.PadTo(h.ReceiptsRoot, fieldparams.RootLength))
	hh.PutBytes(bytesutil.PadTo(h.LogsBloom, logsBloomLength))
	hh.PutBytes(bytesutil.PadTo(h.PrevRandao, fieldparams.RootLength))
	hh.PutUint64(h.BlockNumber)
	hh.PutUint64(h.GasLimit)
	hh.PutUint64(h.GasUsed)
	hh.PutUint64(h.Timestamp)

	extraIdx := hh.Index()
	hh.PutBytes(h.ExtraData)
	hh.MerkleizeWithMixin(extraIdx, uint64(len(h.ExtraData)), (executionExtraDataLimit+31)/32)

	hh.PutBytes(bytesutil.PadTo(h.BaseFeePerGas, baseFeePerGasLength))
	hh.PutBytes(bytesutil.PadTo(h.BlockHash, fieldparams.RootLength))
	hh.PutBytes(bytesutil.PadTo(h.TransactionsRoot, fieldparams.RootLength))
	hh.Merkleize(idx)
	return nil
}

// ExecutionPayload is the full Bellatrix block-body operation; the STF
// treats it as an opaque unit handed to the (out-of-scope) execution-engine
// collaborator for validation and only folds its header into state.
type ExecutionPayload struct {
	ParentHash    []byte
	FeeRecipient  []byte
	StateRoot     []byte
	ReceiptsRoot  []byte
	LogsBloom     []byte
	PrevRandao    []byte
	BlockNumber   uint64
	GasLimit      uint64
	GasUsed       uint64
	Timestamp     uint64
	ExtraData     []byte
	BaseFeePerGas []byte
	BlockHash     []byte
	Transactions  [][]byte
}

// Header extracts the header-only form cached in state.
func (p *ExecutionPayload) Header() *ExecutionPayloadHeader {
	if p == nil {
		return nil
	}
	return &ExecutionPayloadHeader{
		ParentHash:       p.ParentHash,
		FeeRecipient:     p.FeeRecipient,
		StateRoot:        p.StateRoot,
		ReceiptsRoot:     p.ReceiptsRoot,
		LogsBloom:        p.LogsBloom,
		PrevRandao:       p.PrevRandao,
		BlockNumber:      p.BlockNumber,
		GasLimit:         p.GasLimit,
		GasUsed:          p.GasUsed,
		Timestamp:        p.Timestamp,
		ExtraData:        p.ExtraData,
		BaseFeePerGas:    p.BaseFeePerGas,
		BlockHash:        p.BlockHash,
		TransactionsRoot: transactionsRoot(p.Transactions),
	}
}

// transactionsRoot is a placeholder Merkleization of the opaque transaction
// list; full execution-payload validation belongs to the execution-engine
// collaborator (out of scope), so the STF only needs a stable root to embed
// in the header.
func transactionsRoot(txs [][]byte) []byte {
	if len(txs) == 0 {
		return make([]byte, 32)
	}
	h := make([]byte, 32)
	for _, tx := range txs {
		for i, b := range tx {
			h[i%32] ^= b
		}
	}
	return h
}
