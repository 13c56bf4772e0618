package submitter

import (
	"context"
	"errors"
	"testing"
	"time"

	"token-sweeper-sol/internal/consts"
	"token-sweeper-sol/internal/types"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	sdktoken "github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSignature = "5VERYrealSignature111111111111111111111111111"

// fakeChain 可配置的 ChainClient 假实现
type fakeChain struct {
	blockhashErr error
	simCallErr   error // 模拟调用本身失败（网络层）
	simErr       any   // 模拟返回的链上错误
	sendErr      error
	statusErr    any  // 确认状态里的链上错误
	neverConfirm bool // 一直停留在 processed

	simCalls    int
	sendCalls   int
	statusCalls int
}

func (f *fakeChain) GetLatestBlockhash(_ context.Context) (rpc.GetLatestBlockhashValue, error) {
	if f.blockhashErr != nil {
		return rpc.GetLatestBlockhashValue{}, f.blockhashErr
	}
	return rpc.GetLatestBlockhashValue{Blockhash: types.Pubkey{0x09}.String()}, nil
}

func (f *fakeChain) SimulateTransaction(_ context.Context, _ sdktypes.Transaction) (client.SimulateTransaction, error) {
	f.simCalls++
	if f.simCallErr != nil {
		return client.SimulateTransaction{}, f.simCallErr
	}
	return client.SimulateTransaction{Err: f.simErr, Logs: []string{"Program log: ok"}}, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, _ sdktypes.Transaction) (string, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return testSignature, nil
}

func (f *fakeChain) GetSignatureStatus(_ context.Context, _ string) (*rpc.SignatureStatus, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return &rpc.SignatureStatus{Err: f.statusErr}, nil
	}
	if f.neverConfirm {
		st := rpc.CommitmentProcessed
		return &rpc.SignatureStatus{ConfirmationStatus: &st}, nil
	}
	st := rpc.CommitmentConfirmed
	return &rpc.SignatureStatus{ConfirmationStatus: &st}, nil
}

func newTestSubmitter(f *fakeChain) *Submitter {
	signer := sdktypes.NewAccount()
	return NewSubmitter(f, signer, 220000, 350000, 200*time.Millisecond, 10*time.Millisecond)
}

func testBatch(n int) []sdktypes.Instruction {
	ownerKey := types.Pubkey{0x77}
	owner := common.PublicKeyFromBytes(ownerKey[:])
	ixs := make([]sdktypes.Instruction, 0, n)
	for i := 0; i < n; i++ {
		accountKey := types.Pubkey{byte(i + 1)}
		account := common.PublicKeyFromBytes(accountKey[:])
		ixs = append(ixs, sdktoken.CloseAccount(sdktoken.CloseAccountParam{
			Account: account,
			Auth:    owner,
			To:      owner,
		}))
	}
	return ixs
}

func TestBuildInstructions_ComputeBudgetPrefix(t *testing.T) {
	s := newTestSubmitter(&fakeChain{})
	batch := testBatch(3)

	ixs := s.buildInstructions(batch)
	require.Len(t, ixs, 5)

	// 前两条必须是 compute 预算指令，每笔交易独立声明
	assert.Equal(t, consts.ComputeBudgetProgramIdStr, ixs[0].ProgramID.ToBase58())
	assert.Equal(t, consts.ComputeBudgetProgramIdStr, ixs[1].ProgramID.ToBase58())
	assert.Equal(t, batch, ixs[2:])
}

func TestSubmit_Success(t *testing.T) {
	f := &fakeChain{}
	s := newTestSubmitter(f)

	sig, err := s.Submit(context.Background(), testBatch(2))
	require.NoError(t, err)
	assert.Equal(t, testSignature, sig)
	assert.Equal(t, 1, f.simCalls)
	assert.Equal(t, 1, f.sendCalls)
}

func TestSubmit_BlockhashError(t *testing.T) {
	f := &fakeChain{blockhashErr: errors.New("node unavailable")}
	s := newTestSubmitter(f)

	_, err := s.Submit(context.Background(), testBatch(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get latest blockhash")
	assert.Equal(t, 0, f.sendCalls, "blockhash 失败后不应继续发送")
}

func TestSubmit_SimulationReverted(t *testing.T) {
	f := &fakeChain{simErr: map[string]any{"InstructionError": []any{0, "Custom"}}}
	s := newTestSubmitter(f)

	_, err := s.Submit(context.Background(), testBatch(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSimulationReverted))
	assert.Equal(t, 0, f.sendCalls, "模拟报链上错误时禁止发送")
}

func TestSubmit_SimulationTransportErrorIsAdvisory(t *testing.T) {
	// 模拟端点打不通只是告警，交易照常发送
	f := &fakeChain{simCallErr: errors.New("connection refused")}
	s := newTestSubmitter(f)

	sig, err := s.Submit(context.Background(), testBatch(1))
	require.NoError(t, err)
	assert.Equal(t, testSignature, sig)
	assert.Equal(t, 1, f.sendCalls)
}

func TestSubmit_SendError(t *testing.T) {
	f := &fakeChain{sendErr: errors.New("blockhash expired")}
	s := newTestSubmitter(f)

	_, err := s.Submit(context.Background(), testBatch(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send transaction")
}

func TestSubmit_ConfirmTimeout(t *testing.T) {
	f := &fakeChain{neverConfirm: true}
	s := newTestSubmitter(f)

	_, err := s.Submit(context.Background(), testBatch(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfirmTimeout))
	assert.Greater(t, f.statusCalls, 1, "超时前应当轮询过多次")
}

func TestSubmit_OnChainFailureAfterSend(t *testing.T) {
	f := &fakeChain{statusErr: map[string]any{"InstructionError": []any{1, "Custom"}}}
	s := newTestSubmitter(f)

	_, err := s.Submit(context.Background(), testBatch(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction failed on chain")
}
