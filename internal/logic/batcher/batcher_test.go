package batcher

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeInstructions 生成 n 条可区分的指令（Data 携带序号）
func makeInstructions(n int) []sdktypes.Instruction {
	ixs := make([]sdktypes.Instruction, 0, n)
	for i := 0; i < n; i++ {
		ixs = append(ixs, sdktypes.Instruction{
			ProgramID: common.TokenProgramID,
			Data:      []byte{byte(i)},
		})
	}
	return ixs
}

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, Chunk(nil, 4))
	assert.Nil(t, Chunk([]sdktypes.Instruction{}, 4))
}

func TestChunk_Partition(t *testing.T) {
	// 对若干 (L, M) 组合验证：批次数 = ceil(L/M)，每批 <= M，按序拼接还原输入
	cases := []struct {
		name    string
		total   int
		max     int
		batches int
	}{
		{"单批不满", 3, 22, 1},
		{"恰好整除", 8, 4, 2},
		{"最后一批不满", 5, 4, 2},
		{"逐条切分", 5, 1, 5},
		{"单条输入", 1, 22, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := makeInstructions(tc.total)
			batches := Chunk(input, tc.max)

			require.Len(t, batches, tc.batches)

			var flat []sdktypes.Instruction
			for _, b := range batches {
				assert.GreaterOrEqual(t, len(b), 1)
				assert.LessOrEqual(t, len(b), tc.max)
				flat = append(flat, b...)
			}
			assert.Equal(t, input, flat, "拼接结果必须与输入完全一致")
		})
	}
}

func TestChunk_Idempotent(t *testing.T) {
	// 已切好的批次再按同样的 M 切一次应当是 no-op
	input := makeInstructions(9)
	batches := Chunk(input, 4)

	for _, b := range batches {
		again := Chunk(b, 4)
		require.Len(t, again, 1)
		assert.Equal(t, b, again[0])
	}
}
