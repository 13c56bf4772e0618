package batcher

import (
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Chunk 把指令列表按 maxPerTx 切成连续分片，最后一片可能不满。
// 纯函数：不重排、不去重、不丢失；所有分片按序拼接即还原输入。
// 调用方保证 maxPerTx >= 1（配置校验阶段已拒绝非法值）。
//
// 交易有硬性的字节上限；每条 burn/close 指令占用的空间大致固定，
// 按条数封顶是一个无需预序列化就能推理的保守代理。
func Chunk(instructions []sdktypes.Instruction, maxPerTx int) [][]sdktypes.Instruction {
	if len(instructions) == 0 {
		return nil
	}

	batches := make([][]sdktypes.Instruction, 0, (len(instructions)+maxPerTx-1)/maxPerTx)
	for start := 0; start < len(instructions); start += maxPerTx {
		end := start + maxPerTx
		if end > len(instructions) {
			end = len(instructions)
		}
		batches = append(batches, instructions[start:end])
	}
	return batches
}
