package chain

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
)

//go:embed smartfunding.abi.json
var smartFundingABI []byte

var ErrUnknownEvent = errors.New("unknown event")

// Contract 众筹池事件的 ABI 编解码，事件流水以链上日志的格式保存
type Contract struct {
	address common.Address
	abi     abi.ABI
	name    string
}

// NewFundingContract 使用内置的 SmartFunding ABI
func NewFundingContract(address common.Address) (*Contract, error) {
	return NewContract("SmartFunding", address, smartFundingABI)
}

// NewContract 解析 ABI，兼容完整的编译输出文件和纯 ABI 数组
func NewContract(name string, address common.Address, abiData []byte) (*Contract, error) {
	var compiledOutput struct {
		ABI json.RawMessage `json:"abi"`
	}

	var parsedABI abi.ABI
	var err error
	if jsonErr := json.Unmarshal(abiData, &compiledOutput); jsonErr == nil && compiledOutput.ABI != nil {
		parsedABI, err = abi.JSON(bytes.NewReader(compiledOutput.ABI))
	} else {
		parsedABI, err = abi.JSON(bytes.NewReader(abiData))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", name, err)
	}

	return &Contract{address: address, abi: parsedABI, name: name}, nil
}

// GetAddress 获取合约地址
func (c *Contract) GetAddress() common.Address {
	return c.address
}

// GetABI 获取合约ABI
func (c *Contract) GetABI() abi.ABI {
	return c.abi
}

// GetName 获取合约名称
func (c *Contract) GetName() string {
	return c.name
}

// EncodeEvent 将众筹池事件编码为日志：topics[0] 为事件签名，topics[1] 为账户地址，data 为非索引参数
func (c *Contract) EncodeEvent(evt funding.Event) (types.Log, error) {
	event, ok := c.abi.Events[string(evt.Kind)]
	if !ok {
		return types.Log{}, fmt.Errorf("%w: %s", ErrUnknownEvent, evt.Kind)
	}

	nonIndexed := event.Inputs.NonIndexed()
	values := make([]interface{}, 0, len(nonIndexed))
	for _, input := range nonIndexed {
		if input.Type.T == abi.UintTy && input.Type.Size == 8 {
			values = append(values, uint8(evt.Stage))
			continue
		}
		amount := evt.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		values = append(values, amount)
	}

	data, err := nonIndexed.Pack(values...)
	if err != nil {
		return types.Log{}, fmt.Errorf("failed to pack %s: %w", evt.Kind, err)
	}

	return types.Log{
		Address: c.address,
		Topics:  []common.Hash{event.ID, common.BytesToHash(evt.Account.Bytes())},
		Data:    data,
		TxHash:  common.BytesToHash(evt.ID[:]),
		Index:   uint(evt.Seq),
	}, nil
}

// ParseEvent 解析事件日志
func (c *Contract) ParseEvent(log types.Log) (map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("%w: log has no topics", ErrUnknownEvent)
	}
	event, err := c.abi.EventByID(log.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, log.Topics[0].Hex())
	}

	result := map[string]interface{}{
		"eventName": event.Name,
		"contract":  c.name,
		"txHash":    log.TxHash.Hex(),
		"logIndex":  log.Index,
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(result, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse topics of %s: %w", event.Name, err)
	}

	if len(event.Inputs.NonIndexed()) > 0 {
		if err := event.Inputs.UnpackIntoMap(result, log.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack %s: %w", event.Name, err)
		}
	}

	return result, nil
}

// DecodeEvent 从日志还原事件。阶段只在 StageChanged 中携带，时间不在日志中
func (c *Contract) DecodeEvent(log types.Log) (funding.Event, error) {
	fields, err := c.ParseEvent(log)
	if err != nil {
		return funding.Event{}, err
	}

	evt := funding.Event{
		Kind: funding.EventKind(fields["eventName"].(string)),
		Pool: log.Address,
		Seq:  uint64(log.Index),
	}
	if id, err := uuid.FromBytes(log.TxHash[common.HashLength-16:]); err == nil {
		evt.ID = id
	}

	for _, key := range []string{"investor", "beneficiary", "caller", "account"} {
		if addr, ok := fields[key].(common.Address); ok {
			evt.Account = addr
			break
		}
	}
	for _, key := range []string{"amount", "goal"} {
		if amount, ok := fields[key].(*big.Int); ok {
			evt.Amount = amount
			break
		}
	}
	if stage, ok := fields["stage"].(uint8); ok {
		evt.Stage = funding.Stage(stage)
	}

	return evt, nil
}
