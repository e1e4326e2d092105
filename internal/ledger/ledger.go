// Package ledger 进程内的余额账本，作为原生货币通道和奖励代币存储使用
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// Ledger 余额账本
type Ledger struct {
	mu       sync.RWMutex
	name     string
	balances map[common.Address]*big.Int
	supply   *big.Int
}

// New 创建账本
func New(name string) *Ledger {
	return &Ledger{
		name:     name,
		balances: make(map[common.Address]*big.Int),
		supply:   new(big.Int),
	}
}

// Name 账本名称
func (l *Ledger) Name() string {
	return l.name
}

// Credit 给账户增加余额（创世分配）
func (l *Ledger) Credit(addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%s credit: %w", l.name, ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balanceLocked(addr)
	balance.Add(balance, amount)
	l.supply.Add(l.supply, amount)
	return nil
}

// Transfer 转账，余额不足时返回错误且不改变任何余额
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%s transfer: %w", l.name, ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.balanceLocked(from)
	if src.Cmp(amount) < 0 {
		return fmt.Errorf("%s transfer %s -> %s: %w (have %s, need %s)",
			l.name, from.Hex(), to.Hex(), ErrInsufficientBalance, src, amount)
	}
	src.Sub(src, amount)
	dst := l.balanceLocked(to)
	dst.Add(dst, amount)
	return nil
}

// BalanceOf 查询余额
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if balance, ok := l.balances[addr]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

// TotalSupply 账本总量
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.supply)
}

func (l *Ledger) balanceLocked(addr common.Address) *big.Int {
	balance, ok := l.balances[addr]
	if !ok {
		balance = new(big.Int)
		l.balances[addr] = balance
	}
	return balance
}

// Account 以某个账户为付款方的转出通道
type Account struct {
	ledger *Ledger
	from   common.Address
}

// NewAccount 创建转出通道
func NewAccount(l *Ledger, from common.Address) *Account {
	return &Account{ledger: l, from: from}
}

// Pay 从账户付款给 to
func (a *Account) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	return a.ledger.Transfer(ctx, a.from, to, amount)
}

// Address 付款账户地址
func (a *Account) Address() common.Address {
	return a.from
}
