package access

import (
	"fmt"
	"sync"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/ethereum/go-ethereum/common"
)

// StaticAuthority 基于管理员列表的权限解析，管理员拥有全部操作权限
type StaticAuthority struct {
	mu     sync.RWMutex
	admins map[common.Address]struct{}
}

// NewStaticAuthority 从十六进制地址列表创建
func NewStaticAuthority(admins []string) (*StaticAuthority, error) {
	a := &StaticAuthority{admins: make(map[common.Address]struct{})}
	for _, admin := range admins {
		if !common.IsHexAddress(admin) {
			return nil, fmt.Errorf("invalid admin address: %q", admin)
		}
		a.admins[common.HexToAddress(admin)] = struct{}{}
	}
	return a, nil
}

// Grant 添加管理员
func (a *StaticAuthority) Grant(addr common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.admins[addr] = struct{}{}
}

// Revoke 移除管理员
func (a *StaticAuthority) Revoke(addr common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.admins, addr)
}

// IsAuthorized 实现 funding.Authority 接口
func (a *StaticAuthority) IsAuthorized(caller common.Address, action funding.Action) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.admins[caller]
	return ok
}
