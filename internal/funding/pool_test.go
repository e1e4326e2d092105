package funding

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/blues/smartfunding/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	poolAddr    = common.HexToAddress("0x00000000000000000000000000000000000f0001")
	tokenAddr   = common.HexToAddress("0x00000000000000000000000000000000000f0002")
	beneficiary = common.HexToAddress("0x4Cb093f226983713164A62138C3F718A5b595F73")
	owner       = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	investorX   = common.HexToAddress("0x0000000000000000000000000000000000000b01")
	investorY   = common.HexToAddress("0x0000000000000000000000000000000000000b02")
	investorZ   = common.HexToAddress("0x0000000000000000000000000000000000000b03")
)

// milliEther n * 10^15
func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e15))
}

// tokens n * 10^18
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type adminOnly struct {
	admin common.Address
}

func (a adminOnly) IsAuthorized(caller common.Address, _ Action) bool {
	return caller == a.admin
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Publish(evt Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
}

func (l *eventLog) kinds() []EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]EventKind, 0, len(l.events))
	for _, evt := range l.events {
		kinds = append(kinds, evt.Kind)
	}
	return kinds
}

type failingPayer struct {
	err error
}

func (f failingPayer) Pay(context.Context, common.Address, *big.Int) error {
	return f.err
}

type fixture struct {
	pool   *Pool
	native *ledger.Ledger
	token  *ledger.Ledger
	clock  *fakeClock
	events *eventLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		native: ledger.New("native"),
		token:  ledger.New("token"),
		clock:  &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		events: &eventLog{},
	}
	require.NoError(t, f.token.Credit(poolAddr, tokens(1_000_000)))

	pool, err := New(Options{
		Address:      poolAddr,
		RewardToken:  tokenAddr,
		Beneficiary:  beneficiary,
		RewardSupply: tokens(1_000_000),
		Native:       ledger.NewAccount(f.native, poolAddr),
		Rewards:      f.token,
		Authority:    adminOnly{admin: owner},
		Sink:         f.events,
		Now:          f.clock.Now,
	})
	require.NoError(t, err)
	f.pool = pool
	return f
}

// initialized goal = 1 ether, 7 days
func newFunding(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	require.NoError(t, f.pool.Initialize(owner, milliEther(1000), 7))
	return f
}

// invest 模拟资金到账后记录投资
func (f *fixture) invest(t *testing.T, who common.Address, amount *big.Int) {
	t.Helper()
	require.NoError(t, f.native.Credit(poolAddr, amount))
	require.NoError(t, f.pool.Invest(who, amount))
}

func (f *fixture) finalizeAfterDeadline(t *testing.T) Stage {
	t.Helper()
	f.clock.Advance(7*DefaultUnit + time.Second)
	stage, err := f.pool.Finalize(investorZ)
	require.NoError(t, err)
	return stage
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{RewardSupply: big.NewInt(0)})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = New(Options{RewardSupply: big.NewInt(1)})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Now()

	require.NoError(t, f.pool.Initialize(owner, milliEther(1000), 7))

	s := f.pool.Summary()
	assert.Equal(t, StageFunding, s.Stage)
	assert.Equal(t, 0, milliEther(1000).Cmp(s.Goal))
	assert.Equal(t, start.Add(7*24*time.Hour), s.Deadline)

	err := f.pool.Initialize(owner, milliEther(5000), 3)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, 0, milliEther(1000).Cmp(f.pool.Summary().Goal), "goal must not be reset")
}

func TestInitialize_Rejections(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.pool.Initialize(investorX, milliEther(1000), 7), ErrUnauthorized)
	assert.ErrorIs(t, f.pool.Initialize(owner, big.NewInt(0), 7), ErrInvalidParameter)
	assert.ErrorIs(t, f.pool.Initialize(owner, big.NewInt(-5), 7), ErrInvalidParameter)
	assert.ErrorIs(t, f.pool.Initialize(owner, nil, 7), ErrInvalidParameter)
	assert.ErrorIs(t, f.pool.Initialize(owner, milliEther(1000), 0), ErrInvalidParameter)
	assert.ErrorIs(t, f.pool.Initialize(owner, milliEther(1000), -1), ErrInvalidParameter)

	assert.Equal(t, StageCreated, f.pool.Stage())
	assert.Empty(t, f.events.kinds())
}

// goal = 1, supply = 1,000,000: X 0.1, Y 0.2, Z 0 rejected
func TestInvest_ScenarioA(t *testing.T) {
	f := newFunding(t)

	f.invest(t, investorX, milliEther(100))
	f.invest(t, investorY, milliEther(200))
	err := f.pool.Invest(investorZ, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, 0, milliEther(300).Cmp(f.pool.Summary().Pool))
	assert.Equal(t, 0, milliEther(100).Cmp(f.pool.InvestOf(investorX)))
	assert.Equal(t, 0, milliEther(200).Cmp(f.pool.InvestOf(investorY)))
	assert.Equal(t, 0, tokens(100_000).Cmp(f.pool.RewardOf(investorX)))
	assert.Equal(t, 0, tokens(200_000).Cmp(f.pool.RewardOf(investorY)))
	assert.Equal(t, 0, f.pool.InvestOf(investorZ).Sign())

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	require.Len(t, f.events.events, 3)
	invest := f.events.events[1]
	assert.Equal(t, EventInvest, invest.Kind)
	assert.Equal(t, investorX, invest.Account)
	assert.Equal(t, 0, milliEther(100).Cmp(invest.Amount))
	assert.Equal(t, uint64(2), invest.Seq)
}

func TestInvest_Rejections(t *testing.T) {
	t.Run("before initialize", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.pool.Invest(investorX, milliEther(1)), ErrNotFundingStage)
	})

	t.Run("invalid amounts", func(t *testing.T) {
		f := newFunding(t)
		assert.ErrorIs(t, f.pool.Invest(investorX, nil), ErrInvalidAmount)
		assert.ErrorIs(t, f.pool.Invest(investorX, big.NewInt(-1)), ErrInvalidAmount)
	})

	t.Run("paused", func(t *testing.T) {
		f := newFunding(t)
		require.NoError(t, f.pool.Pause(owner))
		assert.ErrorIs(t, f.pool.Invest(investorX, milliEther(1)), ErrPaused)

		require.NoError(t, f.pool.Unpause(owner))
		assert.NoError(t, f.pool.Invest(investorX, milliEther(1)))
	})

	t.Run("after deadline", func(t *testing.T) {
		f := newFunding(t)
		f.clock.Advance(7 * DefaultUnit)
		err := f.pool.Invest(investorX, milliEther(1))
		assert.ErrorIs(t, err, ErrFundingClosed)
		assert.ErrorIs(t, err, ErrNotFundingStage)
		assert.Equal(t, StageFunding, f.pool.Stage())
		assert.Equal(t, 0, f.pool.Summary().Pool.Sign())
	})

	t.Run("after finalize", func(t *testing.T) {
		f := newFunding(t)
		f.finalizeAfterDeadline(t)
		assert.ErrorIs(t, f.pool.Invest(investorX, milliEther(1)), ErrNotFundingStage)
	})
}

func TestInvest_AllowsOverpay(t *testing.T) {
	f := newFunding(t)

	f.invest(t, investorX, milliEther(1500))
	f.invest(t, investorX, milliEther(500))

	assert.Equal(t, 0, milliEther(2000).Cmp(f.pool.InvestOf(investorX)))
	assert.Equal(t, 0, tokens(1_000_000).Cmp(f.pool.RewardOf(investorX)))
}

func TestCalculateReward(t *testing.T) {
	f := newFunding(t)
	supply := tokens(1_000_000)

	tests := []struct {
		name   string
		amount *big.Int
		want   *big.Int
	}{
		{"zero", big.NewInt(0), big.NewInt(0)},
		{"nil", nil, big.NewInt(0)},
		{"negative", big.NewInt(-1), big.NewInt(0)},
		{"one wei", big.NewInt(1), big.NewInt(1_000_000)},
		{"tenth", milliEther(100), tokens(100_000)},
		{"exact goal", milliEther(1000), supply},
		{"overpay double", milliEther(2000), supply},
		{"just above goal", new(big.Int).Add(milliEther(1000), big.NewInt(1)), supply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.pool.CalculateReward(tt.amount)
			assert.Equal(t, 0, tt.want.Cmp(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCalculateReward_Truncates(t *testing.T) {
	// 7 * 10 / 3 = 23.33 -> 23
	got := CalculateReward(big.NewInt(7), big.NewInt(10), big.NewInt(3))
	assert.Equal(t, int64(10), got.Int64(), "capped at supply")

	got = CalculateReward(big.NewInt(2), big.NewInt(10), big.NewInt(3))
	assert.Equal(t, int64(6), got.Int64())

	got = CalculateReward(big.NewInt(1), big.NewInt(1), big.NewInt(3))
	assert.Equal(t, int64(0), got.Int64())
}

func TestCalculateReward_BeforeInitialize(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 0, f.pool.CalculateReward(milliEther(100)).Sign())
}

// goal = 1: X 0.9, Y 0.1 -> Success, Y claims
func TestClaim_ScenarioB(t *testing.T) {
	f := newFunding(t)
	f.invest(t, investorX, milliEther(900))
	f.invest(t, investorY, milliEther(100))
	assert.Equal(t, StageSuccess, f.finalizeAfterDeadline(t))

	reserveBefore := f.token.BalanceOf(poolAddr)

	reward, err := f.pool.Claim(context.Background(), investorY)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens(100_000).Cmp(reward))

	assert.True(t, f.pool.Claimed(investorY))
	assert.Equal(t, 0, f.pool.RewardOf(investorY).Sign())
	assert.Equal(t, 0, tokens(100_000).Cmp(f.token.BalanceOf(investorY)))
	assert.Equal(t, 0, new(big.Int).Sub(reserveBefore, tokens(100_000)).Cmp(f.token.BalanceOf(poolAddr)))
	assert.Equal(t, 0, milliEther(100).Cmp(f.pool.InvestOf(investorY)), "contribution kept for audit")

	_, err = f.pool.Claim(context.Background(), investorY)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, 0, tokens(100_000).Cmp(f.token.BalanceOf(investorY)), "no second transfer")
}

func TestClaim_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("not success stage", func(t *testing.T) {
		f := newFunding(t)
		f.invest(t, investorX, milliEther(100))

		_, err := f.pool.Claim(ctx, investorX)
		assert.ErrorIs(t, err, ErrNotSuccessStage)
		assert.ErrorIs(t, err, ErrNoReward)

		assert.Equal(t, StageFailed, f.finalizeAfterDeadline(t))
		_, err = f.pool.Claim(ctx, investorX)
		assert.ErrorIs(t, err, ErrNotSuccessStage)
	})

	t.Run("zero contribution", func(t *testing.T) {
		f := newFunding(t)
		f.invest(t, investorX, milliEther(1000))
		f.finalizeAfterDeadline(t)

		_, err := f.pool.Claim(ctx, investorZ)
		assert.ErrorIs(t, err, ErrNoReward)
		assert.NotErrorIs(t, err, ErrNotSuccessStage)
		assert.False(t, f.pool.Claimed(investorZ))
	})

	t.Run("stage checked before contribution", func(t *testing.T) {
		f := newFunding(t)
		_, err := f.pool.Claim(ctx, investorZ)
		assert.ErrorIs(t, err, ErrNotSuccessStage)
	})
}

func TestClaim_TransferFailureRollsBack(t *testing.T) {
	native := ledger.New("native")
	token := ledger.New("token")
	clock := &fakeClock{now: time.Now()}
	events := &eventLog{}

	pool, err := New(Options{
		Address:      poolAddr,
		RewardSupply: tokens(1_000_000),
		Native:       ledger.NewAccount(native, poolAddr),
		Rewards:      token, // 储备为空
		Authority:    adminOnly{admin: owner},
		Sink:         events,
		Now:          clock.Now,
	})
	require.NoError(t, err)
	require.NoError(t, pool.Initialize(owner, milliEther(1000), 1))
	require.NoError(t, pool.Invest(investorX, milliEther(1000)))
	_, err = pool.Finalize(owner)
	require.NoError(t, err)

	_, err = pool.Claim(context.Background(), investorX)
	require.ErrorIs(t, err, ErrTransferFailed)
	assert.False(t, pool.Claimed(investorX))
	assert.Equal(t, 0, tokens(1_000_000).Cmp(pool.RewardOf(investorX)))
	assert.NotContains(t, events.kinds(), EventClaim)

	require.NoError(t, token.Credit(poolAddr, tokens(1_000_000)))
	reward, err := pool.Claim(context.Background(), investorX)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens(1_000_000).Cmp(reward))
}

// goal = 1: X 0.9 -> Failed, X refunds
func TestRefund_ScenarioC(t *testing.T) {
	f := newFunding(t)
	f.invest(t, investorX, milliEther(900))
	assert.Equal(t, StageFailed, f.finalizeAfterDeadline(t))

	amount, err := f.pool.Refund(context.Background(), investorX)
	require.NoError(t, err)
	assert.Equal(t, 0, milliEther(900).Cmp(amount))

	assert.Equal(t, 0, milliEther(900).Cmp(f.native.BalanceOf(investorX)))
	assert.Equal(t, 0, f.native.BalanceOf(poolAddr).Sign())
	assert.Equal(t, 0, f.pool.Summary().Pool.Sign())
	assert.Equal(t, 0, f.pool.InvestOf(investorX).Sign())

	_, err = f.pool.Refund(context.Background(), investorX)
	assert.ErrorIs(t, err, ErrNoInvestment)
	assert.Equal(t, 0, milliEther(900).Cmp(f.native.BalanceOf(investorX)))
}

func TestRefund_Rejections(t *testing.T) {
	ctx := context.Background()

	f := newFunding(t)
	f.invest(t, investorX, milliEther(100))

	_, err := f.pool.Refund(ctx, investorX)
	assert.ErrorIs(t, err, ErrNotFailedStage)
	assert.ErrorIs(t, err, ErrNoInvestment)

	f.finalizeAfterDeadline(t)
	_, err = f.pool.Refund(ctx, investorY)
	assert.ErrorIs(t, err, ErrNoInvestment)
	assert.NotErrorIs(t, err, ErrNotFailedStage)
}

func TestRefund_TransferFailureRollsBack(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	pool, err := New(Options{
		Address:      poolAddr,
		RewardSupply: tokens(1),
		Native:       failingPayer{err: errors.New("channel down")},
		Rewards:      ledger.New("token"),
		Authority:    adminOnly{admin: owner},
		Now:          clock.Now,
	})
	require.NoError(t, err)
	require.NoError(t, pool.Initialize(owner, milliEther(1000), 1))
	require.NoError(t, pool.Invest(investorX, milliEther(400)))
	_, err = pool.Finalize(owner)
	require.NoError(t, err)

	_, err = pool.Refund(context.Background(), investorX)
	require.ErrorIs(t, err, ErrTransferFailed)
	assert.Contains(t, err.Error(), "channel down")
	assert.Equal(t, 0, milliEther(400).Cmp(pool.InvestOf(investorX)))
	assert.Equal(t, 0, milliEther(400).Cmp(pool.Summary().Pool))
}

// amount = 2 * goal
func TestReward_ScenarioD(t *testing.T) {
	f := newFunding(t)
	assert.Equal(t, 0, tokens(1_000_000).Cmp(f.pool.CalculateReward(milliEther(2000))))
}

func TestFinalize(t *testing.T) {
	t.Run("created stage", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.pool.Finalize(owner)
		assert.ErrorIs(t, err, ErrNotFundingStage)
	})

	t.Run("before deadline requires authority", func(t *testing.T) {
		f := newFunding(t)
		f.invest(t, investorX, milliEther(1000))

		_, err := f.pool.Finalize(investorX)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, StageFunding, f.pool.Stage())

		stage, err := f.pool.Finalize(owner)
		require.NoError(t, err)
		assert.Equal(t, StageSuccess, stage)
	})

	t.Run("after deadline anyone", func(t *testing.T) {
		f := newFunding(t)
		assert.Equal(t, StageFailed, f.finalizeAfterDeadline(t))
	})

	t.Run("exactly once", func(t *testing.T) {
		f := newFunding(t)
		f.finalizeAfterDeadline(t)

		stage, err := f.pool.Finalize(owner)
		assert.ErrorIs(t, err, ErrAlreadyFinalized)
		assert.Equal(t, StageFailed, stage)
		assert.ErrorIs(t, f.pool.Initialize(owner, milliEther(1), 1), ErrAlreadyInitialized)

		var changes int
		for _, kind := range f.events.kinds() {
			if kind == EventStageChanged {
				changes++
			}
		}
		assert.Equal(t, 1, changes)
	})
}

func TestPause_DoesNotBlockExits(t *testing.T) {
	ctx := context.Background()

	t.Run("claim", func(t *testing.T) {
		f := newFunding(t)
		f.invest(t, investorX, milliEther(1000))
		f.finalizeAfterDeadline(t)
		require.NoError(t, f.pool.Pause(owner))

		_, err := f.pool.Claim(ctx, investorX)
		assert.NoError(t, err)
	})

	t.Run("refund", func(t *testing.T) {
		f := newFunding(t)
		f.invest(t, investorX, milliEther(10))
		require.NoError(t, f.pool.Pause(owner))
		f.finalizeAfterDeadline(t)

		_, err := f.pool.Refund(ctx, investorX)
		assert.NoError(t, err)
	})

	t.Run("authority", func(t *testing.T) {
		f := newFunding(t)
		assert.ErrorIs(t, f.pool.Pause(investorX), ErrUnauthorized)
		assert.ErrorIs(t, f.pool.Unpause(investorX), ErrUnauthorized)
	})

	t.Run("idempotent toggle", func(t *testing.T) {
		f := newFunding(t)
		require.NoError(t, f.pool.Pause(owner))
		require.NoError(t, f.pool.Pause(owner))
		assert.True(t, f.pool.Summary().Paused)
		assert.Equal(t, []EventKind{EventInitialized, EventPaused}, f.events.kinds())
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	f := newFunding(t)
	f.invest(t, investorX, milliEther(700))
	f.invest(t, investorY, milliEther(600))

	_, err := f.pool.Withdraw(ctx, beneficiary)
	assert.ErrorIs(t, err, ErrNotSucceeded)
	assert.NotErrorIs(t, err, ErrNoReward)

	f.finalizeAfterDeadline(t)

	_, err = f.pool.Withdraw(ctx, investorX)
	assert.ErrorIs(t, err, ErrUnauthorized)

	amount, err := f.pool.Withdraw(ctx, beneficiary)
	require.NoError(t, err)
	assert.Equal(t, 0, milliEther(1300).Cmp(amount))
	assert.Equal(t, 0, milliEther(1300).Cmp(f.native.BalanceOf(beneficiary)))
	assert.Equal(t, 0, f.pool.Summary().Pool.Sign())
	assert.True(t, f.pool.Summary().Withdrawn)

	_, err = f.pool.Withdraw(ctx, owner)
	assert.ErrorIs(t, err, ErrAlreadyWithdrawn)

	// 提取后仍可领取奖励
	reward, err := f.pool.Claim(ctx, investorX)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens(700_000).Cmp(reward))
}

func TestClaim_OverpaidRoundNeverExceedsSupply(t *testing.T) {
	ctx := context.Background()

	f := newFunding(t)
	f.invest(t, investorX, milliEther(700))
	f.invest(t, investorY, milliEther(600))
	f.invest(t, investorZ, milliEther(100))
	require.Equal(t, StageSuccess, f.finalizeAfterDeadline(t))

	// 按公式 X 700k、Y 600k，合计超过 1,000,000
	assert.Equal(t, 0, tokens(700_000).Cmp(f.pool.CalculateReward(milliEther(700))))
	assert.Equal(t, 0, tokens(600_000).Cmp(f.pool.CalculateReward(milliEther(600))))

	reward, err := f.pool.Claim(ctx, investorX)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens(700_000).Cmp(reward))

	assert.Equal(t, 0, tokens(300_000).Cmp(f.pool.RewardOf(investorY)))
	reward, err = f.pool.Claim(ctx, investorY)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens(300_000).Cmp(reward))
	assert.True(t, f.pool.Claimed(investorY))

	assert.Equal(t, 0, f.token.BalanceOf(poolAddr).Sign())
	assert.Equal(t, 0, tokens(1_000_000).Cmp(f.pool.Summary().Distributed))
	assert.Equal(t, 0, tokens(1_000_000).Cmp(new(big.Int).Add(f.token.BalanceOf(investorX), f.token.BalanceOf(investorY))))

	// 奖励发完后，后来者没有可领取的奖励，且不会被标记为已领取
	assert.Equal(t, 0, f.pool.RewardOf(investorZ).Sign())
	_, err = f.pool.Claim(ctx, investorZ)
	assert.ErrorIs(t, err, ErrNoReward)
	assert.False(t, f.pool.Claimed(investorZ))
}

func TestWithdraw_NoBeneficiary(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	native := ledger.New("native")
	pool, err := New(Options{
		Address:      poolAddr,
		RewardSupply: tokens(1),
		Native:       ledger.NewAccount(native, poolAddr),
		Rewards:      ledger.New("token"),
		Authority:    adminOnly{admin: owner},
		Now:          clock.Now,
	})
	require.NoError(t, err)
	require.NoError(t, pool.Initialize(owner, big.NewInt(1), 1))
	require.NoError(t, pool.Invest(investorX, big.NewInt(1)))
	_, err = pool.Finalize(owner)
	require.NoError(t, err)

	_, err = pool.Withdraw(context.Background(), owner)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestInvest_ConcurrentConservation(t *testing.T) {
	f := newFunding(t)

	investors := []common.Address{investorX, investorY, investorZ}
	const perInvestor = 200

	var wg sync.WaitGroup
	for _, who := range investors {
		for i := 0; i < perInvestor; i++ {
			wg.Add(1)
			go func(who common.Address) {
				defer wg.Done()
				assert.NoError(t, f.pool.Invest(who, big.NewInt(3)))
			}(who)
		}
	}
	wg.Wait()

	sum := new(big.Int)
	for _, who := range investors {
		sum.Add(sum, f.pool.InvestOf(who))
		assert.Equal(t, int64(3*perInvestor), f.pool.InvestOf(who).Int64())
	}
	assert.Equal(t, 0, sum.Cmp(f.pool.Summary().Pool))

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	for i, evt := range f.events.events {
		assert.Equal(t, uint64(i+1), evt.Seq)
	}
}

func TestSummary_InvestorCount(t *testing.T) {
	f := newFunding(t)
	f.invest(t, investorX, milliEther(10))
	f.invest(t, investorY, milliEther(10))
	assert.Equal(t, 2, f.pool.Summary().InvestorCount)

	f.finalizeAfterDeadline(t)
	_, err := f.pool.Refund(context.Background(), investorX)
	require.NoError(t, err)
	assert.Equal(t, 1, f.pool.Summary().InvestorCount)

	inv := f.pool.Investor(investorY)
	assert.Equal(t, investorY, inv.Address)
	assert.Equal(t, 0, milliEther(10).Cmp(inv.Invest))
	assert.False(t, inv.Claimed)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "created", StageCreated.String())
	assert.Equal(t, "funding", StageFunding.String())
	assert.Equal(t, "success", StageSuccess.String())
	assert.Equal(t, "failed", StageFailed.String())
	assert.Equal(t, "unknown", Stage(9).String())
	assert.True(t, StageFailed.IsFinal())
	assert.False(t, StageFunding.IsFinal())
}
