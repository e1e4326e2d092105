package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blues/smartfunding/internal/access"
	"github.com/blues/smartfunding/internal/chain"
	"github.com/blues/smartfunding/internal/config"
	"github.com/blues/smartfunding/internal/database"
	"github.com/blues/smartfunding/internal/event"
	"github.com/blues/smartfunding/internal/funding"
	"github.com/blues/smartfunding/internal/ledger"
	"github.com/blues/smartfunding/internal/logger"
	"github.com/blues/smartfunding/internal/logic"
	"github.com/blues/smartfunding/internal/router"
	"github.com/blues/smartfunding/internal/task"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	poolAddr := common.HexToAddress(cfg.Funding.Address)
	supply, err := config.ParseAmount(cfg.Funding.RewardSupply)
	if err != nil {
		logger.Fatal("Invalid reward supply: %v", err)
	}

	// 账本：原生货币按 genesis 发放，奖励代币全部存入众筹池账户
	native := ledger.New("native")
	for addr, balance := range cfg.Ledger.Genesis {
		amount, err := config.ParseAmount(balance)
		if err != nil {
			logger.Fatal("Invalid genesis balance of %s: %v", addr, err)
		}
		if err := native.Credit(common.HexToAddress(addr), amount); err != nil {
			logger.Fatal("Failed to credit genesis balance of %s: %v", addr, err)
		}
	}
	rewards := ledger.New("reward")
	if err := rewards.Credit(poolAddr, supply); err != nil {
		logger.Fatal("Failed to mint reward supply: %v", err)
	}

	authority, err := access.NewStaticAuthority(cfg.Funding.Admins)
	if err != nil {
		logger.Fatal("Failed to load admins: %v", err)
	}

	contract, err := chain.NewFundingContract(poolAddr)
	if err != nil {
		logger.Fatal("Failed to load contract ABI: %v", err)
	}

	// 事件分发
	dispatcher, err := event.NewDispatcher(cfg.Dispatcher.Workers)
	if err != nil {
		logger.Fatal("Failed to create event dispatcher: %v", err)
	}
	dispatcher.Register(event.LogProcessor{})

	var db *gorm.DB
	if cfg.Database.Enabled {
		db, err = database.Init(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to initialize database: %v", err)
		}
		dispatcher.Register(event.NewStoreProcessor(logic.NewEventLogic(db, contract)))
	}
	dispatcher.Start()

	opts := funding.Options{
		Address:      poolAddr,
		RewardToken:  common.HexToAddress(cfg.Funding.RewardToken),
		RewardSupply: supply,
		Unit:         cfg.Funding.Unit,
		Native:       ledger.NewAccount(native, poolAddr),
		Rewards:      rewards,
		Authority:    authority,
		Sink:         dispatcher,
	}
	if cfg.Funding.Beneficiary != "" {
		opts.Beneficiary = common.HexToAddress(cfg.Funding.Beneficiary)
	}
	pool, err := funding.New(opts)
	if err != nil {
		logger.Fatal("Failed to create funding pool: %v", err)
	}
	fundingLogic := logic.NewFundingLogic(pool, native, rewards)

	if cfg.Funding.Goal != "" {
		autoInitialize(cfg, fundingLogic)
	}

	// 启动定时任务
	manager, err := task.NewManager()
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	interval := time.Duration(cfg.Task.Interval) * time.Second
	if err := manager.Register(task.NewFundingFinishJob(fundingLogic, poolAddr, interval)); err != nil {
		logger.Fatal("Failed to register job: %v", err)
	}
	if cfg.Task.AutoWithdraw {
		if err := manager.Register(task.NewFundingSettlementJob(fundingLogic, interval)); err != nil {
			logger.Fatal("Failed to register job: %v", err)
		}
	}
	manager.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Setup(fundingLogic, db, contract),
	}

	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}

	manager.Stop()
	dispatcher.Close()
	logger.Info("Server exited")
}

// autoInitialize 使用第一个管理员按配置的目标和时长开启募资
func autoInitialize(cfg *config.Config, fundingLogic *logic.FundingLogic) {
	if len(cfg.Funding.Admins) == 0 {
		logger.Warn("funding.goal is set but no admin configured, skip auto initialize")
		return
	}

	goal, err := config.ParseAmount(cfg.Funding.Goal)
	if err != nil {
		logger.Fatal("Invalid funding goal: %v", err)
	}
	admin := common.HexToAddress(cfg.Funding.Admins[0])
	if err := fundingLogic.Initialize(admin, goal, cfg.Funding.Duration); err != nil {
		logger.Fatal("Failed to auto initialize funding: %v", err)
	}
}
