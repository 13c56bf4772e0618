package main

import (
	"context"
	"flag"
	"os"
	"runtime/debug"
	"time"

	"token-sweeper-sol/internal/config"
	"token-sweeper-sol/internal/logic/scanner"
	"token-sweeper-sol/internal/logic/submitter"
	"token-sweeper-sol/internal/service"
	"token-sweeper-sol/internal/svc"
	"token-sweeper-sol/pkg/logger"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

var configFile = flag.String("f", "etc/sweeper.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	var c config.SweeperConfig
	conf.MustLoad(*configFile, &c, conf.UseEnv())
	c.FillDefaults()
	if err := c.Validate(); err != nil {
		logx.Errorf("配置校验失败: %v", err)
		os.Exit(1)
	}

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		logx.Errorf("日志初始化失败: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("启动 Solana token 账户清理工具 (burn + close)")
	logger.Infof("RPC Endpoint: %s", c.RpcConf.Endpoint)

	serviceContext, err := svc.NewSweepServiceContext(c)
	if err != nil {
		logger.Errorf("服务上下文初始化失败: %v", err)
		os.Exit(1)
	}
	defer serviceContext.Close()

	wallet := serviceContext.Signer.PublicKey
	logger.Infof("Wallet address: %s", wallet.ToBase58())

	opt := service.SweepServiceOption{
		Scanner: scanner.NewScanner(serviceContext.RawClient, wallet, c.SweepConf.SkipUsdcEnabled()),
		Submitter: submitter.NewSubmitter(
			serviceContext.RpcClient,
			serviceContext.Signer,
			c.SweepConf.ComputeUnitPrice,
			c.SweepConf.ComputeUnitLimit,
			time.Duration(c.SweepConf.ConfirmTimeoutS)*time.Second,
			time.Duration(c.SweepConf.ConfirmPollMs)*time.Millisecond,
		),
		Wallet:          wallet.ToBase58(),
		MaxInstructions: c.SweepConf.MaxInstructions,
	}
	// 接口字段不能直接塞 typed-nil 指针
	if serviceContext.Publisher != nil {
		opt.Publisher = serviceContext.Publisher
	}
	if serviceContext.RunStore != nil {
		opt.Recorder = serviceContext.RunStore
	}
	sweepService := service.NewSweepService(opt)

	if err := sweepService.Run(context.Background()); err != nil {
		logger.Errorf("清理运行失败: %v", err)
		logger.Sync()
		os.Exit(1)
	}

	logger.Infof("Token account cleanup completed successfully")
}
