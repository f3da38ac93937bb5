package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"go-splendor/config"
	"go-splendor/controller"
	"go-splendor/corpus"
	"go-splendor/logger"
	"go-splendor/match"
	"go-splendor/repository"
	"go-splendor/router"
	"go-splendor/service"
	"go-splendor/utils"
	"go-splendor/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("SPLENDOR_CONFIG"), "YAML 配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := repository.InitRedis(cfg.Redis, log)
	if err != nil {
		log.Fatal("❌ Redis 初始化失败", zap.Error(err))
	}
	store := &repository.RoomStore{Rdb: rdb}

	results, err := repository.OpenResultStore(ctx, cfg.Results.Driver, cfg.Results.DSN, log)
	if err != nil {
		log.Fatal("❌ 结果库初始化失败", zap.Error(err))
	}
	defer results.Close()

	var sinks []corpus.Sink
	if cfg.Corpus.Dir != "" {
		sinks = append(sinks, corpus.NewJSONLZstdSink(cfg.Corpus.Dir, cfg.Corpus.Prefix))
	}
	if cfg.Corpus.Redis {
		sinks = append(sinks, &corpus.RedisSink{Rdb: rdb, TTL: cfg.Corpus.RedisTTL})
	}
	if cfg.NATS.Enabled {
		nc, err := corpus.BrokerConnect(cfg.NATS.URL, "go-splendor")
		if err != nil {
			log.Fatal("❌ NATS 连接失败", zap.Error(err))
		}
		sinks = append(sinks, corpus.NewNATSSink(nc, cfg.NATS.Subject))
	}
	recorder := corpus.NewRecorder(log, 5*time.Second, sinks...)
	defer recorder.Close()

	factory, err := match.NewFactory(cfg.Game, cfg.Policy, log)
	if err != nil {
		log.Fatal("❌ 加载对局配置失败", zap.Error(err))
	}

	hub, err := ws.NewHub(factory, log)
	if err != nil {
		log.Fatal("❌ 初始化 WebSocket 失败", zap.Error(err))
	}
	hub.Store = store
	hub.Results = results
	hub.Recorder = recorder
	hub.NoMove = cfg.Game.NoMove
	hub.AIDelay = cfg.Server.AIDelay

	ctl := &controller.Controller{
		Rooms: &service.RoomService{Hub: hub, Store: store, Results: results},
		SelfPlay: &service.SelfPlayService{
			Factory:  factory,
			Results:  results,
			Recorder: recorder,
			NoMove:   cfg.Game.NoMove,
			Workers:  runtime.NumCPU(),
			Log:      log,
		},
		Tokens: utils.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Log:    log,
	}

	r := gin.Default()

	// 设置 CORS 中间件，配置为 * 时允许所有域名
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.AllowOrigins) == 0 || slices.Contains(cfg.Server.AllowOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowOrigins
	}
	r.Use(cors.New(corsCfg))

	router.InitRouter(r, ctl, hub)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("❌ 关闭服务失败", zap.Error(err))
		}
	}()

	log.Info("🚀 服务启动", zap.String("addr", cfg.Server.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("❌ 服务异常退出", zap.Error(err))
	}
}
