package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go-splendor/engine"
	"go-splendor/policy"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 所有环境变量的前缀，例如 SPLENDOR_REDIS_ADDR
const EnvPrefix = "SPLENDOR_"

type Config struct {
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Redis   RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	Results ResultsConfig `yaml:"results" envPrefix:"RESULTS_"`
	NATS    NATSConfig    `yaml:"nats" envPrefix:"NATS_"`
	Corpus  CorpusConfig  `yaml:"corpus" envPrefix:"CORPUS_"`
	Auth    AuthConfig    `yaml:"auth" envPrefix:"AUTH_"`
	Game    GameConfig    `yaml:"game" envPrefix:"GAME_"`
	Policy  PolicyConfig  `yaml:"policy" envPrefix:"POLICY_"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	AllowOrigins []string      `yaml:"allowOrigins" env:"ALLOW_ORIGINS" envSeparator:","`
	AIDelay      time.Duration `yaml:"aiDelay" env:"AI_DELAY"` // AI 出手前的停顿，方便前端展示
}

type LogConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// ResultsConfig 对局结果库，driver 为 mysql 或 sqlite
type ResultsConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

type NATSConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	URL     string `yaml:"url" env:"URL"`
	Subject string `yaml:"subject" env:"SUBJECT"`
}

type CorpusConfig struct {
	Dir      string        `yaml:"dir" env:"DIR"` // 为空则不写文件
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	Redis    bool          `yaml:"redis" env:"REDIS"`
	RedisTTL time.Duration `yaml:"redisTTL" env:"REDIS_TTL"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"SECRET"`
	TokenTTL time.Duration `yaml:"tokenTTL" env:"TOKEN_TTL"`
}

// NoMovePolicy 当前玩家没有合法动作时的处理方式
type NoMovePolicy string

const (
	NoMovePass NoMovePolicy = "pass"
	NoMoveEnd  NoMovePolicy = "end"
)

type GameConfig struct {
	PointTarget  int          `yaml:"pointTarget" env:"POINT_TARGET"`
	Wildcards    int          `yaml:"wildcards" env:"WILDCARDS"`
	GemSupply    map[int]int  `yaml:"gemSupply"` // 人数 -> 每色数量
	VisibleSlots int          `yaml:"visibleSlots" env:"VISIBLE_SLOTS"`
	CardsFile    string       `yaml:"cardsFile" env:"CARDS_FILE"` // 为空使用内置数据
	Seed         uint64       `yaml:"seed" env:"SEED"`            // 0 表示按时间取种子
	NoMove       NoMovePolicy `yaml:"noMove" env:"NO_MOVE"`
}

type PolicyConfig struct {
	policy.Options `yaml:",inline"`

	Evaluator string           `yaml:"evaluator" env:"EVALUATOR"` // heuristic 或 http
	ScorerURL string           `yaml:"scorerURL" env:"SCORER_URL"`
	TieBreak  string           `yaml:"tieBreak" env:"TIE_BREAK"` // random / proximity / lookahead
	Schedule  policy.Schedule  `yaml:"schedule" envPrefix:"SCHEDULE_"`
	Heuristic policy.Heuristic `yaml:"heuristic"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8000",
			AllowOrigins: []string{"*"},
			AIDelay:      time.Second,
		},
		Log:     LogConfig{Level: "info"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Results: ResultsConfig{Driver: "sqlite", DSN: "file:results.db?_pragma=busy_timeout(5000)"},
		NATS:    NATSConfig{Subject: "corpus.records"},
		Corpus:  CorpusConfig{Prefix: "corpus", RedisTTL: 24 * time.Hour},
		Auth:    AuthConfig{Secret: "change-me", TokenTTL: 24 * time.Hour},
		Game: GameConfig{
			PointTarget:  engine.DefaultPointTarget,
			Wildcards:    engine.DefaultWildcards,
			VisibleSlots: engine.VisibleSlots,
			NoMove:       NoMovePass,
		},
		Policy: PolicyConfig{
			Options:   policy.Options{Temperature: 1, Budget: 2 * time.Second},
			Evaluator: "heuristic",
			ScorerURL: policy.DefaultScorerURL,
			TieBreak:  "proximity",
			Schedule:  policy.Schedule{Start: 1, End: 0.1, Games: 100, Decay: policy.DecayLinear},
			Heuristic: policy.DefaultHeuristic(),
		},
	}
}

// Load 先读 YAML（path 为空则跳过），再用环境变量覆盖
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ParseEnv 用带前缀的环境变量覆盖已有的值
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Results.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("results.driver %q: want sqlite or mysql", c.Results.Driver))
	}
	switch c.Game.NoMove {
	case NoMovePass, NoMoveEnd:
	default:
		errs = append(errs, fmt.Errorf("game.noMove %q: want pass or end", c.Game.NoMove))
	}
	if c.Game.PointTarget <= 0 {
		errs = append(errs, errors.New("game.pointTarget must be positive"))
	}
	// 特征向量按每层 engine.VisibleSlots 个槽位定长编码
	if c.Game.VisibleSlots < 0 || c.Game.VisibleSlots > engine.VisibleSlots {
		errs = append(errs, fmt.Errorf("game.visibleSlots %d: want 0..%d", c.Game.VisibleSlots, engine.VisibleSlots))
	}
	for n, v := range c.Game.GemSupply {
		if n < engine.MinPlayers || n > engine.MaxPlayers || v <= 0 {
			errs = append(errs, fmt.Errorf("game.gemSupply[%d] = %d", n, v))
		}
	}
	switch c.Policy.Evaluator {
	case "heuristic", "http":
	default:
		errs = append(errs, fmt.Errorf("policy.evaluator %q: want heuristic or http", c.Policy.Evaluator))
	}
	switch c.Policy.TieBreak {
	case "random", "proximity", "lookahead":
	default:
		errs = append(errs, fmt.Errorf("policy.tieBreak %q", c.Policy.TieBreak))
	}
	if c.Policy.Temperature < 0 {
		errs = append(errs, errors.New("policy.temperature must be >= 0"))
	}
	if err := c.Policy.Schedule.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy.schedule: %w", err))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is empty"))
	}
	return errors.Join(errs...)
}
