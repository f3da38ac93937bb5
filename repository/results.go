package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-splendor/engine"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ResultRow 一局结束后每个玩家一行
type ResultRow struct {
	RoomID     string    `json:"roomID"`
	GameID     string    `json:"gameID"`
	PlayerID   string    `json:"playerID"`
	Seat       int       `json:"seat"`
	Rank       int       `json:"rank"`
	Points     int       `json:"points"`
	Cards      int       `json:"cards"`
	Objectives int       `json:"objectives"`
	Gems       int       `json:"gems"`
	Turns      int       `json:"turns"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ResultStore 对局结果，生产用 mysql，本地和测试用 sqlite
type ResultStore struct {
	db  *sql.DB
	log *zap.Logger
}

const createResults = `CREATE TABLE IF NOT EXISTS game_results (
	room_id     VARCHAR(64) NOT NULL,
	game_id     VARCHAR(64) NOT NULL,
	player_id   VARCHAR(64) NOT NULL,
	seat        INT NOT NULL,
	player_rank INT NOT NULL,
	points      INT NOT NULL,
	cards       INT NOT NULL,
	objectives  INT NOT NULL,
	gems        INT NOT NULL,
	turns       INT NOT NULL,
	finished_at BIGINT NOT NULL,
	PRIMARY KEY (game_id, player_id)
)`

func OpenResultStore(ctx context.Context, driver, dsn string, log *zap.Logger) (*ResultStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开结果库失败: %w", err)
	}
	if driver == "sqlite" {
		// 单连接，避免 database is locked
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("连接结果库失败: %w", err)
	}
	if _, err := db.ExecContext(ctx, createResults); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("建表失败: %w", err)
	}
	log.Info("✅ 结果库就绪", zap.String("driver", driver))
	return &ResultStore{db: db, log: log}, nil
}

func (s *ResultStore) Close() error { return s.db.Close() }

// SaveStandings 写入一局的最终排名，同一局重复写入会失败
func (s *ResultStore) SaveStandings(ctx context.Context, roomID string, state *engine.GameState, standings []engine.Standing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, st := range standings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_results (room_id, game_id, player_id, seat, player_rank, points, cards, objectives, gems, turns, finished_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			roomID, state.ID, st.PlayerID, st.Player, st.Rank, st.Points, st.Cards, st.Objectives, st.Gems, state.Turn, now)
		if err != nil {
			return fmt.Errorf("写入对局结果失败: %w", err)
		}
	}
	return tx.Commit()
}

// Results 某个房间的所有对局结果，最近的在前
func (s *ResultStore) Results(ctx context.Context, roomID string) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, game_id, player_id, seat, player_rank, points, cards, objectives, gems, turns, finished_at
		 FROM game_results WHERE room_id = ? ORDER BY finished_at DESC, game_id, player_rank`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var (
			r  ResultRow
			ms int64
		)
		if err := rows.Scan(&r.RoomID, &r.GameID, &r.PlayerID, &r.Seat, &r.Rank, &r.Points,
			&r.Cards, &r.Objectives, &r.Gems, &r.Turns, &ms); err != nil {
			return nil, err
		}
		r.FinishedAt = time.UnixMilli(ms)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Wins 每个玩家的胜场数
func (s *ResultStore) Wins(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, COUNT(*) FROM game_results WHERE player_rank = 1 GROUP BY player_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// Observer 挂到 TurnEngine 上，游戏结束时写入结果
func (s *ResultStore) Observer(roomID string) engine.StepObserver {
	return resultObserver{store: s, roomID: roomID}
}

type resultObserver struct {
	store  *ResultStore
	roomID string
}

func (resultObserver) OnStep(*engine.GameState, int, engine.Action) {}

func (o resultObserver) OnGameEnd(s *engine.GameState, standings []engine.Standing) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.store.SaveStandings(ctx, o.roomID, s, standings); err != nil {
		o.store.log.Error("❌ 保存对局结果失败", zap.String("roomID", o.roomID), zap.String("gameID", s.ID), zap.Error(err))
	}
}
