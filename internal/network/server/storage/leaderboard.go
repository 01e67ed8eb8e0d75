package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mpopesco/whist-go/internal/network/protocol"
)

const (
	playerStatsKey = "whist:player:stats:"
	rankingKey     = "whist:leaderboard:points"

	defaultTopCount = 10
	maxTopCount     = 100
)

// PlayerStats 玩家跨场次统计。以昵称为主键：连接 ID 每次都是新的，
// 重连后还能对上号的只有名字。
type PlayerStats struct {
	PlayerName string `json:"player_name"`

	Matches int `json:"matches"` // 总场次
	Wins    int `json:"wins"`    // 拿到第一的场次

	TotalPoints int `json:"total_points"` // 历史总分，可为负
	BestScore   int `json:"best_score"`   // 单场最高分

	WinStreak    int `json:"win_streak"`     // 当前连冠
	MaxWinStreak int `json:"max_win_streak"` // 历史最长连冠

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// Leaderboard 基于 Redis 的跨场次排行榜
type Leaderboard struct {
	redis *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client}
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lb.redis.Get(ctx, playerStatsKey+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lb *Leaderboard) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lb.redis.Set(ctx, playerStatsKey+stats.PlayerName, data, 0).Err()
}

// RecordMatchResult 记一场比赛：累加总分并刷新有序集合里的名次
func (lb *Leaderboard) RecordMatchResult(ctx context.Context, name string, score int, winner bool) error {
	stats, err := lb.GetPlayerStats(ctx, name)
	if err != nil {
		return err
	}
	if stats == nil {
		stats = &PlayerStats{
			PlayerName: name,
			CreatedAt:  time.Now().Unix(),
		}
	}

	stats.Matches++
	stats.TotalPoints += score
	stats.LastPlayedAt = time.Now().Unix()
	if score > stats.BestScore || stats.Matches == 1 {
		stats.BestScore = score
	}

	if winner {
		stats.Wins++
		stats.WinStreak++
		if stats.WinStreak > stats.MaxWinStreak {
			stats.MaxWinStreak = stats.WinStreak
		}
	} else {
		stats.WinStreak = 0
	}

	if err := lb.SavePlayerStats(ctx, stats); err != nil {
		return err
	}

	return lb.redis.ZAdd(ctx, rankingKey, redis.Z{
		Score:  float64(stats.TotalPoints),
		Member: name,
	}).Err()
}

// TopPlayers 总分前 n 名，带场次和胜率
func (lb *Leaderboard) TopPlayers(ctx context.Context, n int) ([]protocol.LeaderboardEntry, error) {
	if n <= 0 {
		n = defaultTopCount
	}
	if n > maxTopCount {
		n = maxTopCount
	}

	results, err := lb.redis.ZRevRangeWithScores(ctx, rankingKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for i, result := range results {
		name, _ := result.Member.(string)

		stats, err := lb.GetPlayerStats(ctx, name)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.Matches > 0 {
			winRate = float64(stats.Wins) / float64(stats.Matches) * 100
		}

		entries = append(entries, protocol.LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: name,
			Points:     int(result.Score),
			Matches:    stats.Matches,
			Wins:       stats.Wins,
			WinRate:    winRate,
		})
	}
	return entries, nil
}

// PlayerRank 玩家名次，未上榜返回 -1
func (lb *Leaderboard) PlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, rankingKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
