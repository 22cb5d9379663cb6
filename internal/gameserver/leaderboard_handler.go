package gameserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/gameerr"
	"github.com/cory-johannsen/integration-quest/internal/storage/postgres"
)

// Leaderboard paging bounds.
const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

// ViewLeaderboardInput selects how many rows to show.
type ViewLeaderboardInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of players to show, default 10, max 50"`
}

// ViewMyStatsInput is empty; stats are read for the logged-in player.
type ViewMyStatsInput struct{}

// handleViewLeaderboard renders the top players by total score. The
// logged-in player's row is tagged, and when they fall outside the page
// their own rank is appended below it.
func (s *Server) handleViewLeaderboard(ctx context.Context, req *mcp.CallToolRequest, input ViewLeaderboardInput) (*mcp.CallToolResult, ToolResult, error) {
	if !s.cfg.Game.Multiplayer {
		return nil, fail(msgMultiplayerDisabled, gameerr.MultiplayerDisabled()), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	top, err := s.players.Top(ctx, limit)
	if err != nil {
		s.logger.Error("loading leaderboard failed", zap.Error(err))
		return nil, fail("❌ Leaderboard unavailable. Please try again later.",
			gameerr.Wrap(err, "loading leaderboard")), nil
	}

	if len(top) == 0 {
		return nil, narrateState(
			"🏆 **INTEGRATION QUEST LEADERBOARD**\n\nNo players yet! Be the first to register and claim the top spot!\n\nUse `register_player()` to join the competition.\n",
			map[string]any{"leaderboard": []map[string]any{}}), nil
	}

	currentUsername := ""
	ps, loggedIn := s.authenticated()
	if loggedIn {
		currentUsername = ps.Username
	}

	lines := []string{"🏆 **INTEGRATION QUEST LEADERBOARD**", ""}
	rows := make([]map[string]any, 0, len(top))
	inTop := false
	for i, p := range top {
		marker := ""
		if loggedIn && p.Username == currentUsername {
			marker = " ← YOU"
			inTop = true
		}
		lines = append(lines, fmt.Sprintf("  %s **%s** — %s pts (%s kills)%s",
			rankEmoji(i+1), p.Username, commas(p.TotalScore), commas(p.EnemiesDefeated), marker))
		rows = append(rows, map[string]any{
			"username":         p.Username,
			"total_score":      p.TotalScore,
			"enemies_defeated": p.EnemiesDefeated,
		})
	}

	if loggedIn && !inTop {
		if p, err := s.players.GetByEmail(ctx, ps.Email); err == nil {
			lines = append(lines,
				"",
				"  ... ",
				fmt.Sprintf("  %d. **%s** — %s pts ← YOU",
					s.playerRank(ctx, ps.Email), currentUsername, commas(p.TotalScore)))
		} else if !errors.Is(err, postgres.ErrPlayerNotFound) {
			s.logger.Warn("loading own leaderboard row failed",
				zap.String("email", ps.Email),
				zap.Error(err),
			)
		}
	}

	return nil, narrateState(strings.Join(lines, "\n"),
		map[string]any{"leaderboard": rows}), nil
}

// rankEmoji medals the podium; everyone else gets a plain ordinal.
func rankEmoji(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%d.", rank)
}

// handleViewMyStats reports the logged-in player's lifetime record and
// current rank.
func (s *Server) handleViewMyStats(ctx context.Context, req *mcp.CallToolRequest, input ViewMyStatsInput) (*mcp.CallToolResult, ToolResult, error) {
	if !s.cfg.Game.Multiplayer {
		return nil, fail(msgMultiplayerDisabled, gameerr.MultiplayerDisabled()), nil
	}
	ps, ok := s.authenticated()
	if !ok {
		return nil, fail("❌ You're not logged in. Use login() first.", gameerr.NotLoggedIn()), nil
	}

	p, err := s.players.GetByEmail(ctx, ps.Email)
	if err != nil {
		if errors.Is(err, postgres.ErrPlayerNotFound) {
			return nil, fail("❌ Player profile not found.", gameerr.NotRegistered(ps.Email)), nil
		}
		s.logger.Error("loading player stats failed",
			zap.String("email", ps.Email),
			zap.Error(err),
		)
		return nil, fail("❌ Stats unavailable. Please try again later.",
			gameerr.Wrap(err, "loading player stats")), nil
	}

	rank := s.playerRank(ctx, ps.Email)
	return nil, narrateState(fmt.Sprintf(
		"📊 **YOUR STATS — %s**\n\n🏆 **Rank**: #%d\n⭐ **Total Score**: %s points\n🎯 **Best Run**: %s points\n💀 **Enemies Defeated**: %s\n\n📧 **Email**: %s\n🎮 **Current Run Score**: %s points\n\nKeep defeating enemies to climb the leaderboard!\n",
		p.Username, rank,
		commas(p.TotalScore), commas(p.BestRunScore), commas(p.EnemiesDefeated),
		ps.Email, commas(int64(ps.RunScore))),
		map[string]any{
			"rank":              rank,
			"total_score":       p.TotalScore,
			"best_run_score":    p.BestRunScore,
			"enemies_defeated":  p.EnemiesDefeated,
			"current_run_score": ps.RunScore,
		}), nil
}
