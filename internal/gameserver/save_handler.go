package gameserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/game/session"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
	"github.com/cory-johannsen/integration-quest/internal/storage/postgres"
)

// SaveGameInput is empty; saving snapshots the whole session.
type SaveGameInput struct{}

// LoadGameInput optionally names a checkpoint. Empty loads the most recent
// one for the session.
type LoadGameInput struct {
	SaveID string `json:"save_id,omitempty" jsonschema:"save identifier from a previous save_game; empty loads the most recent checkpoint"`
}

// handleSaveGame snapshots the session into the save store. Multiplayer
// saves bind the snapshot to the logged-in account and carry the run score;
// anonymous saves are keyed by session only.
func (s *Server) handleSaveGame(ctx context.Context, req *mcp.CallToolRequest, input SaveGameInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	if s.saves == nil {
		return nil, fail(msgSavesDisabled,
			gameerr.New(gameerr.CodeInternal, "save store not configured")), nil
	}

	snapshot, err := st.EncodeSnapshot()
	if err != nil {
		s.logger.Error("encoding game snapshot failed", zap.Error(err))
		return nil, fail("❌ Save failed! Please try again.",
			gameerr.Wrap(err, "encoding game snapshot")), nil
	}

	if s.cfg.Game.Multiplayer {
		ps, ok := s.authenticated()
		if !ok {
			return nil, fail("❌ Login required to save in multiplayer mode. Use `login()` first.",
				gameerr.NotLoggedIn()), nil
		}

		save, err := s.saves.Create(ctx, session.DefaultKey, ps.Email, snapshot, int64(ps.RunScore))
		if err != nil {
			s.logger.Error("writing cloud save failed",
				zap.String("email", ps.Email),
				zap.Error(err),
			)
			return nil, fail("❌ Save failed! Please try again.",
				gameerr.Wrap(err, "writing cloud save")), nil
		}
		st.SaveID = save.ID.String()

		return nil, narrateState(fmt.Sprintf(
			"☁️ **Game saved to cloud!**\n\nYour progress is automatically synced.\nCurrent run score: %s points",
			commas(int64(ps.RunScore))),
			map[string]any{"save_id": save.ID.String(), "cloud_save": true}), nil
	}

	save, err := s.saves.Create(ctx, session.DefaultKey, "", snapshot, 0)
	if err != nil {
		s.logger.Error("writing save failed", zap.Error(err))
		return nil, fail("❌ Save failed! Please try again.",
			gameerr.Wrap(err, "writing save")), nil
	}
	st.SaveID = save.ID.String()

	return nil, narrateState(fmt.Sprintf(
		"💾 Game saved!\n\n**Save ID**: %s\n\nUse this ID with 'load_game' to restore your progress.",
		save.ID),
		map[string]any{"save_id": save.ID.String()}), nil
}

// handleLoadGame restores a checkpoint into the session. Multiplayer loads
// the account's latest cloud save and restores its run score; single-player
// loads by id, or the session's most recent save when no id is given.
func (s *Server) handleLoadGame(ctx context.Context, req *mcp.CallToolRequest, input LoadGameInput) (*mcp.CallToolResult, ToolResult, error) {
	if s.saves == nil {
		return nil, fail(msgSavesDisabled,
			gameerr.New(gameerr.CodeInternal, "save store not configured")), nil
	}
	if s.cfg.Game.Multiplayer {
		ps, ok := s.authenticated()
		if !ok {
			return nil, fail("❌ Login required to load in multiplayer mode. Use `login()` first.",
				gameerr.NotLoggedIn()), nil
		}

		save, err := s.saves.LatestByPlayer(ctx, ps.Email)
		if err != nil {
			if errors.Is(err, postgres.ErrSaveNotFound) {
				return nil, fail("❌ No cloud save found. Start a new game with `create_character()`.",
					gameerr.New(gameerr.CodeInvalidTarget, "no cloud save for this account")), nil
			}
			s.logger.Error("loading cloud save failed",
				zap.String("email", ps.Email),
				zap.Error(err),
			)
			return nil, fail("❌ Failed to load cloud save.",
				gameerr.Wrap(err, "loading cloud save")), nil
		}

		st, err := session.DecodeSnapshot(save.State)
		if err != nil {
			s.logger.Error("decoding cloud save failed",
				zap.String("save_id", save.ID.String()),
				zap.Error(err),
			)
			return nil, fail("❌ Failed to load cloud save.",
				gameerr.Wrap(err, "decoding cloud save")), nil
		}
		st.SaveID = save.ID.String()
		s.sessions.PutState(session.DefaultKey, st)
		ps.RunScore = int(save.RunScore)

		h := st.Hero
		return nil, narrateState(fmt.Sprintf(
			"☁️ **Cloud save loaded!**\n\nWelcome back, **%s**!\n\nLevel %d %s\nDepth: %d\nUptime: %d/%d\nCurrent run score: %s points",
			h.Name, h.Level, titleCase(h.Role), st.Depth, h.Uptime, h.MaxUptime,
			commas(int64(ps.RunScore))),
			map[string]any{
				"hero_name":  h.Name,
				"level":      h.Level,
				"depth":      st.Depth,
				"cloud_save": true,
			}), nil
	}

	var (
		save postgres.Save
		err  error
	)
	if input.SaveID != "" {
		id, parseErr := uuid.Parse(input.SaveID)
		if parseErr != nil {
			return nil, fail(fmt.Sprintf("❌ Save file '%s' not found!", input.SaveID),
				gameerr.InvalidTarget(input.SaveID)), nil
		}
		save, err = s.saves.GetByID(ctx, id)
	} else {
		save, err = s.saves.LatestBySession(ctx, session.DefaultKey)
	}
	if err != nil {
		if errors.Is(err, postgres.ErrSaveNotFound) {
			if input.SaveID != "" {
				return nil, fail(fmt.Sprintf("❌ Save file '%s' not found!", input.SaveID),
					gameerr.InvalidTarget(input.SaveID)), nil
			}
			return nil, fail("❌ No saved game found! Use 'save_game' to create a checkpoint first.",
				gameerr.New(gameerr.CodeInvalidTarget, "no saves for this session")), nil
		}
		s.logger.Error("loading save failed", zap.Error(err))
		return nil, fail("❌ Failed to load save.", gameerr.Wrap(err, "loading save")), nil
	}

	st, err := session.DecodeSnapshot(save.State)
	if err != nil {
		s.logger.Error("decoding save failed",
			zap.String("save_id", save.ID.String()),
			zap.Error(err),
		)
		return nil, fail("❌ Failed to load save.", gameerr.Wrap(err, "decoding save")), nil
	}
	st.SaveID = save.ID.String()
	s.sessions.PutState(session.DefaultKey, st)

	h := st.Hero
	return nil, narrateState(fmt.Sprintf(
		"📂 Game loaded!\n\nWelcome back, **%s**!\n\nLevel %d %s\nDepth: %d\nUptime: %d/%d",
		h.Name, h.Level, titleCase(h.Role), st.Depth, h.Uptime, h.MaxUptime),
		map[string]any{
			"hero_name": h.Name,
			"level":     h.Level,
			"depth":     st.Depth,
		}), nil
}
