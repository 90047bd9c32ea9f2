package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	apperrors "github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/errors"
	"github.com/labstack/echo/v4"
)

const snapshotReadTimeout = 5 * time.Second

var errNoSnapshot = errors.New("no snapshot")

func (s *Server) handleListScreens(c echo.Context) error {
	if err := c.JSON(http.StatusOK, map[string]any{"screens": s.store.List()}); err != nil {
		return fmt.Errorf("failed to write screens response: %w", err)
	}
	return nil
}

// handleGetSnapshot returns the raw content a consumer of the screen would
// receive on connect. Concurrent reads of one screen share a lookup, which runs
// detached from any single caller's request.
func (s *Server) handleGetSnapshot(c echo.Context) error {
	screenID := domain.ScreenID(c.Param("screenId"))
	if screenID == "" {
		return apperrors.ValidationError("screenId is required")
	}

	shared := context.WithoutCancel(c.Request().Context())
	v, err, _ := s.snapshotReads.Do(string(screenID), func() (any, error) {
		ctx, cancel := context.WithTimeout(shared, snapshotReadTimeout)
		defer cancel()
		content, ok := s.store.LastContent(ctx, screenID)
		if !ok {
			return nil, errNoSnapshot
		}
		return content, nil
	})
	if errors.Is(err, errNoSnapshot) {
		return apperrors.NotFoundError("no content for screen").WithField("screen_id", screenID.String())
	}
	if err != nil {
		return apperrors.InternalError("failed to load snapshot", err).WithField("screen_id", screenID.String())
	}

	if err := c.JSONBlob(http.StatusOK, v.(domain.Content)); err != nil {
		return fmt.Errorf("failed to write snapshot response: %w", err)
	}
	return nil
}

// handlePutSnapshot replaces a screen's content as if its producer had synced
// it: stored, persisted and pushed to every attached display.
func (s *Server) handlePutSnapshot(c echo.Context) error {
	screenID := domain.ScreenID(c.Param("screenId"))
	if screenID == "" {
		return apperrors.ValidationError("screenId is required")
	}

	limit := s.config.MaxMessageBytes
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, limit+1))
	if err != nil {
		return apperrors.ValidationError("failed to read request body").WithField("screen_id", screenID.String())
	}
	if int64(len(body)) > limit {
		return apperrors.ValidationError("content exceeds maximum message size").WithField("screen_id", screenID.String())
	}
	if len(body) == 0 || !json.Valid(body) {
		return apperrors.ValidationError("content must be valid JSON").WithField("screen_id", screenID.String())
	}

	ctx := c.Request().Context()
	s.store.RecordContent(ctx, screenID, domain.Content(body))

	info, _ := s.store.Info(screenID)
	if err := c.JSON(http.StatusOK, info); err != nil {
		return fmt.Errorf("failed to write snapshot response: %w", err)
	}
	return nil
}
