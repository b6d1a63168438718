// Package gcal mirrors approved leave onto employees' Google Calendars.
package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/hrplatform/leave-management/internal"
)

var ErrNotConnected = errors.New("google calendar is not connected for this user")

// TokenStore persists per-user OAuth tokens.
type TokenStore interface {
	Save(ctx context.Context, userID int64, tokenJSON string) error
	Get(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, userID int64) error
}

type Service struct {
	oauth  *oauth2.Config
	tokens TokenStore
	logger *slog.Logger
}

func NewService(cfg internal.GoogleOAuthConfig, tokens TokenStore, logger *slog.Logger) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		tokens: tokens,
		logger: logger.With("component", "gcal_service"),
	}
}

// AuthURL builds the consent URL. The state ties the callback to the user
// who initiated the flow.
func (s *Service) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// HandleCallback exchanges the authorization code and stores the token for
// the user.
func (s *Service) HandleCallback(ctx context.Context, userID int64, code string) error {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("serialize token: %w", err)
	}

	if err := s.tokens.Save(ctx, userID, string(raw)); err != nil {
		return fmt.Errorf("store calendar token: %w", err)
	}

	s.logger.Info("google calendar connected", "user_id", userID)
	return nil
}

// Disconnect drops the stored token.
func (s *Service) Disconnect(ctx context.Context, userID int64) error {
	return s.tokens.Delete(ctx, userID)
}

// IsConnected reports whether the user has a stored token.
func (s *Service) IsConnected(ctx context.Context, userID int64) bool {
	_, err := s.tokens.Get(ctx, userID)
	return err == nil
}

// CreateLeaveEvent inserts an all-day event on the user's primary calendar
// and returns the created event id.
func (s *Service) CreateLeaveEvent(ctx context.Context, userID int64, summary string, start, end time.Time) (string, error) {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return "", err
	}

	// all-day events use exclusive end dates
	event := &calendar.Event{
		Summary:      summary,
		Start:        &calendar.EventDateTime{Date: start.Format("2006-01-02")},
		End:          &calendar.EventDateTime{Date: end.AddDate(0, 0, 1).Format("2006-01-02")},
		Transparency: "opaque",
	}

	created, err := svc.Events.Insert("primary", event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}

	s.logger.Info("calendar event created", "user_id", userID, "event_id", created.Id)
	return created.Id, nil
}

// DeleteLeaveEvent removes a previously created event. A missing event is
// not an error; the user may have deleted it themselves.
func (s *Service) DeleteLeaveEvent(ctx context.Context, userID int64, eventID string) error {
	svc, err := s.clientFor(ctx, userID)
	if err != nil {
		return err
	}

	if err := svc.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		s.logger.Warn("calendar event delete failed", "user_id", userID, "event_id", eventID, "error", err)
	}
	return nil
}

func (s *Service) clientFor(ctx context.Context, userID int64) (*calendar.Service, error) {
	raw, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return nil, ErrNotConnected
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("parse stored token: %w", err)
	}

	source := &persistingTokenSource{
		ctx:    ctx,
		src:    s.oauth.TokenSource(ctx, &token),
		tokens: s.tokens,
		userID: userID,
		last:   token.AccessToken,
		logger: s.logger,
	}
	return calendar.NewService(ctx, option.WithTokenSource(source))
}

// persistingTokenSource writes refreshed tokens back to the store so the
// next client starts from a live token instead of re-refreshing the stale
// one on every call.
type persistingTokenSource struct {
	ctx    context.Context
	src    oauth2.TokenSource
	tokens TokenStore
	userID int64
	last   string
	logger *slog.Logger
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != p.last {
		raw, err := json.Marshal(token)
		if err != nil {
			return nil, fmt.Errorf("serialize refreshed token: %w", err)
		}
		if err := p.tokens.Save(p.ctx, p.userID, string(raw)); err != nil {
			p.logger.Warn("failed to persist refreshed calendar token",
				"user_id", p.userID,
				"error", err)
		}
		p.last = token.AccessToken
	}
	return token, nil
}
