// Package google writes reminder events to Google Calendar.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	ports "financas/internal/calendar"
	"financas/internal/core"
)

// Event colors from the Calendar palette.
const (
	colorOverdue = "11" // tomato
	colorDueSoon = "5"  // banana
)

type Client struct {
	svc        *gcal.Service
	calendarID string
}

var (
	_ ports.EventWriter  = (*Client)(nil)
	_ ports.EventDeleter = (*Client)(nil)
)

// Config selects the calendar and the credentials. OAuth client plus token
// (as written by oauth-init) act as the user; otherwise a service account is used.
type Config struct {
	CalendarID         string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
	ServiceAccountJSON string
	ServiceAccountFile string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	calendarID := strings.TrimSpace(cfg.CalendarID)
	if calendarID == "" {
		return nil, errors.New("missing GOOGLE_CALENDAR_ID")
	}
	opt, err := clientOption(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gcal.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	slog.InfoContext(ctx, "Google Calendar service created", "component", "calendar", "calendar_id", calendarID)
	return &Client{svc: svc, calendarID: calendarID}, nil
}

func readSecret(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		return os.ReadFile(file)
	default:
		return nil, nil
	}
}

func clientOption(ctx context.Context, cfg Config) (goption.ClientOption, error) {
	clientJSON, err := readSecret(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	if clientJSON != nil {
		oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gcal.CalendarEventsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		tokenJSON, err := readSecret(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth token: %w", err)
		}
		if tokenJSON == nil {
			return nil, errors.New("missing oauth token (run oauth-init)")
		}
		tok, err := decodeToken(tokenJSON)
		if err != nil {
			return nil, err
		}
		return goption.WithHTTPClient(oauthCfg.Client(ctx, tok)), nil
	}

	saJSON, err := readSecret(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	if saJSON == nil {
		return nil, errors.New("missing calendar credentials (set GOOGLE_OAUTH_CLIENT_* or GOOGLE_SERVICE_ACCOUNT_*)")
	}
	creds, err := goauth.CredentialsFromJSON(ctx, saJSON, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("service account credentials: %w", err)
	}
	return goption.WithTokenSource(creds.TokenSource), nil
}

func (c *Client) UpsertReminder(ctx context.Context, e ports.Event) error {
	if c.svc == nil {
		return errors.New("calendar service not initialized")
	}
	ev := toGoogleEvent(e)

	_, err := c.svc.Events.Update(c.calendarID, e.ID, ev).Context(ctx).Do()
	if isStatus(err, http.StatusNotFound) {
		_, err = c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
		if err == nil {
			slog.InfoContext(ctx, "Calendar event created", "component", "calendar", "event_id", e.ID, "reminder_id", e.ReminderID)
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, rejected(err))
	}
	slog.InfoContext(ctx, "Calendar event updated", "component", "calendar", "event_id", e.ID, "reminder_id", e.ReminderID)
	return nil
}

func (c *Client) DeleteReminder(ctx context.Context, reminderID int64) error {
	if c.svc == nil {
		return errors.New("calendar service not initialized")
	}
	id := ports.EventID(reminderID)
	err := c.svc.Events.Delete(c.calendarID, id).Context(ctx).Do()
	if err != nil && !isStatus(err, http.StatusNotFound) && !isStatus(err, http.StatusGone) {
		return fmt.Errorf("delete event %s: %w", id, rejected(err))
	}
	return nil
}

func toGoogleEvent(e ports.Event) *gcal.Event {
	ev := &gcal.Event{
		Id:           e.ID,
		Summary:      e.Summary,
		Description:  e.Description,
		Start:        &gcal.EventDateTime{Date: e.Date.ISO()},
		End:          &gcal.EventDateTime{Date: core.DateOf(e.Date.AddDate(0, 0, 1)).ISO()},
		Transparency: "transparent",
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{
				"reminder_id": strconv.FormatInt(e.ReminderID, 10),
				"urgency":     string(e.Urgency),
				"email":       e.Attendee,
			},
		},
	}
	switch e.Urgency {
	case core.Overdue:
		ev.ColorId = colorOverdue
	case core.DueSoon:
		ev.ColorId = colorDueSoon
	}
	return ev
}

func isStatus(err error, code int) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

// rejected marks 4xx answers other than 429 as ErrRejected.
func rejected(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code >= 400 && gerr.Code < 500 && gerr.Code != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ports.ErrRejected, err)
	}
	return err
}

func decodeToken(b []byte) (*oauth2.Token, error) {
	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("oauth token has neither access nor refresh token")
	}
	return tok, nil
}
