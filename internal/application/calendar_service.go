package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/booking-server/internal/persistence"
)

// CalendarService manages the single calendar each host owns.
type CalendarService struct {
	calendars persistence.CalendarRepository
	logger    *slog.Logger
}

func NewCalendarService(calendars persistence.CalendarRepository, logger *slog.Logger) *CalendarService {
	return &CalendarService{
		calendars: calendars,
		logger:    defaultLogger(logger),
	}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// CreateCalendar creates the calendar for the authenticated host.
//
// The host-already-owns-a-calendar check is optimistic; the storage
// constraint on the host column remains authoritative.
func (s *CalendarService) CreateCalendar(ctx context.Context, principal Principal, input CalendarInput) (calendar Calendar, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}
	if s.calendars == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCalendar", "host_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("calendar_id", calendar.ID).InfoContext(ctx, "calendar created")
	}()

	if !principal.IsHost {
		err = ErrUnauthorized
		return
	}

	normalized := normalizeCalendarInput(input)

	_, err = s.calendars.GetCalendarByHost(ctx, principal.UserID)
	switch {
	case err == nil:
		err = ErrCalendarExists
		return
	case errors.Is(err, persistence.ErrNotFound):
		// expected path
	default:
		return
	}

	persisted, err := s.calendars.CreateCalendar(ctx, persistence.Calendar{
		HostID:           principal.UserID,
		Topics:           normalized.Topics,
		Description:      normalized.Description,
		GoogleCalendarID: normalized.GoogleCalendarID,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrCalendarExists
		}
		return
	}

	calendar = toCalendar(persisted)
	return
}

// CalendarByHost returns the calendar owned by the given host.
func (s *CalendarService) CalendarByHost(ctx context.Context, hostID int64) (Calendar, error) {
	if s == nil {
		return Calendar{}, fmt.Errorf("CalendarService is nil")
	}
	if s.calendars == nil {
		return Calendar{}, fmt.Errorf("calendar repository not configured")
	}

	persisted, err := s.calendars.GetCalendarByHost(ctx, hostID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Calendar{}, ErrNotFound
		}
		return Calendar{}, err
	}

	return toCalendar(persisted), nil
}

// CalendarByID returns the calendar with the given identity.
func (s *CalendarService) CalendarByID(ctx context.Context, id int64) (Calendar, error) {
	if s == nil {
		return Calendar{}, fmt.Errorf("CalendarService is nil")
	}
	if s.calendars == nil {
		return Calendar{}, fmt.Errorf("calendar repository not configured")
	}

	persisted, err := s.calendars.GetCalendar(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Calendar{}, ErrNotFound
		}
		return Calendar{}, err
	}

	return toCalendar(persisted), nil
}

// UpdateCalendar replaces the editable fields of the host's calendar.
func (s *CalendarService) UpdateCalendar(ctx context.Context, principal Principal, input CalendarInput) (calendar Calendar, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}
	if s.calendars == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateCalendar", "host_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("calendar_id", calendar.ID).InfoContext(ctx, "calendar updated")
	}()

	if !principal.IsHost {
		err = ErrUnauthorized
		return
	}

	existing, err := s.calendars.GetCalendarByHost(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}

	normalized := normalizeCalendarInput(input)
	existing.Topics = normalized.Topics
	existing.Description = normalized.Description
	existing.GoogleCalendarID = normalized.GoogleCalendarID

	persisted, err := s.calendars.UpdateCalendar(ctx, existing)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}

	calendar = toCalendar(persisted)
	return
}

func normalizeCalendarInput(input CalendarInput) CalendarInput {
	topics := make([]string, 0, len(input.Topics))
	for _, topic := range input.Topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		topics = append(topics, topic)
	}
	return CalendarInput{
		Topics:           topics,
		Description:      strings.TrimSpace(input.Description),
		GoogleCalendarID: strings.TrimSpace(input.GoogleCalendarID),
	}
}

func toCalendar(model persistence.Calendar) Calendar {
	return Calendar{
		ID:               model.ID,
		HostID:           model.HostID,
		Topics:           model.Topics,
		Description:      model.Description,
		GoogleCalendarID: model.GoogleCalendarID,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}
