package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	Accounts  *AccountHandler
	Calendars *CalendarHandler
	Bookings  *BookingHandler
	Verifier  TokenVerifier
	Logger    *slog.Logger
}

// NewRouter assembles the API routes. Signup, login, user detail, time slot
// listing, and bookable-day queries are public; everything else requires an
// authenticated principal.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(cfg.Logger))

	r.Route("/api", func(r chi.Router) {
		if cfg.Accounts != nil {
			r.Route("/accounts", func(r chi.Router) {
				r.Post("/signup", cfg.Accounts.Signup)
				r.Post("/login", cfg.Accounts.Login)
				r.Post("/logout", cfg.Accounts.Logout)
				r.Get("/users/{username}", cfg.Accounts.GetUser)
			})
		}

		if cfg.Calendars != nil || cfg.Bookings != nil {
			r.Route("/calendars", func(r chi.Router) {
				if cfg.Bookings != nil {
					r.Get("/{calendarID}/time-slots", cfg.Bookings.ListTimeSlots)
					r.Get("/{calendarID}/bookable-days", cfg.Bookings.ListBookableDays)
				}

				r.Group(func(r chi.Router) {
					r.Use(RequireAuth(cfg.Verifier, cfg.Logger))
					if cfg.Calendars != nil {
						r.Post("/", cfg.Calendars.Create)
						r.Get("/me", cfg.Calendars.GetMine)
						r.Put("/me", cfg.Calendars.UpdateMine)
					}
					if cfg.Bookings != nil {
						r.Post("/{calendarID}/time-slots", cfg.Bookings.CreateTimeSlot)
					}
				})
			})
		}

		if cfg.Bookings != nil {
			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(cfg.Verifier, cfg.Logger))
				r.Post("/time-slots/{slotID}/bookings", cfg.Bookings.CreateBooking)
				r.Get("/bookings", cfg.Bookings.ListBookings)
				r.Delete("/bookings/{bookingID}", cfg.Bookings.CancelBooking)
			})
		}
	})

	return r
}
