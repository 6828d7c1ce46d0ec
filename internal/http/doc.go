// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /api/accounts/signup: creates an account. Body: the `signupRequest`
//     payload defined in account_handler.go. Responds 201 with the created user.
//   - POST /api/accounts/login: verifies credentials and responds with
//     {"access_token","token_type":"bearer","user"}; the token is also set as
//     an HttpOnly `auth_token` cookie.
//   - POST /api/accounts/logout: clears the cookie. Returns 204 No Content.
//   - GET /api/accounts/users/{username}: public account detail.
//   - POST /api/calendars, GET /api/calendars/me, PUT /api/calendars/me:
//     calendar management for the authenticated host, exchanging the
//     `calendarDTO` payload defined in calendar_handler.go.
//   - POST /api/calendars/{calendarID}/time-slots,
//     GET /api/calendars/{calendarID}/time-slots: recurring availability
//     windows, with HH:MM wall clock values at the wire boundary.
//   - GET /api/calendars/{calendarID}/bookable-days?year=&month=: the days
//     of the month with the slot ids bookable on each; grid padding cells
//     are not part of the payload.
//   - POST /api/time-slots/{slotID}/bookings, GET /api/bookings,
//     DELETE /api/bookings/{bookingID}: guest bookings.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
