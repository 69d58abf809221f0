package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatusFor(t *testing.T) {
	Convey("Given errors of every kind", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{NewKind("op", ErrBadRequest), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("x: %w", service.ErrBackpressure), http.StatusTooManyRequests, "backpressure"},
			{service.ErrRequestInFlight, http.StatusConflict, "request_in_flight"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{fmt.Errorf("%w: x", model.ErrSessionNotFound), http.StatusNotFound, "session_not_found"},
			{model.ErrJobNotFound, http.StatusNotFound, "job_not_found"},
			{model.ErrInvalidPosition, http.StatusUnprocessableEntity, "invalid_position"},
			{model.ErrInsufficientPlayers, http.StatusUnprocessableEntity, "insufficient_players"},
			{model.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
			{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
		}

		Convey("Then each maps to its status", func() {
			for _, c := range cases {
				status, code := statusFor(c.err)
				So(status, ShouldEqual, c.status)
				So(code, ShouldEqual, c.code)
			}
		})
	})

	Convey("Given a wrapped kind", t, func() {
		cause := errors.New("unexpected EOF")
		err := WrapKind("api.add_player", ErrBadRequest, cause)

		Convey("Then both kind and cause are visible", func() {
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.add_player: bad request: unexpected EOF")
		})
	})
}
