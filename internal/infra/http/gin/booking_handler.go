package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/app/queries"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	HousingID string `json:"housingId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Guests    struct {
		Adults  *int `json:"adults"`
		Kids    *int `json:"kids"`
		Animals *int `json:"animals"`
	} `json:"guests"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		ActingUser: currentActor(c),
		HousingID:  req.HousingID,
		StartDate:  start,
		EndDate:    end,
		Guests: bookingapp.GuestsInput{
			Adults:  req.Guests.Adults,
			Kids:    req.Guests.Kids,
			Animals: req.Guests.Animals,
		},
		IdempotencyKeyV: c.GetHeader(IdempotencyKeyHeader),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) List(c *gin.Context) {
	result, err := queries.Ask[bookingapp.ListMyBookingsQuery, []dto.BookingSummary](c.Request.Context(), h.Queries, bookingapp.ListMyBookingsQuery{ActingUser: currentActor(c)})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if result == nil {
		result = []dto.BookingSummary{}
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	q := bookingapp.GetBookingQuery{ActingUser: currentActor(c), BookingID: c.Param("id")}
	result, err := queries.Ask[bookingapp.GetBookingQuery, *dto.BookingDetails](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
