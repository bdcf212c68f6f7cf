package api

import (
	"net/http"

	"github.com/Domenick1991/roombooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	Room      int64  `json:"room" validate:"required,gt=0"`
	DateStart string `json:"date_start" validate:"required"`
	DateEnd   string `json:"date_end" validate:"required"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "authentication credentials were not provided"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validateRequest(req); err != nil {
		respondError(c, err)
		return
	}
	start, err := parseTime("date_start", req.DateStart)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseTime("date_end", req.DateEnd)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), actor, booking.CreateBookingInput{
		RoomID:    req.Room,
		DateStart: start,
		DateEnd:   end,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(*created))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	actor, _ := actorFrom(c)
	bookings, err := h.service.ListMyBookings(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingsResponse(bookings))
}

func (h *BookingHandler) listAll(c *gin.Context) {
	actor, _ := actorFrom(c)
	bookings, err := h.service.ListAllBookings(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingsResponse(bookings))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, _ := actorFrom(c)
	b, err := h.service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingWithRoomResponse(*b))
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actor, _ := actorFrom(c)
	confirmation, err := h.service.DeleteBooking(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteResponse{
		ID:     confirmation.ID.String(),
		Detail: confirmation.Detail,
	})
}

// bookingID answers 404 for ids that are not UUIDs: such a booking cannot exist.
func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "booking not found"})
		return uuid.Nil, false
	}
	return id, true
}
