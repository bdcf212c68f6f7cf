package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/service/booking"
	"github.com/Domenick1991/roombooking/internal/service/rooms"
	"github.com/gin-gonic/gin"
)

// FreeRoomFinder is the part of booking.BookingUseCase the room handler needs.
type FreeRoomFinder interface {
	SearchFreeRooms(ctx context.Context, input booking.SearchInput) ([]domain.Room, error)
}

type RoomHandler struct {
	service rooms.RoomUseCase
	finder  FreeRoomFinder
}

type createRoomRequest struct {
	Name        string      `json:"name" validate:"required,max=100"`
	PricePerDay json.Number `json:"price_per_day" validate:"required"`
	Capacity    int         `json:"capacity" validate:"gte=1"`
}

type updateRoomRequest struct {
	PricePerDay *json.Number `json:"price_per_day"`
	Capacity    *int         `json:"capacity" validate:"omitempty,gte=1"`
}

func NewRoomHandler(service rooms.RoomUseCase, finder FreeRoomFinder) *RoomHandler {
	return &RoomHandler{service: service, finder: finder}
}

// list serves the room catalogue. With date_start and date_end it narrows the
// listing to rooms free for that window, like GET /rooms/free.
func (h *RoomHandler) list(c *gin.Context) {
	if c.Query("date_start") != "" || c.Query("date_end") != "" {
		h.free(c)
		return
	}
	filter, ok := roomFilterFromQuery(c)
	if !ok {
		return
	}
	order, err := domain.ParseRoomOrder(c.Query("ordering"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter, order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoomsResponse(result))
}

func (h *RoomHandler) get(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	room, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoomResponse(*room))
}

func (h *RoomHandler) create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validateRequest(req); err != nil {
		respondError(c, err)
		return
	}
	cents, err := domain.ParsePrice(req.PricePerDay.String())
	if err != nil {
		respondError(c, err)
		return
	}

	room, err := h.service.Create(c.Request.Context(), rooms.CreateRoomInput{
		Name:       req.Name,
		PriceCents: cents,
		Capacity:   req.Capacity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRoomResponse(*room))
}

func (h *RoomHandler) update(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validateRequest(req); err != nil {
		respondError(c, err)
		return
	}

	upd := domain.RoomUpdate{Capacity: req.Capacity}
	if req.PricePerDay != nil {
		cents, err := domain.ParsePrice(req.PricePerDay.String())
		if err != nil {
			respondError(c, err)
			return
		}
		upd.PriceCents = &cents
	}

	room, err := h.service.Update(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoomResponse(*room))
}

func (h *RoomHandler) delete(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteResponse{
		ID:     strconv.FormatInt(id, 10),
		Detail: fmt.Sprintf("room %d deleted", id),
	})
}

func (h *RoomHandler) free(c *gin.Context) {
	start, err := parseTime("date_start", c.Query("date_start"))
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := parseTime("date_end", c.Query("date_end"))
	if err != nil {
		respondError(c, err)
		return
	}
	filter, ok := roomFilterFromQuery(c)
	if !ok {
		return
	}
	order, err := domain.ParseRoomOrder(c.Query("ordering"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.finder.SearchFreeRooms(c.Request.Context(), booking.SearchInput{
		DateStart: start,
		DateEnd:   end,
		Filter:    filter,
		Order:     order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoomsResponse(result))
}

// roomFilterFromQuery reads min_price, max_price and capacity. It writes the 400
// response itself and reports false on bad input.
func roomFilterFromQuery(c *gin.Context) (domain.RoomFilter, bool) {
	var filter domain.RoomFilter
	if v := c.Query("min_price"); v != "" {
		cents, err := domain.ParsePrice(v)
		if err != nil {
			badRequest(c, "min_price: "+err.Error())
			return filter, false
		}
		filter.MinPriceCents = &cents
	}
	if v := c.Query("max_price"); v != "" {
		cents, err := domain.ParsePrice(v)
		if err != nil {
			badRequest(c, "max_price: "+err.Error())
			return filter, false
		}
		filter.MaxPriceCents = &cents
	}
	if v := c.Query("capacity"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, "capacity must be an integer")
			return filter, false
		}
		filter.MinCapacity = &capacity
	}
	return filter, true
}

func roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
