package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"tixgate/src/common"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"
	"tixgate/src/utils"

	"github.com/gin-gonic/gin"
)

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			var events []models.Event
			db := db.GetDb()
			if err := db.
				Model(&models.Event{}).
				Where("status = ? AND ends_at > ?", types.EVENT_PUBLISHED, time.Now()).
				Order("starts_at asc").
				Limit(20).
				Find(&events).
				Error; err != nil {
				log.Printf("Error retrieving Events: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event, err := utils.GetEvent(params.ID)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		GET("/events/:id/inventory", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			total, available, sold, err := utils.GetEventInventory(params.ID)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"id": params.ID, "total": total, "available": available, "sold": sold})
		}).
		POST("/events", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			orgId := ctx.GetUint("org")
			userId := ctx.GetUint("id")
			id, err := utils.CreateNewEvent(&body, orgId, userId)
			if err != nil {
				log.Printf("error creating event: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		PATCH("/events/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateEventSeatsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.UpdateEventSeats(params.ID, body.Seats); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PATCH("/events/:id/publish", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.PublishEvent(params.ID); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			if event, err := utils.GetEvent(params.ID); err == nil {
				go common.NotifyEventChanged(event)
			}
			ctx.Status(http.StatusNoContent)
		}).
		PATCH("/events/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.CancelEvent(params.ID); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			if event, err := utils.GetEvent(params.ID); err == nil {
				go common.NotifyEventCanceled(event)
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.ArchiveEvent(params.ID); err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

// statusForError maps the typed domain outcomes onto HTTP statuses. The
// messaging itself is left to clients.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrEventNotFound),
		errors.Is(err, types.ErrBookingNotFound),
		errors.Is(err, types.ErrUnknownTicket):
		return http.StatusNotFound
	case errors.Is(err, types.ErrOutOfStock),
		errors.Is(err, types.ErrInvalidTransition),
		errors.Is(err, types.ErrDuplicateRSVP),
		errors.Is(err, types.ErrWrongEvent),
		errors.Is(err, types.ErrAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, types.ErrTicketCancelled),
		errors.Is(err, types.ErrEventExpired):
		return http.StatusGone
	case errors.Is(err, types.ErrInvalidQuantity),
		errors.Is(err, types.ErrMalformedCredential),
		errors.Is(err, types.ErrEventNotOpen):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
