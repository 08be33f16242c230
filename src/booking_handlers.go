package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"tixgate/src/common"
	"tixgate/src/lib"
	"tixgate/src/types"
	"tixgate/src/utils"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			booking, err := common.CreateBooking(userId, &body)
			if err != nil {
				log.Printf("Could not create booking: %s\n", err.Error())
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.GetBooking(params.ID)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.CancelBooking(params.ID)
			if err != nil {
				log.Printf("Could not cancel booking [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings/:id/credential", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.CredentialQueryParams
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, err := common.GetBooking(params.ID)
			if err != nil {
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			cred := &utils.Credential{
				EventID:      booking.EventID,
				BookingID:    booking.ID,
				TicketSerial: booking.TicketSerial.String(),
			}
			code := utils.EncodeCredential(cred)

			if !query.Download {
				ctx.JSON(http.StatusOK, gin.H{"code": code})
				return
			}

			filename := fmt.Sprintf("ticketcode_%d-%d.jpeg", booking.EventID, booking.ID)
			filepath := path.Join(os.TempDir(), filename)
			if err := utils.RenderCredentialQR(cred, filepath); err != nil {
				log.Printf("Could not render credential for booking [%d]: %s\n", booking.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rd := lib.GetRedisClient()
			if rd != nil {
				rd.SetEx(context.Background(), filename, code, 2*time.Hour)
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		})
	return g
}
