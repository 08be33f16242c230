package main

import (
	"errors"
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/config"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
)

func admissionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/admission", func(ctx *gin.Context) {
			var body types.CreateAdmissionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			staffId := ctx.GetUint("id")
			booking, err := common.CheckIn(&common.CheckInParams{
				Payload:         body.Code,
				EventID:         body.EventID,
				StaffID:         staffId,
				Method:          types.CheckInMethod(body.Method),
				EnforceEventEnd: config.EnforceEventEnd(),
			})
			if err != nil {
				var used *types.AlreadyUsedError
				if errors.As(err, &used) {
					ctx.JSON(http.StatusConflict, gin.H{
						"error":           err.Error(),
						"checked_in_at":   used.CheckedInAt,
						"checked_in_by":   used.CheckedInBy,
						"check_in_method": used.Method,
					})
					return
				}
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		GET("/admissions/:id", func(ctx *gin.Context) {
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
			if booking.Status != types.BOOKING_USED {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
