package main

import (
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
)

func reportHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/reports/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			report, err := common.GetEventReport(params.ID)
			if err != nil {
				log.Printf("Error building event report [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": report})
		}).
		GET("/reports/organizers/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			report, err := common.GetOrganizerReport(params.ID)
			if err != nil {
				log.Printf("Error building organizer report [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": report})
		})
	return g
}
