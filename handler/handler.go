package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classroom-egress/dto"
	"classroom-egress/service"
)

type ServiceDependencies struct {
	Egress        service.EgressService
	Audio         service.AudioService
	Transcription service.TranscriptionService
}

func StartRecording(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.StartRecordingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		egressID, err := deps.Egress.Start(c.Request.Context(), req.RoomName, req.UserName)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.StartRecordingResponse{EgressID: egressID})
	}
}

func StopRecording(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.StopRecordingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		info, err := deps.Egress.Stop(c.Request.Context(), req.EgressID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func RecordingStatus(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := deps.Egress.Status(c.Request.Context(), c.Param("egressId"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func ExtractAudio(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ExtractAudioRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		key, err := deps.Audio.Extract(c.Request.Context(), req.VideoURL)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ExtractAudioResponse{Key: key})
	}
}

func Transcribe(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.TranscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		text, err := deps.Transcription.Transcribe(c.Request.Context(), req.Key)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.TranscribeResponse{Text: text})
	}
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrKeyDerivation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
