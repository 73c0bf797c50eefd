package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/internal/queue"
	"github.com/Ramprakash852/AI-storyteller/middleware"
	"github.com/Ramprakash852/AI-storyteller/services"
)

// TaskEnqueuer is the slice of asynq.Client the routes use to queue
// background retries. A nil value disables queueing.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AudioRoutes handles reading recordings and their assessment.
type AudioRoutes struct {
	audio *services.AudioService
	tasks TaskEnqueuer
}

// NewAudioRoutes wires the audio endpoints. tasks may be nil, in which
// case processing always runs inline.
func NewAudioRoutes(audio *services.AudioService, tasks TaskEnqueuer) *AudioRoutes {
	return &AudioRoutes{audio: audio, tasks: tasks}
}

func (r *AudioRoutes) Register(router *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	router.POST("/upload/:sid", auth.RequireAuth(), r.uploadAudio)
	router.GET("/process-audio/:aid", auth.RequireAuth(), r.processAudio)
	router.GET("/audio/finalFeedback/:aid", auth.RequireAuth(), r.getAudioFeedback)
}

func (r *AudioRoutes) uploadAudio(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respondBadRequest(c, "audio file is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "could not read uploaded file")
		return
	}
	defer f.Close()

	audio, err := r.audio.UploadAudio(c.Request.Context(), c.Param("sid"), userID, fileHeader.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, audio.ID.Hex())
}

// processAudio runs the assessment pipeline synchronously and returns
// the artifacts. On failure a retry task is queued for the worker.
func (r *AudioRoutes) processAudio(c *gin.Context) {
	assessment, err := r.audio.ProcessAudio(c.Request.Context(), c.Param("aid"))
	if err != nil {
		// Only transcription outages are retryable out of band; a bad or
		// unknown audio ID can never succeed later.
		if r.tasks != nil && errors.Is(err, services.ErrUpstream) {
			if task, terr := queue.NewAudioProcessTask(c.Param("aid")); terr == nil {
				if _, qerr := r.tasks.Enqueue(task); qerr != nil {
					logger.Warn("Failed to enqueue audio retry", "audio_id", c.Param("aid"), "error", qerr)
				}
			}
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (r *AudioRoutes) getAudioFeedback(c *gin.Context) {
	audio, story, err := r.audio.GetAudioFeedback(c.Request.Context(), c.Param("aid"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"audio": audio}
	if story != nil {
		resp["story"] = story
	} else {
		resp["story"] = nil
	}
	c.JSON(http.StatusOK, resp)
}
