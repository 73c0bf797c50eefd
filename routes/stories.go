package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ramprakash852/AI-storyteller/middleware"
	"github.com/Ramprakash852/AI-storyteller/models"
	"github.com/Ramprakash852/AI-storyteller/services"
)

// StoryRoutes handles story generation, reading, quizzes and feedback.
type StoryRoutes struct {
	stories     *services.StoryService
	assignments *services.AssignmentService
	users       *services.UserService
}

func NewStoryRoutes(stories *services.StoryService, assignments *services.AssignmentService, users *services.UserService) *StoryRoutes {
	return &StoryRoutes{stories: stories, assignments: assignments, users: users}
}

func (r *StoryRoutes) Register(router *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	group := router.Group("/story")
	group.POST("/create", auth.RequireAuth(), r.createStory)
	group.GET("/getStory/:sid", auth.RequireAuth(), r.getStory)
	group.GET("/stories/:uid", r.getAllStories)
	group.GET("/getQuestions/:sid", auth.RequireAuth(), r.getQuestions)
	group.POST("/feedback/:sid", auth.RequireAuth(), r.submitFeedback)
	group.GET("/getFeedback/:sid", auth.RequireAuth(), r.getFeedback)
	group.GET("/getFullStory/:sid", auth.RequireAuth(), r.getFullStory)
}

func (r *StoryRoutes) createStory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	var req models.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := r.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	story, err := r.stories.CreateStory(c.Request.Context(), &req, userID, user.ParentName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"story": story})
}

func (r *StoryRoutes) getStory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	story, err := r.stories.GetStory(c.Request.Context(), c.Param("sid"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

func (r *StoryRoutes) getAllStories(c *gin.Context) {
	uid, err := primitive.ObjectIDFromHex(c.Param("uid"))
	if err != nil {
		respondError(c, services.ErrNotFound)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	stories, total, err := r.stories.GetAllStories(c.Request.Context(), uid, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stories": stories,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (r *StoryRoutes) getQuestions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	assignment, err := r.assignments.GetOrCreateAssignment(c.Request.Context(), c.Param("sid"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (r *StoryRoutes) submitFeedback(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	var req models.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	feedback, err := r.assignments.SubmitAnswers(c.Request.Context(), c.Param("sid"), userID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saveFeedbacks": feedback})
}

func (r *StoryRoutes) getFeedback(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	feedback, err := r.assignments.GetFeedback(c.Request.Context(), c.Param("sid"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

func (r *StoryRoutes) getFullStory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	story, err := r.stories.GetStory(c.Request.Context(), c.Param("sid"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wholeStory": story.WholeText()})
}
