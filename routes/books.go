package routes

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ramprakash852/AI-storyteller/internal/logger"
	"github.com/Ramprakash852/AI-storyteller/internal/queue"
	"github.com/Ramprakash852/AI-storyteller/middleware"
	"github.com/Ramprakash852/AI-storyteller/services"
)

// BookRoutes handles the user's uploaded library.
type BookRoutes struct {
	books *services.BookService
	users *services.UserService
	tasks TaskEnqueuer
}

// NewBookRoutes wires the library endpoints. tasks may be nil, in which
// case failed index passes wait for the cron retry.
func NewBookRoutes(books *services.BookService, users *services.UserService, tasks TaskEnqueuer) *BookRoutes {
	return &BookRoutes{books: books, users: users, tasks: tasks}
}

func (r *BookRoutes) Register(router *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	group := router.Group("/books", auth.RequireAuth())
	group.POST("/upload", r.uploadBook)
	group.GET("", r.listBooks)
	group.DELETE("/:book_id", r.deleteBook)
}

func (r *BookRoutes) uploadBook(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "could not read uploaded file")
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		respondBadRequest(c, "could not read uploaded file")
		return
	}

	user, err := r.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	title := c.PostForm("bookTitle")
	author := c.PostForm("bookAuthor")

	book, err := r.books.UploadBook(c.Request.Context(), userID, user.ChildAge, title, author, fileHeader.Filename, content)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if !book.IsIndexed && r.tasks != nil {
		if task, terr := queue.NewBookIndexTask(book.ID.Hex()); terr == nil {
			if _, qerr := r.tasks.Enqueue(task); qerr != nil {
				logger.Warn("Failed to enqueue book index retry", "book_id", book.ID.Hex(), "error", qerr)
			}
		}
	}
	c.JSON(http.StatusCreated, book)
}

func (r *BookRoutes) listBooks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	resp, err := r.books.ListBooks(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *BookRoutes) deleteBook(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, services.ErrForbidden)
		return
	}

	if err := r.books.DeleteBook(c.Request.Context(), c.Param("book_id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
