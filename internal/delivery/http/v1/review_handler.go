package v1

import (
	"net/http"
	"strconv"

	"go-hackathon-backend/internal/delivery/http/middleware"
	"go-hackathon-backend/internal/delivery/http/response"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviewUC domain.ReviewUsecase
}

// NewReviewHandler registers the reviewer routes
func NewReviewHandler(r *gin.RouterGroup, reviewUC domain.ReviewUsecase) {
	handler := &ReviewHandler{reviewUC: reviewUC}

	reviews := r.Group("/reviews")
	reviews.Use(middleware.RequireLevel(domain.LevelReviewer, domain.LevelOrganiser))
	{
		reviews.GET("/next", handler.NextApplicant)
		reviews.POST("", handler.SubmitReview)
		reviews.GET("/stats", handler.Stats)
	}
}

// SubmitReviewRequest carries one reviewer's scored assessment. The
// sub-question scores are averaged server-side at submission.
type SubmitReviewRequest struct {
	ApplicantID string    `json:"applicant_id" binding:"required,uuid"`
	Scores      []float64 `json:"scores" binding:"required,min=1,dive,gte=0,lte=5"`
}

// NextApplicant godoc
// @Summary      Select the next applicant to review
// @Description  Returns one applicant from the oldest eligible pool, or no data when none remain.
// @Tags         reviews
// @Produce      json
// @Param        pool_size  query     int  false  "Candidate pool size"
// @Success      200  {object}  response.Envelope{data=domain.Applicant}
// @Failure      500  {object}  response.Envelope
// @Router       /reviews/next [get]
// @Security     BearerAuth
func (h *ReviewHandler) NextApplicant(c *gin.Context) {
	poolSize, _ := strconv.Atoi(c.DefaultQuery("pool_size", "0"))

	app, err := h.reviewUC.SelectNextForReview(c.Request.Context(), c.GetString(string(domain.KeyAuthID)), poolSize)
	if err != nil {
		c.Error(err)
		return
	}
	if app == nil {
		// A drained pool is a normal terminal condition for a reviewer,
		// not an error.
		response.Success(c, http.StatusOK, "No applicants left to review", nil)
		return
	}
	response.Success(c, http.StatusOK, "Applicant selected", app)
}

// SubmitReview godoc
// @Summary      Submit a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        body  body      SubmitReviewRequest  true  "Review scores"
// @Success      201   {object}  response.Envelope{data=domain.Review}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /reviews [post]
// @Security     BearerAuth
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation(err.Error()))
		return
	}

	applicantID, err := uuid.Parse(req.ApplicantID)
	if err != nil {
		c.Error(apperror.Validation("Invalid applicant id", "applicant_id"))
		return
	}

	review, err := h.reviewUC.SubmitReview(c.Request.Context(), c.GetString(string(domain.KeyAuthID)), applicantID, req.Scores)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Review submitted", review)
}

// Stats godoc
// @Summary      My review count
// @Tags         reviews
// @Produce      json
// @Success      200  {object}  response.Envelope{data=domain.ReviewerStats}
// @Router       /reviews/stats [get]
// @Security     BearerAuth
func (h *ReviewHandler) Stats(c *gin.Context) {
	stats, err := h.reviewUC.ReviewerStats(c.Request.Context(), c.GetString(string(domain.KeyAuthID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Reviewer stats", stats)
}
