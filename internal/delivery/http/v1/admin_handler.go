package v1

import (
	"net/http"

	"go-hackathon-backend/internal/delivery/http/middleware"
	"go-hackathon-backend/internal/delivery/http/response"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	applicantUC domain.ApplicantUsecase
	reviewUC    domain.ReviewUsecase
}

// NewAdminHandler registers the organiser and volunteer routes
func NewAdminHandler(r *gin.RouterGroup, applicantUC domain.ApplicantUsecase, reviewUC domain.ReviewUsecase) {
	handler := &AdminHandler{applicantUC: applicantUC, reviewUC: reviewUC}

	admin := r.Group("/admin")
	{
		organisers := admin.Group("")
		organisers.Use(middleware.RequireLevel(domain.LevelOrganiser))
		{
			organisers.GET("/applicants", handler.ListApplicants)
			organisers.GET("/applicants/:id/reviews", handler.ListApplicantReviews)
			organisers.POST("/applicants/:id/invite", handler.InviteApplicant)
			organisers.POST("/applicants/:id/reject", handler.RejectApplicant)
		}

		// Volunteers run the check-in desk; organisers can step in.
		checkin := admin.Group("")
		checkin.Use(middleware.RequireLevel(domain.LevelVolunteer, domain.LevelOrganiser))
		{
			checkin.POST("/applicants/:id/checkin", handler.CheckinApplicant)
		}
	}
}

func parseApplicantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.Validation("Invalid applicant id", "id"))
		return uuid.Nil, false
	}
	return id, true
}

// ListApplicantsQuery filters the admin applicant listing.
type ListApplicantsQuery struct {
	Status string `form:"status" binding:"required,status_name"`
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset"`
}

// ListApplicants godoc
// @Summary      List applicants by lifecycle stage
// @Tags         admin
// @Produce      json
// @Param        status  query     string  true   "Lifecycle stage name"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Success      200  {object}  response.Envelope{data=[]domain.Applicant}
// @Failure      400  {object}  response.Envelope
// @Router       /admin/applicants [get]
// @Security     BearerAuth
func (h *AdminHandler) ListApplicants(c *gin.Context) {
	var q ListApplicantsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.Validation("Unknown status", "status"))
		return
	}
	status, _ := domain.ParseStatus(q.Status)

	apps, err := h.applicantUC.ListByStatus(c.Request.Context(), status, q.Limit, q.Offset)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicants retrieved", apps)
}

// ListApplicantReviews godoc
// @Summary      List reviews of one applicant
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Applicant ID"
// @Success      200  {object}  response.Envelope{data=[]domain.Review}
// @Router       /admin/applicants/{id}/reviews [get]
// @Security     BearerAuth
func (h *AdminHandler) ListApplicantReviews(c *gin.Context) {
	id, ok := parseApplicantID(c)
	if !ok {
		return
	}
	reviews, err := h.reviewUC.ListByApplicant(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Reviews retrieved", reviews)
}

// InviteApplicant godoc
// @Summary      Invite an applicant
// @Description  Moves the applicant to invited and starts the acceptance deadline.
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Applicant ID"
// @Success      200  {object}  response.Envelope{data=domain.Applicant}
// @Failure      409  {object}  response.Envelope
// @Router       /admin/applicants/{id}/invite [post]
// @Security     BearerAuth
func (h *AdminHandler) InviteApplicant(c *gin.Context) {
	id, ok := parseApplicantID(c)
	if !ok {
		return
	}
	app, err := h.applicantUC.Transition(c.Request.Context(), id, domain.EventInvite, actorFromContext(c))
	respondTransition(c, app, err)
}

// RejectApplicant godoc
// @Summary      Reject an applicant
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Applicant ID"
// @Success      200  {object}  response.Envelope{data=domain.Applicant}
// @Failure      409  {object}  response.Envelope
// @Router       /admin/applicants/{id}/reject [post]
// @Security     BearerAuth
func (h *AdminHandler) RejectApplicant(c *gin.Context) {
	id, ok := parseApplicantID(c)
	if !ok {
		return
	}
	app, err := h.applicantUC.Transition(c.Request.Context(), id, domain.EventReject, actorFromContext(c))
	respondTransition(c, app, err)
}

// CheckinApplicant godoc
// @Summary      Check an applicant in at the event
// @Description  Requires exactly the confirmed stage; repeated check-ins fail.
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "Applicant ID"
// @Success      200  {object}  response.Envelope{data=domain.Applicant}
// @Failure      409  {object}  response.Envelope
// @Router       /admin/applicants/{id}/checkin [post]
// @Security     BearerAuth
func (h *AdminHandler) CheckinApplicant(c *gin.Context) {
	id, ok := parseApplicantID(c)
	if !ok {
		return
	}
	app, err := h.applicantUC.Transition(c.Request.Context(), id, domain.EventCheckin, actorFromContext(c))
	respondTransition(c, app, err)
}
