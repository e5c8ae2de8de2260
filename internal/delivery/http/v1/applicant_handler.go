package v1

import (
	"errors"
	"net/http"

	"go-hackathon-backend/internal/delivery/http/middleware"
	"go-hackathon-backend/internal/delivery/http/response"
	"go-hackathon-backend/internal/domain"
	"go-hackathon-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicantHandler struct {
	applicantUC domain.ApplicantUsecase
}

// NewApplicantHandler registers the applicant-facing routes
func NewApplicantHandler(r *gin.RouterGroup, applicantUC domain.ApplicantUsecase) {
	handler := &ApplicantHandler{applicantUC: applicantUC}

	applicants := r.Group("/applicants")
	{
		applicants.POST("", middleware.RateLimitMiddleware(middleware.SubmitRateLimitConfig()), handler.SubmitApplication)
		applicants.GET("/me", handler.GetMyApplication)
		applicants.PATCH("/me", handler.UpdateMyApplication)
		applicants.POST("/me/confirm", handler.ConfirmInvite)
		applicants.POST("/me/cancel", handler.CancelApplication)
	}
}

func actorFromContext(c *gin.Context) domain.Identity {
	return domain.Identity{
		AuthID:    c.GetString(string(domain.KeyAuthID)),
		Email:     c.GetString(string(domain.KeyUserEmail)),
		AuthLevel: c.GetString(string(domain.KeyAuthLevel)),
	}
}

// respondTransition renders a transition result, distinguishing a
// committed state change whose external side effect failed from a
// failed transition.
func respondTransition(c *gin.Context, app *domain.Applicant, err error) {
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindExternal && app != nil {
			response.Success(c, http.StatusOK, "Status updated; a notification failed and will be reconciled manually", app)
			return
		}
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Status updated", app)
}

// SubmitApplication godoc
// @Summary      Submit an application
// @Description  Submit the application form. One application per identity.
// @Tags         applicants
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]interface{}  true  "Application form fields"
// @Success      201   {object}  response.Envelope{data=domain.Applicant}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /applicants [post]
// @Security     BearerAuth
func (h *ApplicantHandler) SubmitApplication(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(apperror.Validation("Request body must be a JSON object"))
		return
	}

	app, err := h.applicantUC.SubmitApplication(c.Request.Context(), fields, actorFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// GetMyApplication godoc
// @Summary      Get my application
// @Produce      json
// @Success      200  {object}  response.Envelope{data=domain.Applicant}
// @Failure      404  {object}  response.Envelope
// @Router       /applicants/me [get]
// @Security     BearerAuth
func (h *ApplicantHandler) GetMyApplication(c *gin.Context) {
	app, err := h.applicantUC.GetByAuthID(c.Request.Context(), c.GetString(string(domain.KeyAuthID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// UpdateMyApplication godoc
// @Summary      Update my application profile
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]interface{}  true  "Application form fields"
// @Success      200   {object}  response.Envelope{data=domain.Applicant}
// @Failure      400   {object}  response.Envelope
// @Router       /applicants/me [patch]
// @Security     BearerAuth
func (h *ApplicantHandler) UpdateMyApplication(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(apperror.Validation("Request body must be a JSON object"))
		return
	}

	app, err := h.applicantUC.UpdateProfile(c.Request.Context(), actorFromContext(c), fields)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application updated", app)
}

// ConfirmInvite godoc
// @Summary      Confirm my invite
// @Description  Accept a pending invite before its deadline. Expired invites resolve to rejected.
// @Produce      json
// @Success      200  {object}  response.Envelope{data=domain.Applicant}
// @Failure      409  {object}  response.Envelope
// @Router       /applicants/me/confirm [post]
// @Security     BearerAuth
func (h *ApplicantHandler) ConfirmInvite(c *gin.Context) {
	actor := actorFromContext(c)
	app, err := h.applicantUC.GetByAuthID(c.Request.Context(), actor.AuthID)
	if err != nil {
		c.Error(err)
		return
	}

	updated, err := h.applicantUC.Transition(c.Request.Context(), app.ID, domain.EventConfirm, actor)
	respondTransition(c, updated, err)
}

// CancelApplication godoc
// @Summary      Withdraw my application
// @Description  Before applications close the record is removed and re-applying is possible; afterwards it is kept as cancelled.
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Failure      409  {object}  response.Envelope
// @Router       /applicants/me/cancel [post]
// @Security     BearerAuth
func (h *ApplicantHandler) CancelApplication(c *gin.Context) {
	actor := actorFromContext(c)
	app, err := h.applicantUC.GetByAuthID(c.Request.Context(), actor.AuthID)
	if err != nil {
		c.Error(err)
		return
	}

	updated, err := h.applicantUC.Transition(c.Request.Context(), app.ID, domain.EventCancel, actor)
	if err != nil {
		c.Error(err)
		return
	}
	if updated == nil {
		response.Success(c, http.StatusOK, "Application withdrawn and removed", nil)
		return
	}
	response.Success(c, http.StatusOK, "Application cancelled", updated)
}
