package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/odvhub/odvhub-backend/internal/app/service"
	apperrors "github.com/odvhub/odvhub-backend/internal/errors"
	"github.com/odvhub/odvhub-backend/internal/middleware"
)

type MemberController struct {
	memberService service.MemberService
}

func NewMemberController(memberService service.MemberService) *MemberController {
	return &MemberController{
		memberService: memberService,
	}
}

// List returns the member register ordered by registration number
// GET /api/v1/admin/members
func (ctrl *MemberController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	members, err := ctrl.memberService.List()
	if err != nil {
		log.Error("Failed to list members", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": members,
		"count":   len(members),
	})
}

// GetByID returns one member with licenses, courses and guardians
// GET /api/v1/admin/members/:id
func (ctrl *MemberController) GetByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid member ID")
		return
	}

	member, err := ctrl.memberService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			apperrors.NotFound(c, apperrors.MemberNotFound, "Member not found")
			return
		}
		log.Error("Failed to fetch member", err, map[string]interface{}{
			"member_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member": member,
	})
}
