package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sourcehub/hub-backend/internal/models"
	"github.com/sourcehub/hub-backend/internal/service"
)

// ============================================
// Member Handler
// ============================================

type MemberHandler struct {
	membershipService service.MembershipService
}

func (h *MemberHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.membershipService.Register(c.Request.Context(), service.RegisterMemberInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Phone:        req.Phone,
		Tier:         req.Tier,
		Scholarship:  req.Scholarship,
		Bio:          req.Bio,
		Skills:       req.Skills,
		Interests:    req.Interests,
		PortfolioURL: req.PortfolioURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMemberResponse(member))
}

func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.membershipService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.membershipService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	response := make([]models.MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.membershipService.UpdateProfile(c.Request.Context(), c.Param("id"), service.UpdateProfileInput{
		Name:              req.Name,
		Phone:             req.Phone,
		Bio:               req.Bio,
		Skills:            req.Skills,
		Interests:         req.Interests,
		PortfolioURL:      req.PortfolioURL,
		StorageUnitNumber: req.StorageUnitNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Suspend(c *gin.Context) {
	member, err := h.membershipService.Suspend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Reactivate(c *gin.Context) {
	member, err := h.membershipService.Reactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) ReissueCard(c *gin.Context) {
	member, err := h.membershipService.ReissueAccessCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) ApplyScholarship(c *gin.Context) {
	member, err := h.membershipService.ApplyScholarship(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) RemoveScholarship(c *gin.Context) {
	member, err := h.membershipService.RemoveScholarship(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMemberResponse(member))
}

func (h *MemberHandler) Tiers(c *gin.Context) {
	tiers := []gin.H{
		{"tier": "trial", "monthlyPrice": 0.0, "durationDays": 7},
		{"tier": "basic", "monthlyPrice": service.TierPrice("basic").InexactFloat64(), "durationDays": 30},
		{"tier": "pro", "monthlyPrice": service.TierPrice("pro").InexactFloat64(), "durationDays": 30},
		{"tier": "enterprise", "monthlyPrice": service.TierPrice("enterprise").InexactFloat64(), "durationDays": 30},
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}

func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.membershipService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
