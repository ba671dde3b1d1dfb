// Package router đăng ký các route thành viên nhóm dưới /applications/:id/members.
package router

import (
	"fmt"

	appmodels "film_camp/internal/api/application/models"
	basesvc "film_camp/internal/api/base/service"
	memberhdl "film_camp/internal/api/member/handler"
	models "film_camp/internal/api/member/models"
	membersvc "film_camp/internal/api/member/service"
	apirouter "film_camp/internal/api/router"
	"film_camp/internal/global"

	"github.com/gofiber/fiber/v3"
)

// NewService tạo MemberService từ các collection đã đăng ký
func NewService(_ apirouter.Deps) (*membersvc.MemberService, error) {
	members, err := basesvc.FromRegistry[models.Member](global.MongoDB_ColNames.ApplicationMembers)
	if err != nil {
		return nil, err
	}
	apps, err := basesvc.FromRegistry[appmodels.Application](global.MongoDB_ColNames.Applications)
	if err != nil {
		return nil, err
	}
	return membersvc.NewMemberService(members, apps), nil
}

// Register đăng ký route thành viên, dùng chung group /applications (đã đăng nhập)
func Register(v1 fiber.Router, r *apirouter.Router) error {
	service, err := NewService(r.Deps())
	if err != nil {
		return fmt.Errorf("failed to create member service: %w", err)
	}
	h := memberhdl.NewMemberHandler(service)

	r.Mount(v1, "/applications", []fiber.Handler{r.RequireAuth()},
		apirouter.GET("/:id/members", h.HandleList),
		apirouter.GET("/:id/members/roster", h.HandleLoadRoster),
		apirouter.POST("/:id/members", h.HandleCreate),
		apirouter.PUT("/:id/members/teacher", h.HandleUpsertTeacher),
		apirouter.PUT("/:id/members/:memberId", h.HandleUpdate),
		apirouter.PUT("/:id/members/:memberId/stay", h.HandleSetStay),
		apirouter.DELETE("/:id/members/:memberId", h.HandleDelete),
	)
	return nil
}
