package memberhdl

import (
	basehdl "film_camp/internal/api/base/handler"
	memberdto "film_camp/internal/api/member/dto"
	membersvc "film_camp/internal/api/member/service"

	"github.com/gofiber/fiber/v3"
)

// MemberHandler xử lý các request về thành viên nhóm
type MemberHandler struct {
	*basehdl.BaseHandler
	service *membersvc.MemberService
}

// NewMemberHandler tạo MemberHandler
func NewMemberHandler(service *membersvc.MemberService) *MemberHandler {
	return &MemberHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// HandleList trả về thành viên của hồ sơ
func (h *MemberHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		members, err := h.service.ListMembers(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, members, err)
		return nil
	})
}

// HandleLoadRoster đọc danh sách thành viên ngay sau khi tạo hồ sơ, có thử lại
func (h *MemberHandler) HandleLoadRoster(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		members, err := h.service.LoadRoster(c.Context(), h.Session(c), c.Params("id"))
		h.HandleResponse(c, members, err)
		return nil
	})
}

// HandleCreate thêm thành viên
func (h *MemberHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input memberdto.MemberInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		member, err := h.service.CreateMember(c.Context(), h.Session(c), c.Params("id"), &input)
		h.HandleResponse(c, member, err)
		return nil
	})
}

// HandleUpsertTeacher lưu giáo viên cố vấn
func (h *MemberHandler) HandleUpsertTeacher(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input memberdto.TeacherInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		member, err := h.service.UpsertTeacher(c.Context(), h.Session(c), c.Params("id"), &input)
		h.HandleResponse(c, member, err)
		return nil
	})
}

// HandleUpdate sửa thành viên
func (h *MemberHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var patch memberdto.MemberPatch
		if err := h.ParseRequestBody(c, &patch); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		member, err := h.service.UpdateMember(c.Context(), h.Session(c), c.Params("id"), c.Params("memberId"), &patch)
		h.HandleResponse(c, member, err)
		return nil
	})
}

// HandleSetStay đổi trạng thái ở lại trại
func (h *MemberHandler) HandleSetStay(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input memberdto.StayInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		member, err := h.service.SetStay(c.Context(), h.Session(c), c.Params("id"), c.Params("memberId"), *input.Stay)
		h.HandleResponse(c, member, err)
		return nil
	})
}

// HandleDelete xóa thành viên
func (h *MemberHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		err := h.service.DeleteMember(c.Context(), h.Session(c), c.Params("id"), c.Params("memberId"))
		h.HandleResponse(c, nil, err)
		return nil
	})
}
