package delivery

import (
	"bytes"
	"html/template"
)

var statusLabels = map[string]string{
	"submitted": "đã được nộp",
	"approved":  "đã được duyệt",
	"graduated": "đã hoàn thành khóa học",
	"cancelled": "đã bị hủy",
}

var statusTmpl = template.Must(template.New("status").Parse(
	`<p>Xin chào {{.Name}},</p>
<p>Hồ sơ <b>{{.Group}}</b> cho dự án <b>{{.Project}}</b> {{.Label}}.</p>
{{if .Notes}}<p>Ghi chú từ ban tổ chức: {{.Notes}}</p>{{end}}
<p><a href="{{.Link}}">Xem hồ sơ</a></p>`))

var resetTmpl = template.Must(template.New("reset").Parse(
	`<p>Bạn vừa yêu cầu đặt lại mật khẩu.</p>
<p><a href="{{.Link}}">Đặt lại mật khẩu</a></p>
<p>Nếu không phải bạn, hãy bỏ qua thư này.</p>`))

// StatusChangedMail dựng thư báo trạng thái hồ sơ cho người nộp
func StatusChangedMail(to, name, group, project, status, notes, link string) (Message, error) {
	label, ok := statusLabels[status]
	if !ok {
		label = "đã chuyển sang trạng thái " + status
	}
	var buf bytes.Buffer
	err := statusTmpl.Execute(&buf, map[string]string{
		"Name": name, "Group": group, "Project": project,
		"Label": label, "Notes": notes, "Link": link,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		EventType: EventApplicationStatus,
		To:        to,
		Subject:   "Cập nhật hồ sơ " + group,
		HTML:      buf.String(),
	}, nil
}

// PasswordResetMail dựng thư chứa link đặt lại mật khẩu
func PasswordResetMail(to, link string) (Message, error) {
	var buf bytes.Buffer
	if err := resetTmpl.Execute(&buf, map[string]string{"Link": link}); err != nil {
		return Message{}, err
	}
	return Message{
		EventType: EventPasswordReset,
		To:        to,
		Subject:   "Đặt lại mật khẩu Film Camp",
		HTML:      buf.String(),
	}, nil
}
