package basesvc

import (
	"film_camp/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
)

// UpdateData định nghĩa kiểu dữ liệu cho partial update
type UpdateData struct {
	Set         map[string]interface{} `bson:"$set,omitempty"`         // Các trường cần update
	SetOnInsert map[string]interface{} `bson:"$setOnInsert,omitempty"` // Các trường chỉ set khi upsert tạo mới
	Unset       map[string]interface{} `bson:"$unset,omitempty"`       // Các trường cần xóa
	Inc         map[string]interface{} `bson:"$inc,omitempty"`         // Các trường số cần cộng thêm
	Push        map[string]interface{} `bson:"$push,omitempty"`        // Các trường cần thêm vào array
	Pull        map[string]interface{} `bson:"$pull,omitempty"`        // Các phần tử cần bỏ khỏi array
}

// IsEmpty kiểm tra update không có thao tác nào
func (u *UpdateData) IsEmpty() bool {
	return len(u.Set) == 0 && len(u.SetOnInsert) == 0 && len(u.Unset) == 0 &&
		len(u.Inc) == 0 && len(u.Push) == 0 && len(u.Pull) == 0
}

// ToUpdateData chuyển đổi dữ liệu update thành UpdateData.
// Nhận *UpdateData, UpdateData, map có sẵn operator ($set, ...) hoặc struct / map thường (được bọc trong $set).
func ToUpdateData(data interface{}) (*UpdateData, error) {
	switch v := data.(type) {
	case *UpdateData:
		return v, nil
	case UpdateData:
		return &v, nil
	}

	dataMap, err := utility.ToMap(data)
	if err != nil {
		return nil, err
	}

	hasOperator := false
	for k := range dataMap {
		if len(k) > 0 && k[0] == '$' {
			hasOperator = true
			break
		}
	}
	if !hasOperator {
		return &UpdateData{Set: dataMap}, nil
	}

	update := &UpdateData{}
	update.Set = asMap(dataMap["$set"])
	update.SetOnInsert = asMap(dataMap["$setOnInsert"])
	update.Unset = asMap(dataMap["$unset"])
	update.Inc = asMap(dataMap["$inc"])
	update.Push = asMap(dataMap["$push"])
	update.Pull = asMap(dataMap["$pull"])
	return update, nil
}

func asMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case bson.M:
		return m
	case bson.D:
		return m.Map()
	}
	return nil
}
