// Package basesvc cung cấp service generic cho việc tương tác với MongoDB.
// Mọi document dùng _id kiểu string (id hồ sơ "{projectId}_{userId}", UID Firebase, hex ObjectID).
package basesvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	basemodels "film_camp/internal/api/base/models"
	"film_camp/internal/api/events"
	"film_camp/internal/common"
	"film_camp/internal/global"
	"film_camp/internal/logger"
	"film_camp/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BaseServiceMongo định nghĩa các thao tác cơ bản trên một collection.
// Domain service nhận interface này để test được với basesvctest.MemoryService.
type BaseServiceMongo[T any] interface {
	Name() string

	InsertOne(ctx context.Context, data T) (T, error)
	FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error)
	FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	DocumentExists(ctx context.Context, filter interface{}) (bool, error)

	// UpdateOne cập nhật document đầu tiên khớp filter, trả về ErrNotFound khi không khớp.
	// Dùng filter có điều kiện (ví dụ {_id, status}) để chuyển trạng thái nguyên tử.
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (T, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	// Upsert cập nhật hoặc tạo mới. Chỉ có SetOnInsert thì document đã tồn tại không bị đổi.
	Upsert(ctx context.Context, filter interface{}, update interface{}) (T, error)
	DeleteOne(ctx context.Context, filter interface{}) error
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)

	FindOneById(ctx context.Context, id string) (T, error)
	UpdateById(ctx context.Context, id string, update interface{}) (T, error)
	DeleteById(ctx context.Context, id string) error
}

// Transactor chạy fn trong transaction. Mọi thao tác dùng ctx truyền vào fn thuộc cùng transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BaseServiceMongoImpl triển khai BaseServiceMongo trên *mongo.Collection
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo service cho collection
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{collection: collection}
}

// FromRegistry tạo service cho collection đã đăng ký trong global.RegistryCollections lúc khởi động
func FromRegistry[T any](name string) (*BaseServiceMongoImpl[T], error) {
	collection, exist := global.RegistryCollections.Get(name)
	if !exist {
		return nil, fmt.Errorf("failed to get %s collection: %w", name, common.ErrNotFound)
	}
	return NewBaseServiceMongo[T](collection), nil
}

// Collection trả về collection MongoDB gốc (dùng cho aggregate)
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// Name trả về tên collection
func (s *BaseServiceMongoImpl[T]) Name() string {
	return s.collection.Name()
}

func (s *BaseServiceMongoImpl[T]) emit(ctx context.Context, op string, doc T) {
	events.EmitDataChanged(ctx, events.DataChangeEvent{
		CollectionName: s.collection.Name(),
		Operation:      op,
		Document:       doc,
	})
}

func normalizeFilter(filter interface{}) interface{} {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

// PrepareInsert chuyển model thành map để insert: bỏ field string rỗng (sparse index bỏ qua field vắng mặt,
// không bỏ qua chuỗi rỗng), sinh _id nếu thiếu, gắn createdAt/updatedAt.
func PrepareInsert(data interface{}, now int64) (map[string]interface{}, error) {
	dataMap, err := utility.ToMap(data)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidFormat, err.Error())
	}
	for key, value := range dataMap {
		if str, ok := value.(string); ok && str == "" {
			delete(dataMap, key)
		}
	}
	if _, ok := dataMap["_id"]; !ok {
		dataMap["_id"] = primitive.NewObjectID().Hex()
	}
	dataMap["createdAt"] = now
	dataMap["updatedAt"] = now
	return dataMap, nil
}

// PrepareUpdate thêm updatedAt vào $set
func PrepareUpdate(update interface{}, now int64) (*UpdateData, error) {
	updateData, err := ToUpdateData(update)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidFormat, err.Error())
	}
	if updateData.Set == nil {
		updateData.Set = make(map[string]interface{})
	}
	updateData.Set["updatedAt"] = now
	return updateData, nil
}

// PrepareUpsert gắn timestamps cho upsert: createdAt luôn qua $setOnInsert,
// updatedAt qua $set khi có $set, ngược lại qua $setOnInsert để lần gọi lặp lại không thay đổi document.
func PrepareUpsert(update interface{}, now int64) (*UpdateData, error) {
	updateData, err := ToUpdateData(update)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidFormat, err.Error())
	}
	if updateData.SetOnInsert == nil {
		updateData.SetOnInsert = make(map[string]interface{})
	}
	updateData.SetOnInsert["createdAt"] = now
	if len(updateData.Set) > 0 || len(updateData.Unset) > 0 || len(updateData.Inc) > 0 ||
		len(updateData.Push) > 0 || len(updateData.Pull) > 0 {
		if updateData.Set == nil {
			updateData.Set = make(map[string]interface{})
		}
		updateData.Set["updatedAt"] = now
		delete(updateData.SetOnInsert, "updatedAt")
	} else {
		updateData.SetOnInsert["updatedAt"] = now
	}
	return updateData, nil
}

// InsertOne tạo mới document và đọc lại bản đã lưu
func (s *BaseServiceMongoImpl[T]) InsertOne(ctx context.Context, data T) (T, error) {
	var zero T

	dataMap, err := PrepareInsert(data, time.Now().UnixMilli())
	if err != nil {
		return zero, err
	}

	result, err := s.collection.InsertOne(ctx, dataMap)
	if err != nil {
		return zero, common.ConvertMongoError(err)
	}

	var created T
	if err := s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created); err != nil {
		return zero, common.ConvertMongoError(err)
	}

	s.emit(ctx, events.OpInsert, created)
	return created, nil
}

// FindOne tìm một document, trả về ErrNotFound khi không có
func (s *BaseServiceMongoImpl[T]) FindOne(ctx context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero, result T
	if opts == nil {
		opts = options.FindOne()
	}

	if err := s.collection.FindOne(ctx, normalizeFilter(filter), opts).Decode(&result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}
	return result, nil
}

// Find trả về mọi document khớp filter, luôn là slice khác nil
func (s *BaseServiceMongoImpl[T]) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	if opts == nil {
		opts = options.Find()
	}

	cursor, err := s.collection.Find(ctx, normalizeFilter(filter), opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// FindWithPagination trả về một trang kết quả cùng tổng số
func (s *BaseServiceMongoImpl[T]) FindWithPagination(ctx context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	page, limit = basemodels.NormalizePage(page, limit, 0)
	if opts == nil {
		opts = options.Find()
	}
	opts.SetSkip((page - 1) * limit).SetLimit(limit)

	filter = normalizeFilter(filter)
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	items, err := s.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return basemodels.NewPaginateResult(items, page, limit, total), nil
}

// CountDocuments đếm số document khớp filter
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, normalizeFilter(filter))
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return count, nil
}

// DocumentExists kiểm tra có document khớp filter không
func (s *BaseServiceMongoImpl[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, normalizeFilter(filter), options.Count().SetLimit(1))
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return count > 0, nil
}

// UpdateOne cập nhật nguyên tử bằng FindOneAndUpdate và trả về bản sau khi cập nhật
func (s *BaseServiceMongoImpl[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (T, error) {
	var zero, updated T

	updateData, err := PrepareUpdate(update, time.Now().UnixMilli())
	if err != nil {
		return zero, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.collection.FindOneAndUpdate(ctx, normalizeFilter(filter), updateData, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, common.ErrNotFound
		}
		return zero, common.ConvertMongoError(err)
	}

	s.emit(ctx, events.OpUpdate, updated)
	return updated, nil
}

// UpdateMany cập nhật mọi document khớp filter, trả về số document đã khớp
func (s *BaseServiceMongoImpl[T]) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	updateData, err := PrepareUpdate(update, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}

	result, err := s.collection.UpdateMany(ctx, normalizeFilter(filter), updateData)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.MatchedCount, nil
}

// Upsert cập nhật nếu tồn tại, tạo mới nếu chưa có
func (s *BaseServiceMongoImpl[T]) Upsert(ctx context.Context, filter interface{}, update interface{}) (T, error) {
	var zero, upserted T

	updateData, err := PrepareUpsert(update, time.Now().UnixMilli())
	if err != nil {
		return zero, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	if err := s.collection.FindOneAndUpdate(ctx, normalizeFilter(filter), updateData, opts).Decode(&upserted); err != nil {
		logger.GetAppLogger().WithFields(map[string]interface{}{
			"collection": s.collection.Name(),
			"filter":     fmt.Sprint(filter),
			"error":      err.Error(),
		}).Error("🗄️ [DATABASE] Upsert thất bại")
		return zero, common.ConvertMongoError(err)
	}

	s.emit(ctx, events.OpUpsert, upserted)
	return upserted, nil
}

// DeleteOne xóa document đầu tiên khớp filter, trả về ErrNotFound khi không có
func (s *BaseServiceMongoImpl[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	var deleted T
	if err := s.collection.FindOneAndDelete(ctx, normalizeFilter(filter)).Decode(&deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return common.ErrNotFound
		}
		return common.ConvertMongoError(err)
	}

	s.emit(ctx, events.OpDelete, deleted)
	return nil
}

// DeleteMany xóa mọi document khớp filter
func (s *BaseServiceMongoImpl[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, normalizeFilter(filter))
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return result.DeletedCount, nil
}

// FindOneById tìm document theo _id
func (s *BaseServiceMongoImpl[T]) FindOneById(ctx context.Context, id string) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

// UpdateById cập nhật document theo _id
func (s *BaseServiceMongoImpl[T]) UpdateById(ctx context.Context, id string, update interface{}) (T, error) {
	return s.UpdateOne(ctx, bson.M{"_id": id}, update)
}

// DeleteById xóa document theo _id
func (s *BaseServiceMongoImpl[T]) DeleteById(ctx context.Context, id string) error {
	return s.DeleteOne(ctx, bson.M{"_id": id})
}
