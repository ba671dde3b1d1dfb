package database

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"film_camp/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureCollections tạo các collection còn thiếu.
// Transaction trên MongoDB không tự tạo collection nên phải tạo trước khi server nhận request.
func EnsureCollections(ctx context.Context, db *mongo.Database, names []string) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	for _, name := range names {
		if have[name] {
			continue
		}
		logger.GetAppLogger().WithField("collection", name).Info("🗄️ [DATABASE] Collection chưa tồn tại, tạo mới")
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

// indexSpec là một index được khai báo qua tag `index` của model
type indexSpec struct {
	name string
	keys bson.D
	opts *options.IndexOptions
}

// parseIndexTag tách tag thành các cấu hình, phân cách bởi ';' và ','.
// Ví dụ: "single:1" / "unique,sparse" / "compound:app_project_user" / "ttl:3600".
func parseIndexTag(tag string) []map[string]string {
	var result []map[string]string
	for _, part := range strings.Split(tag, ";") {
		entry := map[string]string{}
		for _, sub := range strings.Split(part, ",") {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				continue
			}
			k, v, _ := strings.Cut(sub, ":")
			entry[k] = v
		}
		if len(entry) > 0 {
			result = append(result, entry)
		}
	}
	return result
}

// parseOrder: "order:-1" hoặc "single:-1" = giảm dần, còn lại tăng dần
func parseOrder(cfg map[string]string) int {
	if cfg["order"] == "-1" || cfg["single"] == "-1" {
		return -1
	}
	return 1
}

// indexSpecs đọc tag `index` của model và dựng danh sách index
func indexSpecs(model interface{}) ([]indexSpec, error) {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var specs []indexSpec
	compound := map[string]*indexSpec{}
	var compoundOrder []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.Split(field.Tag.Get("bson"), ",")[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, cfg := range parseIndexTag(tag) {
			_, sparse := cfg["sparse"]

			if _, ok := cfg["text"]; ok {
				name := bsonField + "_text"
				specs = append(specs, indexSpec{name, bson.D{{Key: bsonField, Value: "text"}}, options.Index().SetName(name)})
			}
			if _, ok := cfg["single"]; ok {
				name := bsonField + "_single"
				specs = append(specs, indexSpec{name, bson.D{{Key: bsonField, Value: parseOrder(cfg)}}, options.Index().SetName(name)})
			}
			if _, ok := cfg["unique"]; ok {
				name := bsonField + "_unique"
				opts := options.Index().SetName(name).SetUnique(true)
				if sparse {
					opts.SetSparse(true)
				}
				specs = append(specs, indexSpec{name, bson.D{{Key: bsonField, Value: 1}}, opts})
			}
			if v, ok := cfg["ttl"]; ok {
				ttl, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("TTL không hợp lệ ở field %s: %w", bsonField, err)
				}
				name := bsonField + "_ttl"
				specs = append(specs, indexSpec{name, bson.D{{Key: bsonField, Value: 1}}, options.Index().SetName(name).SetExpireAfterSeconds(int32(ttl))})
			}
			if group, ok := cfg["compound"]; ok {
				spec, exists := compound[group]
				if !exists {
					spec = &indexSpec{name: group, opts: options.Index().SetName(group)}
					compound[group] = spec
					compoundOrder = append(compoundOrder, group)
				}
				spec.keys = append(spec.keys, bson.E{Key: bsonField, Value: parseOrder(cfg)})
				if strings.HasSuffix(group, "_unique") {
					spec.opts.SetUnique(true)
				}
				if sparse {
					spec.opts.SetSparse(true)
				}
			}
		}
	}

	for _, group := range compoundOrder {
		specs = append(specs, *compound[group])
	}
	return specs, nil
}

// sameKeys so sánh khóa của index đang có với khóa mới
func sameKeys(existing bson.M, keys bson.D, opts *options.IndexOptions) bool {
	existingKeys, ok := existing["key"].(bson.M)
	if !ok || len(existingKeys) != len(keys) {
		return false
	}
	for _, k := range keys {
		ev, ok := existingKeys[k.Key]
		if !ok {
			return false
		}
		if want, isInt := k.Value.(int); isInt {
			switch v := ev.(type) {
			case int32:
				if int(v) != want {
					return false
				}
			case int64:
				if int(v) != want {
					return false
				}
			case float64:
				if int(v) != want {
					return false
				}
			default:
				return false
			}
		} else if ev != k.Value {
			return false
		}
	}

	wantUnique := opts.Unique != nil && *opts.Unique
	gotUnique, _ := existing["unique"].(bool)
	return wantUnique == gotUnique
}

// ensureIndex tạo index, nếu index cùng tên đã có nhưng khác cấu hình thì xóa và tạo lại
func ensureIndex(ctx context.Context, coll *mongo.Collection, existing map[string]bson.M, spec indexSpec) error {
	log := logger.GetAppLogger().WithFields(map[string]interface{}{
		"collection": coll.Name(),
		"index":      spec.name,
	})

	if current, ok := existing[spec.name]; ok {
		if sameKeys(current, spec.keys, spec.opts) {
			return nil
		}
		if _, err := coll.Indexes().DropOne(ctx, spec.name); err != nil {
			return fmt.Errorf("không thể xóa index %s: %w", spec.name, err)
		}
		log.Info("🗄️ [DATABASE] Đã xóa index cũ khác cấu hình")
	}

	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.keys, Options: spec.opts}); err != nil {
		return fmt.Errorf("không thể tạo index %s: %w", spec.name, err)
	}
	log.Info("🗄️ [DATABASE] Đã tạo index")
	return nil
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]bson.M, error) {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	out := map[string]bson.M{}
	for cursor.Next(ctx) {
		var info bson.M
		if err := cursor.Decode(&info); err != nil {
			return nil, fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := info["name"].(string); ok {
			out[name] = info
		}
	}
	return out, cursor.Err()
}

// CreateIndexes tạo các index khai báo bằng tag `index` trên model của collection
func CreateIndexes(ctx context.Context, coll *mongo.Collection, model interface{}) error {
	specs, err := indexSpecs(model)
	if err != nil {
		return err
	}
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := ensureIndex(ctx, coll, existing, spec); err != nil {
			return err
		}
	}
	return nil
}
