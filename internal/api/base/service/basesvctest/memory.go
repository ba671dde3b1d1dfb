// Package basesvctest cung cấp BaseServiceMongo chạy trong bộ nhớ cho unit test của domain service.
// Hỗ trợ tập con filter / update của MongoDB mà các service dùng:
// so sánh bằng (kể cả phần tử mảng), $in, $nin, $ne, $exists, $gt/$gte/$lt/$lte, $regex, $or, $and;
// $set, $setOnInsert, $unset, $inc, $push, $pull; sort / skip / limit.
package basesvctest

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	basemodels "film_camp/internal/api/base/models"
	basesvc "film_camp/internal/api/base/service"
	"film_camp/internal/common"
	"film_camp/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemoryService là BaseServiceMongo lưu document dạng bson.M trong map
type MemoryService[T any] struct {
	name string

	mu    sync.Mutex
	docs  map[string]bson.M
	order []string
	last  int64
	err   error
	calls map[string]int
}

var _ basesvc.BaseServiceMongo[struct{}] = (*MemoryService[struct{}])(nil)

// NewMemoryService tạo service rỗng với tên collection
func NewMemoryService[T any](name string) *MemoryService[T] {
	return &MemoryService[T]{name: name, docs: map[string]bson.M{}, calls: map[string]int{}}
}

func (s *MemoryService[T]) Name() string { return s.name }

// SetError làm mọi thao tác sau đó trả về err (nil để tắt)
func (s *MemoryService[T]) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls trả về số lần method được gọi
func (s *MemoryService[T]) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Seed chèn document giữ nguyên createdAt/updatedAt nếu đã có
func (s *MemoryService[T]) Seed(items ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		doc, err := toDoc(item)
		if err != nil {
			panic(err)
		}
		id, _ := doc["_id"].(string)
		if id == "" {
			id = primitive.NewObjectID().Hex()
			doc["_id"] = id
		}
		if _, ok := doc["createdAt"]; !ok {
			now := s.tick()
			doc["createdAt"] = now
			doc["updatedAt"] = now
		}
		s.put(id, doc)
	}
}

// All trả về mọi document theo thứ tự chèn
func (s *MemoryService[T]) All() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		v, _ := fromDoc[T](s.docs[id])
		out = append(out, v)
	}
	return out
}

// tick trả về timestamp tăng dần để thứ tự theo createdAt ổn định trong test
func (s *MemoryService[T]) tick() int64 {
	now := time.Now().UnixMilli()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}

func (s *MemoryService[T]) put(id string, doc bson.M) {
	if _, exists := s.docs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.docs[id] = doc
}

func (s *MemoryService[T]) remove(id string) {
	delete(s.docs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemoryService[T]) begin(method string) error {
	s.calls[method]++
	return s.err
}

func (s *MemoryService[T]) InsertOne(_ context.Context, data T) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("InsertOne"); err != nil {
		return zero, err
	}

	raw, err := basesvc.PrepareInsert(data, s.tick())
	if err != nil {
		return zero, err
	}
	doc := normalize(raw).(bson.M)
	id := fmt.Sprint(doc["_id"])
	if _, exists := s.docs[id]; exists {
		return zero, common.ErrMongoDuplicate
	}
	if err := s.checkUnique(doc); err != nil {
		return zero, err
	}
	s.put(id, doc)
	return fromDoc[T](doc)
}

// checkUnique mô phỏng partial unique index chủ hồ sơ (applicationId + isOwner=true)
func (s *MemoryService[T]) checkUnique(doc bson.M) error {
	if owner, _ := doc["isOwner"].(bool); !owner {
		return nil
	}
	for id, other := range s.docs {
		if id == doc["_id"] {
			continue
		}
		if o, _ := other["isOwner"].(bool); o && valuesEqual(other["applicationId"], doc["applicationId"]) {
			return common.ErrMongoDuplicate
		}
	}
	return nil
}

func (s *MemoryService[T]) FindOne(_ context.Context, filter interface{}, opts *options.FindOneOptions) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("FindOne"); err != nil {
		return zero, err
	}

	var sortSpec interface{}
	if opts != nil {
		sortSpec = opts.Sort
	}
	docs, err := s.query(filter, sortSpec)
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, common.ErrNotFound
	}
	return fromDoc[T](docs[0])
}

func (s *MemoryService[T]) Find(_ context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Find"); err != nil {
		return nil, err
	}
	return s.find(filter, opts)
}

func (s *MemoryService[T]) find(filter interface{}, opts *options.FindOptions) ([]T, error) {
	var sortSpec interface{}
	if opts != nil {
		sortSpec = opts.Sort
	}
	docs, err := s.query(filter, sortSpec)
	if err != nil {
		return nil, err
	}
	if opts != nil && opts.Skip != nil {
		skip := int(*opts.Skip)
		if skip > len(docs) {
			skip = len(docs)
		}
		docs = docs[skip:]
	}
	if opts != nil && opts.Limit != nil && *opts.Limit > 0 && int(*opts.Limit) < len(docs) {
		docs = docs[:*opts.Limit]
	}

	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := fromDoc[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *MemoryService[T]) FindWithPagination(_ context.Context, filter interface{}, page, limit int64, opts *options.FindOptions) (*basemodels.PaginateResult[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("FindWithPagination"); err != nil {
		return nil, err
	}

	page, limit = basemodels.NormalizePage(page, limit, 0)
	all, err := s.query(filter, nil)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = options.Find()
	}
	opts.SetSkip((page - 1) * limit).SetLimit(limit)
	items, err := s.find(filter, opts)
	if err != nil {
		return nil, err
	}
	return basemodels.NewPaginateResult(items, page, limit, int64(len(all))), nil
}

func (s *MemoryService[T]) CountDocuments(_ context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("CountDocuments"); err != nil {
		return 0, err
	}
	docs, err := s.query(filter, nil)
	return int64(len(docs)), err
}

func (s *MemoryService[T]) DocumentExists(ctx context.Context, filter interface{}) (bool, error) {
	n, err := s.CountDocuments(ctx, filter)
	return n > 0, err
}

func (s *MemoryService[T]) UpdateOne(_ context.Context, filter interface{}, update interface{}) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UpdateOne"); err != nil {
		return zero, err
	}

	docs, err := s.query(filter, nil)
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, common.ErrNotFound
	}
	updateData, err := basesvc.PrepareUpdate(update, s.tick())
	if err != nil {
		return zero, err
	}
	doc := cloneDoc(docs[0])
	applyUpdate(doc, updateData, false)
	s.put(fmt.Sprint(doc["_id"]), doc)
	return fromDoc[T](doc)
}

func (s *MemoryService[T]) UpdateMany(_ context.Context, filter interface{}, update interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("UpdateMany"); err != nil {
		return 0, err
	}

	docs, err := s.query(filter, nil)
	if err != nil {
		return 0, err
	}
	updateData, err := basesvc.PrepareUpdate(update, s.tick())
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		doc := cloneDoc(d)
		applyUpdate(doc, updateData, false)
		s.put(fmt.Sprint(doc["_id"]), doc)
	}
	return int64(len(docs)), nil
}

func (s *MemoryService[T]) Upsert(_ context.Context, filter interface{}, update interface{}) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Upsert"); err != nil {
		return zero, err
	}

	docs, err := s.query(filter, nil)
	if err != nil {
		return zero, err
	}
	updateData, err := basesvc.PrepareUpsert(update, s.tick())
	if err != nil {
		return zero, err
	}

	if len(docs) > 0 {
		doc := cloneDoc(docs[0])
		applyUpdate(doc, updateData, false)
		s.put(fmt.Sprint(doc["_id"]), doc)
		return fromDoc[T](doc)
	}

	// Tạo mới: lấy các điều kiện bằng trong filter làm field gốc như MongoDB
	doc := bson.M{}
	f, err := toFilter(filter)
	if err != nil {
		return zero, err
	}
	for k, v := range f {
		if strings.HasPrefix(k, "$") {
			continue
		}
		if _, isOp := v.(bson.M); isOp {
			continue
		}
		setPath(doc, k, v)
	}
	applyUpdate(doc, updateData, true)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID().Hex()
	}
	if err := s.checkUnique(doc); err != nil {
		return zero, err
	}
	s.put(fmt.Sprint(doc["_id"]), doc)
	return fromDoc[T](doc)
}

func (s *MemoryService[T]) DeleteOne(_ context.Context, filter interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("DeleteOne"); err != nil {
		return err
	}
	docs, err := s.query(filter, nil)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return common.ErrNotFound
	}
	s.remove(fmt.Sprint(docs[0]["_id"]))
	return nil
}

func (s *MemoryService[T]) DeleteMany(_ context.Context, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("DeleteMany"); err != nil {
		return 0, err
	}
	docs, err := s.query(filter, nil)
	if err != nil {
		return 0, err
	}
	for _, d := range docs {
		s.remove(fmt.Sprint(d["_id"]))
	}
	return int64(len(docs)), nil
}

func (s *MemoryService[T]) FindOneById(ctx context.Context, id string) (T, error) {
	return s.FindOne(ctx, bson.M{"_id": id}, nil)
}

func (s *MemoryService[T]) UpdateById(ctx context.Context, id string, update interface{}) (T, error) {
	return s.UpdateOne(ctx, bson.M{"_id": id}, update)
}

func (s *MemoryService[T]) DeleteById(ctx context.Context, id string) error {
	return s.DeleteOne(ctx, bson.M{"_id": id})
}

// snapshot / restore dùng cho MemoryTransactor
func (s *MemoryService[T]) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make(map[string]bson.M, len(s.docs))
	for k, v := range s.docs {
		docs[k] = cloneDoc(v)
	}
	order := append([]string(nil), s.order...)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.docs = docs
		s.order = order
	}
}

// query trả về các document khớp filter, đã sắp xếp
func (s *MemoryService[T]) query(filter interface{}, sortSpec interface{}) ([]bson.M, error) {
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}
	var out []bson.M
	for _, id := range s.order {
		if matches(s.docs[id], f) {
			out = append(out, s.docs[id])
		}
	}
	if sortSpec != nil {
		keys, err := toSortKeys(sortSpec)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(out, func(i, j int) bool {
			for _, k := range keys {
				a, _ := getPath(out[i], k.Key)
				b, _ := getPath(out[j], k.Key)
				c := compareValues(a, b)
				if c == 0 {
					continue
				}
				if k.Value < 0 {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	return out, nil
}

// ====================================
// Chuyển đổi
// ====================================

func toDoc(v interface{}) (bson.M, error) {
	m, err := utility.ToMap(v)
	if err != nil {
		return nil, err
	}
	return normalize(m).(bson.M), nil
}

func fromDoc[T any](doc bson.M) (T, error) {
	var out T
	err := utility.FromMap(doc, &out)
	return out, err
}

func toFilter(filter interface{}) (bson.M, error) {
	if filter == nil {
		return bson.M{}, nil
	}
	m, err := utility.ToMap(filter)
	if err != nil {
		return nil, err
	}
	return normalize(m).(bson.M), nil
}

type sortKey struct {
	Key   string
	Value int
}

func toSortKeys(spec interface{}) ([]sortKey, error) {
	var keys []sortKey
	switch v := spec.(type) {
	case bson.D:
		for _, e := range v {
			keys = append(keys, sortKey{e.Key, int(toFloat(e.Value))})
		}
	case bson.M:
		for k, val := range v {
			keys = append(keys, sortKey{k, int(toFloat(val))})
		}
	case map[string]interface{}:
		for k, val := range v {
			keys = append(keys, sortKey{k, int(toFloat(val))})
		}
	default:
		return nil, fmt.Errorf("sort không hỗ trợ kiểu %T", spec)
	}
	return keys, nil
}

// normalize đưa mọi document lồng về bson.M, mảng về []interface{}, số về float64
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.D:
		m := bson.M{}
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.M:
		m := bson.M{}
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case map[string]interface{}:
		m := bson.M{}
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case bson.A:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case int, int32, int64, float32, float64:
		return toFloat(t)
	}
	return v
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func cloneDoc(doc bson.M) bson.M {
	return normalize(doc).(bson.M)
}

// ====================================
// Đường dẫn có dấu chấm
// ====================================

func getPath(doc bson.M, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(bson.M)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func setPath(doc bson.M, path string, value interface{}) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			next = bson.M{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func unsetPath(doc bson.M, path string) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
}

// ====================================
// Update
// ====================================

func applyUpdate(doc bson.M, u *basesvc.UpdateData, inserting bool) {
	// Qua bson như driver thật để struct lồng trở thành document
	norm := func(m map[string]interface{}) bson.M {
		if m == nil {
			return nil
		}
		if doc, err := toDoc(m); err == nil {
			return doc
		}
		return normalize(m).(bson.M)
	}
	if inserting {
		for k, v := range norm(u.SetOnInsert) {
			setPath(doc, k, v)
		}
	}
	for k, v := range norm(u.Set) {
		setPath(doc, k, v)
	}
	for k := range u.Unset {
		unsetPath(doc, k)
	}
	for k, v := range norm(u.Inc) {
		cur, _ := getPath(doc, k)
		setPath(doc, k, toFloat(cur)+toFloat(v))
	}
	for k, v := range norm(u.Push) {
		cur, _ := getPath(doc, k)
		arr, _ := cur.([]interface{})
		setPath(doc, k, append(append([]interface{}{}, arr...), v))
	}
	for k, v := range norm(u.Pull) {
		cur, _ := getPath(doc, k)
		arr, _ := cur.([]interface{})
		kept := []interface{}{}
		for _, item := range arr {
			// {$pull: {files: {url: x}}} khớp phần tử là document theo điều kiện
			if sub, ok := item.(bson.M); ok {
				if cond, ok := v.(bson.M); ok && !isOperatorDoc(cond) {
					if !matches(sub, cond) {
						kept = append(kept, item)
					}
					continue
				}
			}
			if !matchValue(item, true, v) {
				kept = append(kept, item)
			}
		}
		setPath(doc, k, kept)
	}
}

// ====================================
// Filter
// ====================================

func matches(doc bson.M, filter bson.M) bool {
	for k, cond := range filter {
		switch k {
		case "$or":
			list, _ := cond.([]interface{})
			matched := false
			for _, sub := range list {
				if m, ok := sub.(bson.M); ok && matches(doc, m) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case "$and":
			list, _ := cond.([]interface{})
			for _, sub := range list {
				if m, ok := sub.(bson.M); ok && !matches(doc, m) {
					return false
				}
			}
		default:
			val, exists := getPath(doc, k)
			if !matchValue(val, exists, cond) {
				return false
			}
		}
	}
	return true
}

func isOperatorDoc(m bson.M) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func matchValue(val interface{}, exists bool, cond interface{}) bool {
	if re, ok := cond.(primitive.Regex); ok {
		return matchRegex(val, re.Pattern, re.Options)
	}
	ops, ok := cond.(bson.M)
	if !ok || !isOperatorDoc(ops) {
		return equalOrContains(val, exists, cond)
	}

	for op, arg := range ops {
		switch op {
		case "$eq":
			if !equalOrContains(val, exists, arg) {
				return false
			}
		case "$ne":
			if equalOrContains(val, exists, arg) {
				return false
			}
		case "$in":
			list, _ := arg.([]interface{})
			found := false
			for _, item := range list {
				if equalOrContains(val, exists, item) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$nin":
			list, _ := arg.([]interface{})
			for _, item := range list {
				if equalOrContains(val, exists, item) {
					return false
				}
			}
		case "$exists":
			want, _ := arg.(bool)
			if want != exists {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !exists {
				return false
			}
			c := compareValues(val, arg)
			if (op == "$gt" && c <= 0) || (op == "$gte" && c < 0) || (op == "$lt" && c >= 0) || (op == "$lte" && c > 0) {
				return false
			}
		case "$regex":
			pattern := fmt.Sprint(arg)
			if re, ok := arg.(primitive.Regex); ok {
				pattern = re.Pattern
			}
			opts, _ := ops["$options"].(string)
			if !matchRegex(val, pattern, opts) {
				return false
			}
		case "$options":
		default:
			return false
		}
	}
	return true
}

func matchRegex(val interface{}, pattern, opts string) bool {
	if strings.Contains(opts, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	if arr, ok := val.([]interface{}); ok {
		for _, item := range arr {
			if s, ok := item.(string); ok && re.MatchString(s) {
				return true
			}
		}
		return false
	}
	s, ok := val.(string)
	return ok && re.MatchString(s)
}

func equalOrContains(val interface{}, exists bool, want interface{}) bool {
	if want == nil {
		return !exists || val == nil
	}
	if !exists {
		return false
	}
	if arr, ok := val.([]interface{}); ok {
		if _, wantArr := want.([]interface{}); !wantArr {
			for _, item := range arr {
				if valuesEqual(item, want) {
					return true
				}
			}
			return false
		}
	}
	return valuesEqual(val, want)
}

func valuesEqual(a, b interface{}) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func compareValues(a, b interface{}) int {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 1
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		y, ok := b.(string)
		if !ok {
			return 1
		}
		return strings.Compare(x, y)
	case bool:
		y, _ := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	return 0
}
