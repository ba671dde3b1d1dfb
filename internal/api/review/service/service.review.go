// Package reviewsvc - bình luận chấm điểm của ban giám khảo cho hồ sơ và phim ngắn.
// Điểm của đối tượng cha là trung bình điểm các bình luận, ghi cùng transaction với bình luận.
package reviewsvc

import (
	"context"
	"errors"
	"strings"

	basesvc "film_camp/internal/api/base/service"
	reviewdto "film_camp/internal/api/review/dto"
	models "film_camp/internal/api/review/models"
	"film_camp/internal/common"
	"film_camp/internal/logger"
	"film_camp/internal/session"
	"film_camp/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize là số bình luận hiện thêm mỗi lần
const PageSize = 10

// ParentStore là đối tượng cha của bình luận (hồ sơ hoặc phim ngắn)
type ParentStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	SetRating(ctx context.Context, id string, rating float64, count int) error
}

// Source gom collection bình luận và đối tượng cha của một loại
type Source struct {
	Comments basesvc.BaseServiceMongo[models.Comment]
	Parents  ParentStore
}

// mongoParent dùng chung cho mọi collection có field rating và commentCount
type mongoParent[T any] struct {
	store basesvc.BaseServiceMongo[T]
}

// NewParentStore tạo ParentStore trên collection của đối tượng cha
func NewParentStore[T any](store basesvc.BaseServiceMongo[T]) ParentStore {
	return &mongoParent[T]{store: store}
}

func (p *mongoParent[T]) Exists(ctx context.Context, id string) (bool, error) {
	return p.store.DocumentExists(ctx, bson.M{"_id": id})
}

func (p *mongoParent[T]) SetRating(ctx context.Context, id string, rating float64, count int) error {
	_, err := p.store.UpdateById(ctx, id, bson.M{"rating": rating, "commentCount": count})
	return err
}

// ReviewService là service bình luận
type ReviewService struct {
	tx      basesvc.Transactor
	sources map[string]Source
}

// NewReviewService tạo ReviewService, sources theo loại đối tượng cha (models.KindApplication, models.KindShortFilm)
func NewReviewService(tx basesvc.Transactor, sources map[string]Source) *ReviewService {
	return &ReviewService{tx: tx, sources: sources}
}

func (s *ReviewService) source(parent models.ParentRef) (Source, error) {
	src, ok := s.sources[parent.Kind]
	if !ok || parent.ID == "" {
		return Source{}, common.WithDetails(common.ErrInvalidInput, "loại đối tượng bình luận không hợp lệ: "+parent.Kind)
	}
	return src, nil
}

func requireReviewer(sess *session.Session) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	if !sess.CanReview() {
		return common.ErrForbidden
	}
	return nil
}

func checkRating(rating int) error {
	if rating < 1 || rating > 5 {
		return common.NewValidationError(common.FieldError{Field: "rating", Message: "Điểm phải từ 1 đến 5"})
	}
	return nil
}

func ensureParent(ctx context.Context, src Source, id string) error {
	ok, err := src.Parents.Exists(ctx, id)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	if !ok {
		return common.ErrParentNotFound
	}
	return nil
}

// recompute tính lại điểm trung bình và số bình luận của đối tượng cha
func recompute(ctx context.Context, src Source, parentID string) error {
	comments, err := src.Comments.Find(ctx, bson.M{"parentId": parentID}, nil)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	ratings := make([]int, 0, len(comments))
	for _, c := range comments {
		ratings = append(ratings, c.Rating)
	}
	if err := src.Parents.SetRating(ctx, parentID, utility.MeanRating(ratings), len(comments)); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

// AddComment thêm bình luận và cập nhật điểm của đối tượng cha
func (s *ReviewService) AddComment(ctx context.Context, sess *session.Session, parent models.ParentRef, input *reviewdto.CommentInput) (models.Comment, error) {
	if err := requireReviewer(sess); err != nil {
		return models.Comment{}, err
	}
	src, err := s.source(parent)
	if err != nil {
		return models.Comment{}, err
	}
	if err := checkRating(input.Rating); err != nil {
		return models.Comment{}, err
	}

	userName := sess.FullName
	if userName == "" {
		userName = sess.Email
	}
	var created models.Comment
	err = s.tx.WithTransaction(ctx, func(tctx context.Context) error {
		if err := ensureParent(tctx, src, parent.ID); err != nil {
			return err
		}
		var err error
		created, err = src.Comments.InsertOne(tctx, models.Comment{
			ParentID:   parent.ID,
			UserID:     sess.UserID,
			UserName:   userName,
			UserAvatar: sess.ProfileImageURL,
			Text:       strings.TrimSpace(input.Text),
			Rating:     input.Rating,
		})
		if err != nil {
			return common.ConvertMongoError(err)
		}
		return recompute(tctx, src, parent.ID)
	})
	if err != nil {
		return models.Comment{}, err
	}

	logger.Audit(ctx, "review.comment.add", map[string]interface{}{
		"parent_kind": parent.Kind,
		"parent_id":   parent.ID,
		"comment_id":  created.ID,
		"rating":      input.Rating,
	})
	return created, nil
}

// EditComment sửa bình luận của chính mình và cập nhật điểm
func (s *ReviewService) EditComment(ctx context.Context, sess *session.Session, parent models.ParentRef, commentID string, input *reviewdto.CommentInput) (models.Comment, error) {
	if err := requireReviewer(sess); err != nil {
		return models.Comment{}, err
	}
	src, err := s.source(parent)
	if err != nil {
		return models.Comment{}, err
	}
	if err := checkRating(input.Rating); err != nil {
		return models.Comment{}, err
	}

	var updated models.Comment
	err = s.tx.WithTransaction(ctx, func(tctx context.Context) error {
		if err := ensureParent(tctx, src, parent.ID); err != nil {
			return err
		}
		current, err := src.Comments.FindOne(tctx, bson.M{"_id": commentID, "parentId": parent.ID}, nil)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrCommentNotFound
			}
			return common.ConvertMongoError(err)
		}
		if current.UserID != sess.UserID {
			return common.ErrForbidden
		}
		updated, err = src.Comments.UpdateById(tctx, commentID, bson.M{
			"text":   strings.TrimSpace(input.Text),
			"rating": input.Rating,
			"edited": true,
		})
		if err != nil {
			return common.ConvertMongoError(err)
		}
		return recompute(tctx, src, parent.ID)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return updated, nil
}

// ListComments trả về visible bình luận mới nhất (0 = PageSize) cùng tổng số
func (s *ReviewService) ListComments(ctx context.Context, sess *session.Session, parent models.ParentRef, visible int) (*reviewdto.CommentPage, error) {
	if err := requireReviewer(sess); err != nil {
		return nil, err
	}
	src, err := s.source(parent)
	if err != nil {
		return nil, err
	}
	if err := ensureParent(ctx, src, parent.ID); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	all, err := src.Comments.Find(ctx, bson.M{"parentId": parent.ID}, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	if visible <= 0 {
		visible = PageSize
	}
	if visible > len(all) {
		visible = len(all)
	}
	return &reviewdto.CommentPage{
		Items:   append([]models.Comment{}, all[:visible]...),
		Visible: visible,
		Total:   len(all),
		HasMore: visible < len(all),
	}, nil
}
