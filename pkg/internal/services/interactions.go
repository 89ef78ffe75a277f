package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"gorm.io/gorm"
)

func FilterWithTarget(tx *gorm.DB, target models.TargetRef) *gorm.DB {
	return tx.Where("target_kind = ? AND target_id = ?", target.Kind, target.ID)
}

// EnsureTarget checks the referenced listing exists and is visible to the viewer.
// Hidden listings report NotFound, the same as their detail endpoints.
func EnsureTarget(target models.TargetRef, viewer *models.Account) error {
	if !target.IsValid() {
		return NewValidationError("target", "invalid target")
	}

	switch target.Kind {
	case models.TargetRental:
		_, err := GetVisibleRentalPost(target.ID, viewer)
		return err
	default:
		var count int64
		tx := FilterRequestVisibility(database.C.Model(&models.TenantRequest{}), viewer)
		if err := tx.Where("id = ?", target.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("unable to check tenant request: %v", err)
		} else if count == 0 {
			return NewNotFoundError("tenant request")
		}
		return nil
	}
}

func NewComment(author models.Account, target models.TargetRef, content string, parentID *uint) (models.Comment, error) {
	comment := models.Comment{
		Content:   strings.TrimSpace(content),
		Active:    true,
		Target:    target,
		ParentID:  parentID,
		AccountID: author.ID,
	}
	if len(comment.Content) == 0 {
		return comment, NewValidationError("content", "content is required")
	}
	if err := EnsureTarget(target, &author); err != nil {
		return comment, err
	}

	if parentID != nil {
		var parent models.Comment
		if err := FilterWithTarget(database.C, target).Where("id = ?", *parentID).First(&parent).Error; err != nil {
			if database.IsNotFound(err) {
				return comment, NewValidationError("parent_id", "parent comment does not belong to this listing")
			}
			return comment, fmt.Errorf("unable to get parent comment: %v", err)
		}
	}

	if err := database.C.Create(&comment).Error; err != nil {
		return comment, fmt.Errorf("unable to create comment: %v", err)
	}
	comment.Account = &author
	return comment, nil
}

func DeleteComment(author models.Account, target models.TargetRef, commentID uint) error {
	res := FilterWithTarget(database.C, target).
		Where("id = ? AND account_id = ?", commentID, author.ID).
		Delete(&models.Comment{})
	if res.Error != nil {
		return fmt.Errorf("unable to delete comment: %v", res.Error)
	} else if res.RowsAffected == 0 {
		return NewNotFoundError("comment")
	}
	return nil
}

// ListComments returns the active top level comments of a listing, newest first, with their replies.
func ListComments(target models.TargetRef, take, offset int) ([]models.Comment, int64, error) {
	if take > 100 {
		take = 100
	}

	tx := FilterWithTarget(database.C.Model(&models.Comment{}), target).
		Where("parent_id IS NULL AND active = ?", true).
		Session(&gorm.Session{})

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("unable to count comments: %v", err)
	}

	var comments []models.Comment
	if err := tx.
		Preload("Account").
		Preload("Replies", "active = ?", true, func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.Account").
		Order("created_at DESC").
		Limit(take).Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, 0, fmt.Errorf("unable to list comments: %v", err)
	}

	return comments, count, nil
}

func LikeTarget(account models.Account, target models.TargetRef) (models.Like, error) {
	like := models.Like{Target: target, AccountID: account.ID}
	if err := EnsureTarget(target, &account); err != nil {
		return like, err
	}

	if err := database.C.Create(&like).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return like, NewValidationError("target", "already liked")
		}
		return like, fmt.Errorf("unable to like: %v", err)
	}
	return like, nil
}

func UnlikeTarget(account models.Account, target models.TargetRef) error {
	res := FilterWithTarget(database.C.Unscoped(), target).
		Where("account_id = ?", account.ID).
		Delete(&models.Like{})
	if res.Error != nil {
		return fmt.Errorf("unable to unlike: %v", res.Error)
	} else if res.RowsAffected == 0 {
		return NewNotFoundError("like")
	}
	return nil
}

func CountLikes(target models.TargetRef) (int64, error) {
	var count int64
	err := FilterWithTarget(database.C.Model(&models.Like{}), target).Count(&count).Error
	return count, err
}

func ListLikes(target models.TargetRef) ([]models.Like, error) {
	var likes []models.Like
	if err := FilterWithTarget(database.C, target).
		Preload("Account").
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("unable to list likes: %v", err)
	}
	return likes, nil
}

func HasLiked(account models.Account, target models.TargetRef) (bool, error) {
	var like models.Like
	err := FilterWithTarget(database.C, target).Where("account_id = ?", account.ID).First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
