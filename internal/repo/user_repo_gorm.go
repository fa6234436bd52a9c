package repo

import (
	"gorm.io/gorm"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
	"roomrent/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(u *domain.User) error {
	if err := r.db.Create(u).Error; err != nil {
		if isDupKey(err) {
			return apperr.Conflict("username or email already exists")
		}
		return internalErr("create user failed", err)
	}
	return nil
}

func (r *UserRepo) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "id = ?", id).Error
	if notFound(err) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, internalErr("find user failed", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(username string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "username = ?", username).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, internalErr("find user failed", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "email = ?", email).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, internalErr("find user failed", err)
	}
	return &u, nil
}

func (r *UserRepo) List(offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, internalErr("count users failed", err)
	}
	users := make([]domain.User, 0, limit)
	if err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, internalErr("list users failed", err)
	}
	return users, total, nil
}

func (r *UserRepo) UpdateProfile(id uint, patch domain.UserPatch) (*domain.User, error) {
	cols := map[string]any{}
	if patch.Email != nil {
		cols["email"] = *patch.Email
	}
	if patch.PhoneNumber != nil {
		cols["phone_number"] = *patch.PhoneNumber
	}
	if patch.Password != nil {
		cols["password_hash"] = utils.HashPassword(*patch.Password)
	}
	if len(cols) > 0 {
		res := r.db.Model(&domain.User{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			if isDupKey(res.Error) {
				return nil, apperr.Conflict("email already exists")
			}
			return nil, internalErr("update user failed", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("user not found")
		}
	}
	return r.FindByID(id)
}

// Delete 级联策略见 DESIGN.md：一个事务内显式删除用户的全部下游行，
// 不依赖数据库层 ON DELETE；文件路径带出供提交后清理
func (r *UserRepo) Delete(id uint) ([]string, error) {
	var orphanFiles []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if notFound(err) {
				return apperr.NotFound("user not found")
			}
			return internalErr("find user failed", err)
		}

		// 中介身份：先清名下房源及其附属行
		var agent domain.Agent
		err := tx.First(&agent, "user_id = ?", id).Error
		switch {
		case err == nil:
			orphanFiles = append(orphanFiles, agent.LicenseImage)

			var propertyIDs []uint
			if err := tx.Model(&domain.Property{}).
				Where("agent_id = ?", agent.ID).
				Pluck("id", &propertyIDs).Error; err != nil {
				return internalErr("collect property ids failed", err)
			}
			if len(propertyIDs) > 0 {
				var imgPaths []string
				if err := tx.Model(&domain.PropertyImage{}).
					Where("property_id IN ?", propertyIDs).
					Pluck("image_path", &imgPaths).Error; err != nil {
					return internalErr("collect image paths failed", err)
				}
				orphanFiles = append(orphanFiles, imgPaths...)

				for _, m := range []any{&domain.PropertyImage{}, &domain.Favorite{}, &domain.ContactRequest{}} {
					if err := tx.Where("property_id IN ?", propertyIDs).Delete(m).Error; err != nil {
						return internalErr("delete property dependents failed", err)
					}
				}
				if err := tx.Where("id IN ?", propertyIDs).Delete(&domain.Property{}).Error; err != nil {
					return internalErr("delete properties failed", err)
				}
			}
			if err := tx.Where("agent_id = ?", agent.ID).Delete(&domain.ContactRequest{}).Error; err != nil {
				return internalErr("delete agent contacts failed", err)
			}
			if err := tx.Delete(&domain.Agent{}, agent.ID).Error; err != nil {
				return internalErr("delete agent failed", err)
			}
		case notFound(err):
			// 普通用户，无中介数据
		default:
			return internalErr("find agent failed", err)
		}

		// 用户帖子连同评论一起删
		var postIDs []uint
		if err := tx.Model(&domain.BoardPost{}).
			Where("user_id = ?", id).
			Pluck("id", &postIDs).Error; err != nil {
			return internalErr("collect post ids failed", err)
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&domain.BoardComment{}).Error; err != nil {
				return internalErr("delete post comments failed", err)
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&domain.BoardPost{}).Error; err != nil {
				return internalErr("delete posts failed", err)
			}
		}

		for _, m := range []any{&domain.BoardComment{}, &domain.Favorite{}, &domain.ContactRequest{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return internalErr("delete user dependents failed", err)
			}
		}

		if err := tx.Delete(&domain.User{}, id).Error; err != nil {
			return internalErr("delete user failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orphanFiles, nil
}

func (r *UserRepo) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&domain.User{}).Count(&n).Error; err != nil {
		return 0, internalErr("count users failed", err)
	}
	return n, nil
}
