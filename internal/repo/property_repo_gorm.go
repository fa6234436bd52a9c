package repo

import (
	"gorm.io/gorm"

	"roomrent/internal/apperr"
	"roomrent/internal/domain"
)

type PropertyRepo struct {
	db     *gorm.DB
	images *ImageRepo
}

func NewPropertyRepo(db *gorm.DB) *PropertyRepo {
	return &PropertyRepo{db: db, images: NewImageRepo(db)}
}

// thumbnailExpr 列表行的缩略图子查询
func (r *PropertyRepo) thumbnailExpr() *gorm.DB {
	return r.db.Model(&domain.PropertyImage{}).
		Select("image_path").
		Where("property_images.property_id = properties.id AND property_images.is_thumbnail = ?", true).
		Limit(1)
}

// publicScope 公开可见性：上架中且中介已认证，所有公开查询共用
func (r *PropertyRepo) publicScope() *gorm.DB {
	return r.db.Model(&domain.Property{}).
		Joins("JOIN agents ON agents.id = properties.agent_id").
		Joins("JOIN users ON users.id = agents.user_id").
		Where("properties.is_active = ? AND agents.verification_status = ?", true, domain.AgentVerified)
}

// applyFilter 稀疏条件逐项 AND；数值合法性在 handler 已校验
func applyFilter(q *gorm.DB, f domain.PropertyFilter) *gorm.DB {
	if f.City != "" {
		q = q.Where("properties.city = ?", f.City)
	}
	if f.MinDeposit != nil {
		q = q.Where("properties.deposit >= ?", *f.MinDeposit)
	}
	if f.MaxDeposit != nil {
		q = q.Where("properties.deposit <= ?", *f.MaxDeposit)
	}
	if f.MinMonthlyRent != nil {
		q = q.Where("properties.monthly_rent >= ?", *f.MinMonthlyRent)
	}
	if f.MaxMonthlyRent != nil {
		q = q.Where("properties.monthly_rent <= ?", *f.MaxMonthlyRent)
	}
	if f.PropertyType != "" {
		q = q.Where("properties.property_type = ?", f.PropertyType)
	}
	if f.RoomCount != nil {
		q = q.Where("properties.room_count >= ?", *f.RoomCount)
	}
	return q
}

func (r *PropertyRepo) List(f domain.PropertyFilter, offset, limit int) ([]domain.PropertyListItem, int64, error) {
	// COUNT 与分页查询使用完全相同的谓词
	var total int64
	if err := applyFilter(r.publicScope(), f).Count(&total).Error; err != nil {
		return nil, 0, internalErr("count properties failed", err)
	}

	items := make([]domain.PropertyListItem, 0, limit)
	q := applyFilter(r.publicScope(), f).
		Select("properties.*, (?) AS thumbnail, users.username AS agent_name, users.phone_number AS agent_phone", r.thumbnailExpr()).
		Order("properties.created_at DESC").
		Offset(offset).Limit(limit)
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, internalErr("list properties failed", err)
	}
	return items, total, nil
}

func (r *PropertyRepo) Recent(limit int) ([]domain.PropertyListItem, error) {
	items := make([]domain.PropertyListItem, 0, limit)
	q := r.publicScope().
		Select("properties.*, (?) AS thumbnail, users.username AS agent_name, users.phone_number AS agent_phone", r.thumbnailExpr()).
		Order("properties.created_at DESC").
		Limit(limit)
	if err := q.Find(&items).Error; err != nil {
		return nil, internalErr("recent properties failed", err)
	}
	return items, nil
}

func (r *PropertyRepo) FindByID(id uint) (*domain.PropertyDetail, error) {
	var d domain.PropertyDetail
	err := r.db.Model(&domain.Property{}).
		Select("properties.*, users.username AS agent_name, users.phone_number AS agent_phone, users.email AS agent_email, agents.company_name, agents.office_address").
		Joins("JOIN agents ON agents.id = properties.agent_id").
		Joins("JOIN users ON users.id = agents.user_id").
		Where("properties.id = ? AND properties.is_active = ?", id, true).
		First(&d).Error
	if notFound(err) {
		return nil, apperr.NotFound("property not found")
	}
	if err != nil {
		return nil, internalErr("find property failed", err)
	}

	imgs, err := r.images.ListByProperty(id)
	if err != nil {
		return nil, err
	}
	d.Images = imgs
	return &d, nil
}

// Get 不带 is_active 过滤，归属校验与后台操作用
func (r *PropertyRepo) Get(id uint) (*domain.Property, error) {
	var p domain.Property
	err := r.db.First(&p, "id = ?", id).Error
	if notFound(err) {
		return nil, apperr.NotFound("property not found")
	}
	if err != nil {
		return nil, internalErr("find property failed", err)
	}
	return &p, nil
}

func (r *PropertyRepo) ListByAgent(agentID uint) ([]domain.PropertyListItem, error) {
	items := make([]domain.PropertyListItem, 0, 8)
	q := r.db.Model(&domain.Property{}).
		Joins("JOIN agents ON agents.id = properties.agent_id").
		Joins("JOIN users ON users.id = agents.user_id").
		Select("properties.*, (?) AS thumbnail, users.username AS agent_name, users.phone_number AS agent_phone", r.thumbnailExpr()).
		Where("properties.agent_id = ?", agentID).
		Order("properties.created_at DESC")
	if err := q.Find(&items).Error; err != nil {
		return nil, internalErr("list agent properties failed", err)
	}
	return items, nil
}

// Create 图片为空直接拒绝，不先建行再失败；房源与图片同一事务
func (r *PropertyRepo) Create(p *domain.Property, imagePaths []string, thumbnailIndex int) (*domain.PropertyDetail, error) {
	if len(imagePaths) == 0 {
		return nil, apperr.Validation("at least one image is required")
	}
	if thumbnailIndex < 0 || thumbnailIndex >= len(imagePaths) {
		thumbnailIndex = 0
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return internalErr("create property failed", err)
		}
		imgs := make([]domain.PropertyImage, 0, len(imagePaths))
		for i, path := range imagePaths {
			imgs = append(imgs, domain.PropertyImage{
				PropertyID:  p.ID,
				ImagePath:   path,
				IsThumbnail: i == thumbnailIndex,
			})
		}
		if err := tx.Create(&imgs).Error; err != nil {
			return internalErr("create property images failed", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(p.ID)
}

// patchColumns 白名单：列名只来自这里，用户输入只进值
func patchColumns(patch domain.PropertyPatch) map[string]any {
	cols := map[string]any{}
	set := func(name string, v any) { cols[name] = v }

	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if patch.City != nil {
		set("city", *patch.City)
	}
	if patch.District != nil {
		set("district", *patch.District)
	}
	if patch.Deposit != nil {
		set("deposit", *patch.Deposit)
	}
	if patch.MonthlyRent != nil {
		set("monthly_rent", *patch.MonthlyRent)
	}
	if patch.MaintenanceFee != nil {
		set("maintenance_fee", *patch.MaintenanceFee)
	}
	if patch.ConstructionDate != nil {
		set("construction_date", *patch.ConstructionDate)
	}
	if patch.AvailableFrom != nil {
		set("available_from", *patch.AvailableFrom)
	}
	if patch.RoomSize != nil {
		set("room_size", *patch.RoomSize)
	}
	if patch.RoomCount != nil {
		set("room_count", *patch.RoomCount)
	}
	if patch.BathroomCount != nil {
		set("bathroom_count", *patch.BathroomCount)
	}
	if patch.Floor != nil {
		set("floor", *patch.Floor)
	}
	if patch.TotalFloors != nil {
		set("total_floors", *patch.TotalFloors)
	}
	if patch.HeatingType != nil {
		set("heating_type", *patch.HeatingType)
	}
	if patch.PropertyType != nil {
		set("property_type", *patch.PropertyType)
	}
	if patch.MinStayMonths != nil {
		set("min_stay_months", *patch.MinStayMonths)
	}
	if patch.HasBed != nil {
		set("has_bed", *patch.HasBed)
	}
	if patch.HasWashingMachine != nil {
		set("has_washing_machine", *patch.HasWashingMachine)
	}
	if patch.HasRefrigerator != nil {
		set("has_refrigerator", *patch.HasRefrigerator)
	}
	if patch.HasMicrowave != nil {
		set("has_microwave", *patch.HasMicrowave)
	}
	if patch.HasDesk != nil {
		set("has_desk", *patch.HasDesk)
	}
	if patch.HasCloset != nil {
		set("has_closet", *patch.HasCloset)
	}
	if patch.HasAirConditioner != nil {
		set("has_air_conditioner", *patch.HasAirConditioner)
	}
	if patch.IsActive != nil {
		set("is_active", *patch.IsActive)
	}
	return cols
}

func (r *PropertyRepo) Update(id uint, patch domain.PropertyPatch) error {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	res := r.db.Model(&domain.Property{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return internalErr("update property failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("property not found")
	}
	return nil
}

// Delete 图片行与房源行同一事务；返回待清理路径，文件删除由调用方提交后处理
func (r *PropertyRepo) Delete(id uint) ([]string, error) {
	var paths []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.PropertyImage{}).
			Where("property_id = ?", id).
			Pluck("image_path", &paths).Error; err != nil {
			return internalErr("collect image paths failed", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&domain.PropertyImage{}).Error; err != nil {
			return internalErr("delete property images failed", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return internalErr("delete property favorites failed", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&domain.ContactRequest{}).Error; err != nil {
			return internalErr("delete property contacts failed", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Property{})
		if res.Error != nil {
			return internalErr("delete property failed", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("property not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *PropertyRepo) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&domain.Property{}).Count(&n).Error; err != nil {
		return 0, internalErr("count properties failed", err)
	}
	return n, nil
}
