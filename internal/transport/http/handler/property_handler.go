package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roomrent/internal/apperr"
	"roomrent/internal/core/cache"
	"roomrent/internal/core/config"
	"roomrent/internal/domain"
	"roomrent/internal/guard"
	"roomrent/internal/storage"
	mdw "roomrent/internal/transport/http/middleware"
	"roomrent/internal/transport/http/response"
)

// 首页「最新房源」缓存键，房源/图片任何写操作后统一失效
const recentCacheKey = "roomrent:properties:recent"

const recentCacheTTL = 60 * time.Second

type PropertyHandler struct {
	props  domain.PropertyRepository
	images domain.ImageRepository
	agents domain.AgentRepository
	store  *storage.Local
	cache  *cache.Cache
	upload config.Upload
	log    *zap.Logger
}

func NewPropertyHandler(
	props domain.PropertyRepository,
	images domain.ImageRepository,
	agents domain.AgentRepository,
	store *storage.Local,
	ch *cache.Cache,
	upload config.Upload,
	log *zap.Logger,
) *PropertyHandler {
	return &PropertyHandler{
		props: props, images: images, agents: agents,
		store: store, cache: ch, upload: upload, log: log,
	}
}

func (h *PropertyHandler) invalidateRecent(c *gin.Context) {
	invalidateRecentCache(c, h.cache, h.log)
}

// invalidateRecentCache 任何改动房源数据的入口（含删用户级联）都要调这里
func invalidateRecentCache(c *gin.Context, ch *cache.Cache, log *zap.Logger) {
	if ch == nil {
		return
	}
	if err := ch.Invalidate(c.Request.Context(), recentCacheKey); err != nil {
		log.Warn("cache invalidate failed", zap.Error(err))
	}
}

func (h *PropertyHandler) maxImageBytes() int64 {
	return int64(h.upload.MaxImageMB) << 20
}

// List 公开列表：稀疏过滤 + 分页，count 与行查询同一套谓词
func (h *PropertyHandler) List(c *gin.Context) {
	page, limit, offset, err := pageParams(c)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	var f domain.PropertyFilter
	f.City = c.Query("city")
	f.PropertyType = c.Query("property_type")
	if f.MinDeposit, err = queryInt(c, "min_deposit"); err != nil {
		response.Err(c, h.log, err)
		return
	}
	if f.MaxDeposit, err = queryInt(c, "max_deposit"); err != nil {
		response.Err(c, h.log, err)
		return
	}
	if f.MinMonthlyRent, err = queryInt(c, "min_monthly_rent"); err != nil {
		response.Err(c, h.log, err)
		return
	}
	if f.MaxMonthlyRent, err = queryInt(c, "max_monthly_rent"); err != nil {
		response.Err(c, h.log, err)
		return
	}
	if f.RoomCount, err = queryInt(c, "room_count"); err != nil {
		response.Err(c, h.log, err)
		return
	}

	items, total, err := h.props.List(f, offset, limit)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{
		"properties": items,
		"pagination": response.NewPagination(total, page, limit),
	})
}

// Recent 首页最新房源，短 TTL 缓存 + singleflight 合并回源
func (h *PropertyHandler) Recent(c *gin.Context) {
	limit := 3
	v, err := queryInt(c, "limit")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if v != nil && *v >= 1 && *v <= maxLimit {
		limit = *v
	}

	if h.cache == nil || limit != 3 {
		items, err := h.props.Recent(limit)
		if err != nil {
			response.Err(c, h.log, err)
			return
		}
		response.OK(c, gin.H{"properties": items})
		return
	}

	items, err := cache.GetOrLoadJSON(h.cache, c.Request.Context(), recentCacheKey, recentCacheTTL,
		func(ctx context.Context) (*[]domain.PropertyListItem, error) {
			rows, e := h.props.Recent(limit)
			if e != nil {
				return nil, e
			}
			return &rows, nil
		})
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if items == nil {
		response.OK(c, gin.H{"properties": []domain.PropertyListItem{}})
		return
	}
	response.OK(c, gin.H{"properties": *items})
}

func (h *PropertyHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	d, err := h.props.FindByID(id)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"property": d})
}

func (h *PropertyHandler) ListByAgent(c *gin.Context) {
	agentID, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	items, err := h.props.ListByAgent(agentID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"properties": items})
}

// propertyForm 创建表单；指针字段区分「未填」与零值
type propertyForm struct {
	Address           string   `form:"address" binding:"required"`
	City              string   `form:"city" binding:"required"`
	District          *string  `form:"district"`
	Deposit           *int     `form:"deposit" binding:"required"`
	MonthlyRent       *int     `form:"monthly_rent" binding:"required"`
	MaintenanceFee    *int     `form:"maintenance_fee"`
	ConstructionDate  *string  `form:"construction_date"`
	AvailableFrom     *string  `form:"available_from"`
	RoomSize          *float64 `form:"room_size"`
	RoomCount         *int     `form:"room_count"`
	BathroomCount     *int     `form:"bathroom_count"`
	Floor             *int     `form:"floor"`
	TotalFloors       *int     `form:"total_floors"`
	HeatingType       *string  `form:"heating_type"`
	PropertyType      *string  `form:"property_type"`
	MinStayMonths     *int     `form:"min_stay_months"`
	HasBed            *bool    `form:"has_bed"`
	HasWashingMachine *bool    `form:"has_washing_machine"`
	HasRefrigerator   *bool    `form:"has_refrigerator"`
	HasMicrowave      *bool    `form:"has_microwave"`
	HasDesk           *bool    `form:"has_desk"`
	HasCloset         *bool    `form:"has_closet"`
	HasAirConditioner *bool    `form:"has_air_conditioner"`
	ThumbnailIndex    *int     `form:"thumbnailIndex"`
}

func (f *propertyForm) toProperty(agentID uint) (*domain.Property, error) {
	if *f.Deposit < 0 || *f.MonthlyRent < 0 {
		return nil, apperr.Validation("deposit and monthly_rent must be non-negative")
	}
	p := &domain.Property{
		AgentID:      agentID,
		Address:      f.Address,
		City:         f.City,
		District:     f.District,
		Deposit:      *f.Deposit,
		MonthlyRent:  *f.MonthlyRent,
		RoomSize:     f.RoomSize,
		Floor:        f.Floor,
		TotalFloors:  f.TotalFloors,
		HeatingType:  f.HeatingType,
		PropertyType: f.PropertyType,
		RoomCount:    1,
		BathroomCount: 1,
		MinStayMonths: 6,
		IsActive:      true,
	}
	if f.MaintenanceFee != nil {
		p.MaintenanceFee = *f.MaintenanceFee
	}
	if f.RoomCount != nil {
		p.RoomCount = *f.RoomCount
	}
	if f.BathroomCount != nil {
		p.BathroomCount = *f.BathroomCount
	}
	if f.MinStayMonths != nil {
		p.MinStayMonths = *f.MinStayMonths
	}
	var err error
	if p.ConstructionDate, err = parseDate(f.ConstructionDate); err != nil {
		return nil, err
	}
	if p.AvailableFrom, err = parseDate(f.AvailableFrom); err != nil {
		return nil, err
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&p.HasBed, f.HasBed)
	setBool(&p.HasWashingMachine, f.HasWashingMachine)
	setBool(&p.HasRefrigerator, f.HasRefrigerator)
	setBool(&p.HasMicrowave, f.HasMicrowave)
	setBool(&p.HasDesk, f.HasDesk)
	setBool(&p.HasCloset, f.HasCloset)
	setBool(&p.HasAirConditioner, f.HasAirConditioner)
	return p, nil
}

// requireVerifiedAgent 房源写操作入口：主体必须是已认证中介
func (h *PropertyHandler) requireVerifiedAgent(c *gin.Context) (*domain.Agent, guard.Principal, bool) {
	p, _ := mdw.CurrentPrincipal(c)
	if d := guard.RequireRole(p, domain.RoleAgent); !d.Allow {
		response.Err(c, h.log, denyErr(d))
		return nil, p, false
	}
	agent, err := h.agents.FindByUserID(p.UserID)
	if err != nil {
		response.Err(c, h.log, err)
		return nil, p, false
	}
	if agent == nil {
		response.Err(c, h.log, apperr.Forbidden("agent profile not found"))
		return nil, p, false
	}
	if agent.VerificationStatus != domain.AgentVerified {
		response.Err(c, h.log, apperr.Forbidden("agent is not verified"))
		return nil, p, false
	}
	return agent, p, true
}

// Create 先鉴权、再收文件、最后同一事务落库；落库失败回收已写文件
func (h *PropertyHandler) Create(c *gin.Context) {
	agent, _, ok := h.requireVerifiedAgent(c)
	if !ok {
		return
	}

	var in propertyForm
	if err := c.ShouldBind(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	p, err := in.toProperty(agent.ID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Err(c, h.log, apperr.Validation("multipart form required"))
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		response.Err(c, h.log, apperr.Validation("at least one image is required"))
		return
	}
	if len(files) > h.upload.MaxImageCount {
		response.Err(c, h.log, apperr.Validation("too many images, max "+strconv.Itoa(h.upload.MaxImageCount)))
		return
	}

	paths, err := h.store.SaveAll(c, files, storage.KindProperty, h.maxImageBytes())
	if err != nil {
		response.Err(c, h.log, err)
		return
	}

	thumbIdx := 0
	if in.ThumbnailIndex != nil {
		thumbIdx = *in.ThumbnailIndex
	}
	detail, err := h.props.Create(p, paths, thumbIdx)
	if err != nil {
		h.store.Remove(paths...)
		response.Err(c, h.log, err)
		return
	}

	h.invalidateRecent(c)
	response.Created(c, gin.H{"message": "property created successfully", "property": detail})
}

// ownProperty 归属校验：先裸查房源（不过滤 is_active），再比对中介归属
func (h *PropertyHandler) ownProperty(c *gin.Context, id uint) (*domain.Property, bool) {
	p, _ := mdw.CurrentPrincipal(c)
	prop, err := h.props.Get(id)
	if err != nil {
		response.Err(c, h.log, err)
		return nil, false
	}
	own := guard.Ownership{OwnerAgentID: prop.AgentID}
	if agent, err := h.agents.FindByUserID(p.UserID); err != nil {
		response.Err(c, h.log, err)
		return nil, false
	} else if agent != nil {
		own.ActorAgentID = agent.ID
	}
	if d := guard.Authorize(p, own); !d.Allow {
		response.Err(c, h.log, denyErr(d))
		return nil, false
	}
	return prop, true
}

// propertyPatchForm 更新表单：没有 required，缺省字段不动
type propertyPatchForm struct {
	Address           string   `form:"address"`
	City              string   `form:"city"`
	District          *string  `form:"district"`
	Deposit           *int     `form:"deposit"`
	MonthlyRent       *int     `form:"monthly_rent"`
	MaintenanceFee    *int     `form:"maintenance_fee"`
	ConstructionDate  *string  `form:"construction_date"`
	AvailableFrom     *string  `form:"available_from"`
	RoomSize          *float64 `form:"room_size"`
	RoomCount         *int     `form:"room_count"`
	BathroomCount     *int     `form:"bathroom_count"`
	Floor             *int     `form:"floor"`
	TotalFloors       *int     `form:"total_floors"`
	HeatingType       *string  `form:"heating_type"`
	PropertyType      *string  `form:"property_type"`
	MinStayMonths     *int     `form:"min_stay_months"`
	HasBed            *bool    `form:"has_bed"`
	HasWashingMachine *bool    `form:"has_washing_machine"`
	HasRefrigerator   *bool    `form:"has_refrigerator"`
	HasMicrowave      *bool    `form:"has_microwave"`
	HasDesk           *bool    `form:"has_desk"`
	HasCloset         *bool    `form:"has_closet"`
	HasAirConditioner *bool    `form:"has_air_conditioner"`
	IsActive          *bool    `form:"is_active"`
	ThumbnailIndex    *int     `form:"thumbnailIndex"`
}

func (f *propertyPatchForm) toPatch() (domain.PropertyPatch, error) {
	if (f.Deposit != nil && *f.Deposit < 0) || (f.MonthlyRent != nil && *f.MonthlyRent < 0) {
		return domain.PropertyPatch{}, apperr.Validation("deposit and monthly_rent must be non-negative")
	}
	patch := domain.PropertyPatch{
		District:          f.District,
		MaintenanceFee:    f.MaintenanceFee,
		RoomSize:          f.RoomSize,
		RoomCount:         f.RoomCount,
		BathroomCount:     f.BathroomCount,
		Floor:             f.Floor,
		TotalFloors:       f.TotalFloors,
		HeatingType:       f.HeatingType,
		PropertyType:      f.PropertyType,
		MinStayMonths:     f.MinStayMonths,
		HasBed:            f.HasBed,
		HasWashingMachine: f.HasWashingMachine,
		HasRefrigerator:   f.HasRefrigerator,
		HasMicrowave:      f.HasMicrowave,
		HasDesk:           f.HasDesk,
		HasCloset:         f.HasCloset,
		HasAirConditioner: f.HasAirConditioner,
		IsActive:          f.IsActive,
	}
	if f.Address != "" {
		patch.Address = &f.Address
	}
	if f.City != "" {
		patch.City = &f.City
	}
	patch.Deposit = f.Deposit
	patch.MonthlyRent = f.MonthlyRent
	var err error
	if patch.ConstructionDate, err = parseDate(f.ConstructionDate); err != nil {
		return patch, err
	}
	if patch.AvailableFrom, err = parseDate(f.AvailableFrom); err != nil {
		return patch, err
	}
	return patch, nil
}

// Update 非属主一律 403，任何字段不落库；可附带追加图片
func (h *PropertyHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if _, ok := h.ownProperty(c, id); !ok {
		return
	}

	var in propertyPatchForm
	if err := c.ShouldBind(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	patch, err := in.toPatch()
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if err := h.props.Update(id, patch); err != nil {
		response.Err(c, h.log, err)
		return
	}

	// 追加图片是可选项，缺省表单不带 images 段
	if form, ferr := c.MultipartForm(); ferr == nil && len(form.File["images"]) > 0 {
		files := form.File["images"]
		if len(files) > h.upload.MaxImageCount {
			response.Err(c, h.log, apperr.Validation("too many images, max "+strconv.Itoa(h.upload.MaxImageCount)))
			return
		}
		paths, serr := h.store.SaveAll(c, files, storage.KindProperty, h.maxImageBytes())
		if serr != nil {
			response.Err(c, h.log, serr)
			return
		}
		thumbIdx := 0
		if in.ThumbnailIndex != nil {
			thumbIdx = *in.ThumbnailIndex
		}
		if _, aerr := h.images.AddImages(id, paths, thumbIdx); aerr != nil {
			h.store.Remove(paths...)
			response.Err(c, h.log, aerr)
			return
		}
	}

	detail, err := h.props.FindByID(id)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		response.Err(c, h.log, err)
		return
	}
	h.invalidateRecent(c)
	out := gin.H{"message": "property updated successfully"}
	if detail != nil {
		out["property"] = detail
	}
	response.OK(c, out)
}

type setThumbnailRequest struct {
	ImageID uint `json:"image_id" binding:"required"`
}

func (h *PropertyHandler) SetThumbnail(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if _, ok := h.ownProperty(c, id); !ok {
		return
	}

	var in setThumbnailRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.log, apperr.Validation(err.Error()))
		return
	}
	imgs, err := h.images.SetThumbnail(id, in.ImageID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	h.invalidateRecent(c)
	response.OK(c, gin.H{"message": "thumbnail updated successfully", "images": imgs})
}

// DeleteImage 行删完事务提交后再清文件
func (h *PropertyHandler) DeleteImage(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	imageID, err := pathID(c, "imageId")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if _, ok := h.ownProperty(c, id); !ok {
		return
	}

	img, err := h.images.DeleteImage(id, imageID)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	h.store.Remove(img.ImagePath)
	h.invalidateRecent(c)
	response.Msg(c, 200, "image deleted successfully", nil)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	if _, ok := h.ownProperty(c, id); !ok {
		return
	}

	paths, err := h.props.Delete(id)
	if err != nil {
		response.Err(c, h.log, err)
		return
	}
	h.store.Remove(paths...)
	h.invalidateRecent(c)
	response.Msg(c, 200, "property deleted successfully", nil)
}
