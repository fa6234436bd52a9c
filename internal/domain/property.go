package domain

import "time"

type Property struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"property_id"`
	AgentID          uint       `gorm:"not null;index" json:"agent_id"`
	Address          string     `gorm:"size:255;not null" json:"address"`
	City             string     `gorm:"size:64;not null;index" json:"city"`
	District         *string    `gorm:"size:64" json:"district"`
	Deposit          int        `gorm:"not null" json:"deposit"`
	MonthlyRent      int        `gorm:"not null" json:"monthly_rent"`
	MaintenanceFee   int        `gorm:"not null;default:0" json:"maintenance_fee"`
	ConstructionDate *time.Time `json:"construction_date"`
	AvailableFrom    *time.Time `json:"available_from"`
	RoomSize         *float64   `json:"room_size"`
	RoomCount        int        `gorm:"not null;default:1" json:"room_count"`
	BathroomCount    int        `gorm:"not null;default:1" json:"bathroom_count"`
	Floor            *int       `json:"floor"`
	TotalFloors      *int       `json:"total_floors"`
	HeatingType      *string    `gorm:"size:32" json:"heating_type"`
	PropertyType     *string    `gorm:"size:32;index" json:"property_type"`
	MinStayMonths    int        `gorm:"not null;default:6" json:"min_stay_months"`

	// 设施开关
	HasBed            bool `gorm:"not null;default:false" json:"has_bed"`
	HasWashingMachine bool `gorm:"not null;default:false" json:"has_washing_machine"`
	HasRefrigerator   bool `gorm:"not null;default:false" json:"has_refrigerator"`
	HasMicrowave      bool `gorm:"not null;default:false" json:"has_microwave"`
	HasDesk           bool `gorm:"not null;default:false" json:"has_desk"`
	HasCloset         bool `gorm:"not null;default:false" json:"has_closet"`
	HasAirConditioner bool `gorm:"not null;default:false" json:"has_air_conditioner"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Agent  Agent           `gorm:"foreignKey:AgentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Images []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Property) TableName() string { return "properties" }

type PropertyImage struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"image_id"`
	PropertyID  uint   `gorm:"not null;index" json:"property_id"`
	ImagePath   string `gorm:"size:255;not null" json:"image_path"`
	IsThumbnail bool   `gorm:"not null;default:false" json:"is_thumbnail"`
}

func (PropertyImage) TableName() string { return "property_images" }

// PropertyListItem 列表行：房源 + 缩略图 + 中介联系方式
type PropertyListItem struct {
	Property
	Thumbnail  *string `json:"thumbnail"`
	AgentName  string  `json:"agent_name"`
	AgentPhone string  `json:"agent_phone"`
}

// PropertyDetail 详情：含全部图片（缩略图在前）与中介信息
type PropertyDetail struct {
	Property
	Images        []PropertyImage `json:"images"`
	AgentName     string          `json:"agent_name"`
	AgentPhone    string          `json:"agent_phone"`
	AgentEmail    string          `json:"agent_email"`
	CompanyName   *string         `json:"company_name"`
	OfficeAddress *string         `json:"office_address"`
}

// PropertyFilter 稀疏过滤条件，nil / 空串表示不限
type PropertyFilter struct {
	City           string
	MinDeposit     *int
	MaxDeposit     *int
	MinMonthlyRent *int
	MaxMonthlyRent *int
	PropertyType   string
	RoomCount      *int // 最少房间数
}

// PropertyPatch 动态更新：只有非 nil 字段会写入，列名由仓储层白名单给出
type PropertyPatch struct {
	Address           *string
	City              *string
	District          *string
	Deposit           *int
	MonthlyRent       *int
	MaintenanceFee    *int
	ConstructionDate  *time.Time
	AvailableFrom     *time.Time
	RoomSize          *float64
	RoomCount         *int
	BathroomCount     *int
	Floor             *int
	TotalFloors       *int
	HeatingType       *string
	PropertyType      *string
	MinStayMonths     *int
	HasBed            *bool
	HasWashingMachine *bool
	HasRefrigerator   *bool
	HasMicrowave      *bool
	HasDesk           *bool
	HasCloset         *bool
	HasAirConditioner *bool
	IsActive          *bool
}

type PropertyRepository interface {
	// List 公开列表：恒定限定 is_active 且中介已认证，created_at 倒序
	List(f PropertyFilter, offset, limit int) ([]PropertyListItem, int64, error)
	Recent(limit int) ([]PropertyListItem, error)
	FindByID(id uint) (*PropertyDetail, error)
	// Get 不带可见性过滤的裸查询，归属判断用
	Get(id uint) (*Property, error)
	ListByAgent(agentID uint) ([]PropertyListItem, error)
	// Create 房源与图片同一事务落库；imagePaths 为空直接报验证错误，不建行
	Create(p *Property, imagePaths []string, thumbnailIndex int) (*PropertyDetail, error)
	Update(id uint, patch PropertyPatch) error
	// Delete 同一事务删图片行与房源行，返回待清理的图片路径
	Delete(id uint) (imagePaths []string, err error)
	Count() (int64, error)
}

type ImageRepository interface {
	// AddImages 批量插入，thumbnailIndex 越界时按 0 处理；房源已有缩略图时不再新设
	AddImages(propertyID uint, imagePaths []string, thumbnailIndex int) ([]PropertyImage, error)
	ListByProperty(propertyID uint) ([]PropertyImage, error)
	// SetThumbnail 先全部清零再置位，同一事务
	SetThumbnail(propertyID, imageID uint) ([]PropertyImage, error)
	// DeleteImage 删除后若失去缩略图则提升存活图片中 id 最小者
	DeleteImage(propertyID, imageID uint) (*PropertyImage, error)
	DeleteAllForProperty(propertyID uint) ([]string, error)
}
