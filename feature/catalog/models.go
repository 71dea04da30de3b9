package catalog

// Store is a row of the store table. Store 0 is the admin store.
type Store struct {
	StoreID   int64  `gorm:"primaryKey;column:store_id;autoIncrement:false"`
	Code      string `gorm:"column:code;type:varchar(32);uniqueIndex:STORE_CODE"`
	WebsiteID int64  `gorm:"column:website_id"`
	GroupID   int64  `gorm:"column:group_id"`
	Name      string `gorm:"column:name;type:varchar(255)"`
	SortOrder int    `gorm:"column:sort_order;default:0"`
	IsActive  bool   `gorm:"column:is_active;default:0"`
}

func (Store) TableName() string {
	return "store"
}

// IsAdmin reports whether s is the admin (global) store.
func (s Store) IsAdmin() bool {
	return s.StoreID == AdminStoreID
}

type EntityType struct {
	EntityTypeID   int64  `gorm:"primaryKey;column:entity_type_id"`
	EntityTypeCode string `gorm:"column:entity_type_code;type:varchar(50)"`
}

func (EntityType) TableName() string {
	return "eav_entity_type"
}

type Attribute struct {
	AttributeID   int64  `gorm:"primaryKey;column:attribute_id"`
	EntityTypeID  int64  `gorm:"column:entity_type_id"`
	AttributeCode string `gorm:"column:attribute_code;type:varchar(255)"`
	BackendType   string `gorm:"column:backend_type;type:varchar(8);default:static"`
}

func (Attribute) TableName() string {
	return "eav_attribute"
}

type CategoryEntity struct {
	EntityID      int64  `gorm:"primaryKey;column:entity_id"`
	ParentID      int64  `gorm:"column:parent_id;default:0"`
	Path          string `gorm:"column:path;type:varchar(255)"`
	Position      int    `gorm:"column:position"`
	Level         int    `gorm:"column:level;default:0"`
	ChildrenCount int    `gorm:"column:children_count"`
}

func (CategoryEntity) TableName() string {
	return "catalog_category_entity"
}

type CategoryVarchar struct {
	ValueID     int64   `gorm:"primaryKey;column:value_id"`
	AttributeID int64   `gorm:"column:attribute_id;uniqueIndex:CATALOG_CATEGORY_ENTITY_VARCHAR_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:2"`
	StoreID     int64   `gorm:"column:store_id;uniqueIndex:CATALOG_CATEGORY_ENTITY_VARCHAR_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:3"`
	EntityID    int64   `gorm:"column:entity_id;uniqueIndex:CATALOG_CATEGORY_ENTITY_VARCHAR_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:1"`
	Value       *string `gorm:"column:value;type:varchar(255)"`
}

func (CategoryVarchar) TableName() string {
	return "catalog_category_entity_varchar"
}

type ProductEntity struct {
	EntityID int64  `gorm:"primaryKey;column:entity_id"`
	SKU      string `gorm:"column:sku;type:varchar(64)"`
	TypeID   string `gorm:"column:type_id;type:varchar(32);default:simple"`
}

func (ProductEntity) TableName() string {
	return "catalog_product_entity"
}

type ProductVarchar struct {
	ValueID     int64   `gorm:"primaryKey;column:value_id"`
	AttributeID int64   `gorm:"column:attribute_id;uniqueIndex:CATALOG_PRODUCT_ENTITY_VARCHAR_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:2"`
	StoreID     int64   `gorm:"column:store_id;uniqueIndex:CATALOG_PRODUCT_ENTITY_VARCHAR_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:3"`
	EntityID    int64   `gorm:"column:entity_id;uniqueIndex:CATALOG_PRODUCT_ENTITY_VARCHAR_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:1"`
	Value       *string `gorm:"column:value;type:varchar(255)"`
}

func (ProductVarchar) TableName() string {
	return "catalog_product_entity_varchar"
}

type ProductInt struct {
	ValueID     int64  `gorm:"primaryKey;column:value_id"`
	AttributeID int64  `gorm:"column:attribute_id;uniqueIndex:CATALOG_PRODUCT_ENTITY_INT_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:2"`
	StoreID     int64  `gorm:"column:store_id;uniqueIndex:CATALOG_PRODUCT_ENTITY_INT_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:3"`
	EntityID    int64  `gorm:"column:entity_id;uniqueIndex:CATALOG_PRODUCT_ENTITY_INT_ENTITY_ID_ATTRIBUTE_ID_STORE_ID,priority:1"`
	Value       *int64 `gorm:"column:value"`
}

func (ProductInt) TableName() string {
	return "catalog_product_entity_int"
}

type ProductWebsite struct {
	ProductID int64 `gorm:"primaryKey;column:product_id;autoIncrement:false"`
	WebsiteID int64 `gorm:"primaryKey;column:website_id;autoIncrement:false"`
}

func (ProductWebsite) TableName() string {
	return "catalog_product_website"
}

type CategoryProduct struct {
	EntityID   int64 `gorm:"primaryKey;column:entity_id"`
	CategoryID int64 `gorm:"column:category_id;uniqueIndex:CATALOG_CATEGORY_PRODUCT_CATEGORY_ID_PRODUCT_ID,priority:1"`
	ProductID  int64 `gorm:"column:product_id;uniqueIndex:CATALOG_CATEGORY_PRODUCT_CATEGORY_ID_PRODUCT_ID,priority:2"`
	Position   int   `gorm:"column:position;default:0"`
}

func (CategoryProduct) TableName() string {
	return "catalog_category_product"
}

// Models lists every catalog table read or written by the repository.
func Models() []any {
	return []any{
		Store{},
		EntityType{},
		Attribute{},
		CategoryEntity{},
		CategoryVarchar{},
		ProductEntity{},
		ProductVarchar{},
		ProductInt{},
		ProductWebsite{},
		CategoryProduct{},
	}
}
