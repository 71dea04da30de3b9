package rewrite

import "rewrite-manager/core/reconcile"

// URLRewrite is a row of url_rewrite. Canonical rows have redirect_type 0;
// 301/302 rows are permanent redirects this tool never touches.
type URLRewrite struct {
	URLRewriteID    int64   `gorm:"primaryKey;column:url_rewrite_id"`
	EntityType      string  `gorm:"column:entity_type;type:varchar(32)"`
	EntityID        int64   `gorm:"column:entity_id"`
	RequestPath     string  `gorm:"column:request_path;type:varchar(255);uniqueIndex:URL_REWRITE_REQUEST_PATH_STORE_ID,priority:1"`
	TargetPath      string  `gorm:"column:target_path;type:varchar(255)"`
	RedirectType    int     `gorm:"column:redirect_type;default:0"`
	StoreID         int64   `gorm:"column:store_id;uniqueIndex:URL_REWRITE_REQUEST_PATH_STORE_ID,priority:2"`
	Description     *string `gorm:"column:description;type:varchar(255)"`
	IsAutogenerated bool    `gorm:"column:is_autogenerated;default:0"`
	Metadata        *string `gorm:"column:metadata;type:varchar(255)"`
}

func (URLRewrite) TableName() string {
	return "url_rewrite"
}

func fromRecord(r reconcile.RewriteRecord) URLRewrite {
	row := URLRewrite{
		EntityType:      string(r.EntityType),
		EntityID:        r.EntityID,
		RequestPath:     r.RequestPath,
		TargetPath:      r.TargetPath,
		RedirectType:    r.RedirectType,
		StoreID:         r.StoreID,
		IsAutogenerated: r.IsAutogenerated,
	}
	if r.Metadata != "" {
		meta := r.Metadata
		row.Metadata = &meta
	}
	return row
}
