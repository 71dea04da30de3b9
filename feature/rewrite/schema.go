package rewrite

import (
	"fmt"
	"strings"

	"rewrite-manager/core/database"

	"gorm.io/gorm"
)

// requiredColumns are the url_rewrite columns the repository reads or writes.
var requiredColumns = []string{
	"url_rewrite_id",
	"entity_type",
	"entity_id",
	"request_path",
	"target_path",
	"redirect_type",
	"store_id",
	"is_autogenerated",
	"metadata",
}

// VerifySchema fails when url_rewrite lacks a column the repository relies on.
// Regeneration runs call it before touching any data.
func VerifySchema(db *gorm.DB) error {
	missing, err := database.MissingColumns(db, URLRewrite{}.TableName(), requiredColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table url_rewrite is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
