// Package catalog reads the Magento catalog: stores, categories and products.
//
// Attribute values live in EAV tables keyed by (entity_id, attribute_id, store_id).
// Every query joins the store scope and the admin scope and prefers the store value,
// which is how the storefront resolves them.
//
// The repository only writes one thing: the url_path attribute of categories,
// via SaveCategoryURLPath.
package catalog
