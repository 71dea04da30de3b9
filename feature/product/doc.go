// Package product implements the product-url regeneration job: canonical and
// category-scoped rewrites for a set of products in one or all store views.
package product
