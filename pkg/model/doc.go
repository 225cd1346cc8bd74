// Package model defines the data shapes shared by the mibauu stores and
// handlers.
//
// Resource rows are schemaless Records so that new columns flow through
// without code changes. Table and column names the handlers depend on are
// declared as constants.
//
// # Tables
//
//   - category: product categories, each with an optional image
//   - products: catalogue items with stock, price and an image
//   - offer: promotional offers with an image
//   - order_product: order lines
//   - consent: per-device consent, one row per device_id
//   - users: accounts for local password authentication
package model
