package model

// Tables exposed over HTTP
const (
	TableCategory     = "category"
	TableProducts     = "products"
	TableOffer        = "offer"
	TableOrderProduct = "order_product"
	TableConsent      = "consent"
)

// Columns with meaning to the handlers
const (
	ColumnID       = "id"
	ColumnEnable   = "enable"
	ColumnStock    = "stock"
	ColumnName     = "name"
	ColumnCode     = "code"
	ColumnImageURL = "imagen_url"
	ColumnDeviceID = "device_id"
	ColumnCategory = "category_id"
)

// ProductCodeSequence allocates product codes before insert
const ProductCodeSequence = "get_next_product_code"
