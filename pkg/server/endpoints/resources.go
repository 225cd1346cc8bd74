package endpoints

import (
	"net/http"

	"github.com/casq89/mibauu-backend/pkg/model"
	"github.com/casq89/mibauu-backend/pkg/server"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

// imageAsset is the asset layout shared by products, categories and offers
var imageAsset = &Asset{Column: model.ColumnImageURL, FormField: "image"}

var byID = &store.Order{Column: model.ColumnID}

// crud is the method table of the back-office mounts
var crud = map[string]action{
	http.MethodGet:    (*resourceHandler).list,
	http.MethodPost:   (*resourceHandler).create,
	http.MethodPut:    (*resourceHandler).update,
	http.MethodDelete: (*resourceHandler).remove,
}

var readOnly = map[string]action{
	http.MethodGet: (*resourceHandler).list,
}

var categoryEmbed = store.Embed{
	Table:      model.TableCategory,
	ForeignKey: model.ColumnCategory,
	Columns:    []string{model.ColumnName},
}

// Resources returns the definition of every table mount
func Resources() []*Resource {
	return []*Resource{
		{
			Name:  "categories",
			Table: model.TableCategory,
			Label: "Category",
			Noun:  "category",
			Key:   model.ColumnID,
			Asset: imageAsset,
			Fields: FieldRules{
				"name":        {Kind: FieldString},
				"description": {Kind: FieldString},
				"enable":      {Kind: FieldBool, Always: true},
			},
			Methods: crud,
		},
		{
			Name:   "products",
			Table:  model.TableProducts,
			Label:  "Product",
			Noun:   "product",
			Key:    model.ColumnID,
			Embeds: []store.Embed{categoryEmbed},
			Asset:  imageAsset,
			Sequence: &Sequence{
				Name:   model.ProductCodeSequence,
				Column: model.ColumnCode,
			},
			Fields: FieldRules{
				"name":               {Kind: FieldString, Always: true},
				"description":        {Kind: FieldString, Always: true},
				"price":              {Kind: FieldFloat, Always: true},
				model.ColumnStock:    {Kind: FieldInt, Always: true},
				model.ColumnCategory: {Kind: FieldInt, Always: true},
				"promotion":          {Kind: FieldBool, Always: true},
				"disccount":          {Kind: FieldFloat, Always: true},
				model.ColumnEnable:   {Kind: FieldBool, Always: true},
			},
			Methods: crud,
		},
		{
			Name:  "offers",
			Table: model.TableOffer,
			Label: "Offer",
			Noun:  "offer",
			Key:   model.ColumnID,
			Asset: imageAsset,
			Fields: FieldRules{
				"name":             {Kind: FieldString},
				"description":      {Kind: FieldString},
				model.ColumnEnable: {Kind: FieldBool, Always: true},
			},
			Methods: crud,
		},
		{
			Name:    "order-detail",
			Table:   model.TableOrderProduct,
			Label:   "Order",
			Noun:    "order",
			Key:     model.ColumnID,
			Order:   byID,
			Methods: crud,
		},
		{
			Name:    "consents",
			Table:   model.TableConsent,
			Label:   "Consent",
			Noun:    "consent",
			Key:     model.ColumnID,
			Methods: readOnly,
		},
		{
			Name:    "mobile-categories",
			Table:   model.TableCategory,
			Label:   "Category",
			Noun:    "category",
			Key:     model.ColumnID,
			Filters: []store.Filter{store.Eq(model.ColumnEnable, true)},
			Order:   byID,
			Methods: readOnly,
		},
		{
			Name:    "mobile-offer",
			Table:   model.TableOffer,
			Label:   "Offer",
			Noun:    "offer",
			Key:     model.ColumnID,
			Filters: []store.Filter{store.Eq(model.ColumnEnable, true)},
			Order:   byID,
			Methods: readOnly,
		},
		{
			Name:  "mobile-products",
			Table: model.TableProducts,
			Label: "Product",
			Noun:  "product",
			Key:   model.ColumnID,
			Filters: []store.Filter{
				store.Eq(model.ColumnEnable, true),
				store.Gt(model.ColumnStock, 0),
			},
			Order:  &store.Order{Column: model.ColumnName},
			Embeds: []store.Embed{categoryEmbed},
			Methods: map[string]action{
				http.MethodGet: (*resourceHandler).list,
				http.MethodPut: (*resourceHandler).decrementStock,
			},
		},
		{
			Name:  "mobile-consents",
			Table: model.TableConsent,
			Label: "Consent",
			Noun:  "consent",
			Key:   model.ColumnDeviceID,
			Methods: map[string]action{
				http.MethodGet:  (*resourceHandler).getByKey,
				http.MethodPost: (*resourceHandler).upsert,
			},
		},
	}
}

// RegisterResourcesEndpoints mounts every resource on /{name} and /{name}/{id}
func RegisterResourcesEndpoints(s *server.Server) {
	for _, res := range Resources() {
		h := &resourceHandler{
			res:     res,
			records: s.Records,
			objects: s.Objects,
			bucket:  s.Bucket,
		}
		s.Router.Handle("/"+res.Name, h)
		s.Router.PathPrefix("/" + res.Name + "/").Handler(h)
	}
}
