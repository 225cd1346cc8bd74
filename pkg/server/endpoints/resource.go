package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/casq89/mibauu-backend/pkg/model"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

// Asset describes the image attached to a resource
type Asset struct {
	// Column holds the public URL of the current image
	Column string
	// FormField is the multipart part carrying a new image
	FormField string
}

// Sequence assigns a column from a store sequence on create
type Sequence struct {
	Name   string
	Column string
}

// action is one operation of a resource, bound to an HTTP method
type action func(h *resourceHandler, w http.ResponseWriter, r *http.Request) error

// Resource is the definition one mount is built from
type Resource struct {
	// Name is the mount point, /{Name} and /{Name}/{id}
	Name  string
	Table string
	// Label and Noun appear in messages: "<Label> id: 3 does not exist",
	// "id is required to update <Noun>"
	Label string
	Noun  string

	// Key is the column the path identifier is matched against
	Key string

	// Filters always apply to reads
	Filters []store.Filter
	Order   *store.Order
	Embeds  []store.Embed

	Asset    *Asset
	Sequence *Sequence
	Fields   FieldRules

	Methods map[string]action
}

// resourceHandler runs the operations of one Resource
type resourceHandler struct {
	res     *Resource
	records store.RecordStore
	objects store.ObjectStore
	bucket  string
}

func (h *resourceHandler) fileField() string {
	if h.res.Asset == nil {
		return ""
	}
	return h.res.Asset.FormField
}

func (h *resourceHandler) readQuery(filters ...store.Filter) store.Query {
	var all []store.Filter
	all = append(all, filters...)
	all = append(all, h.res.Filters...)
	return store.Query{Filters: all, Order: h.res.Order, Embeds: h.res.Embeds}
}

// list returns every row, or the rows matching the path identifier
func (h *resourceHandler) list(w http.ResponseWriter, r *http.Request) error {
	q := h.readQuery()
	if id := IDFromPath(r); id != "" {
		q = h.readQuery(store.Eq(h.res.Key, id))
	}

	rows, err := h.records.List(r.Context(), h.res.Table, q)
	if err != nil {
		return err
	}
	respondWithData(w, http.StatusOK, rows)
	return nil
}

// getByKey is list with a required identifier
func (h *resourceHandler) getByKey(w http.ResponseWriter, r *http.Request) error {
	if IDFromPath(r) == "" {
		return badRequest("id is required to get %s info", h.res.Noun)
	}
	return h.list(w, r)
}

func (h *resourceHandler) create(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	in, err := readInput(r, h.res.Fields, h.fileField(), true)
	if err != nil {
		return err
	}
	record := in.fields

	var uploaded string
	if in.file != nil {
		uploaded, err = h.upload(r, in)
		if err != nil {
			return err
		}
		record[h.res.Asset.Column] = uploaded
	}

	if seq := h.res.Sequence; seq != nil {
		next, err := h.records.NextSequence(ctx, seq.Name)
		if err != nil {
			return rejected(err)
		}
		record[seq.Column] = next
	}

	rows, err := h.records.Insert(ctx, h.res.Table, record)
	if err != nil {
		if uploaded != "" {
			zerolog.Ctx(ctx).Warn().Str("table", h.res.Table).Str("asset", uploaded).Msg("insert failed, uploaded image left orphaned")
		}
		return rejected(err)
	}
	respondWithData(w, http.StatusCreated, rows)
	return nil
}

// existing looks up the row a mutation targets. A lookup failure is fatal.
func (h *resourceHandler) existing(r *http.Request, raw string, id int64) (model.Record, error) {
	rows, err := h.records.List(r.Context(), h.res.Table, store.Query{Filters: []store.Filter{store.Eq(h.res.Key, id)}})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound(h.res.Label, raw)
	}
	return rows[0], nil
}

func (h *resourceHandler) update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	raw := IDFromPath(r)
	id, ok := numericID(raw)
	if !ok {
		return badRequest("id is required to update %s", h.res.Noun)
	}

	current, err := h.existing(r, raw, id)
	if err != nil {
		return err
	}

	in, err := readInput(r, h.res.Fields, h.fileField(), false)
	if err != nil {
		return err
	}
	patch := in.fields
	delete(patch, h.res.Key)

	var uploaded string
	if asset := h.res.Asset; asset != nil {
		if in.file != nil {
			uploaded, err = h.upload(r, in)
			if err != nil {
				return err
			}
			patch[asset.Column] = uploaded
		} else {
			patch[asset.Column] = current[asset.Column]
		}
	}

	rows, err := h.records.Update(ctx, h.res.Table, []store.Filter{store.Eq(h.res.Key, id)}, patch)
	if err != nil {
		if uploaded != "" {
			zerolog.Ctx(ctx).Warn().Str("table", h.res.Table).Int64("id", id).Str("asset", uploaded).
				Msg("update failed, replacement image left orphaned")
		}
		return rejected(err)
	}

	if uploaded != "" {
		h.removeReplaced(r, id, current.String(h.res.Asset.Column))
	}

	respondWithData(w, http.StatusOK, rows)
	return nil
}

// removeReplaced deletes the image an update replaced. Failure is logged and
// does not change the response.
func (h *resourceHandler) removeReplaced(r *http.Request, id int64, previous string) {
	key := h.objects.KeyFromURL(h.bucket, previous)
	if key == "" {
		return
	}
	if err := h.objects.Remove(r.Context(), h.bucket, key); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("table", h.res.Table).Int64("id", id).Str("key", key).
			Msg("could not remove replaced image")
	}
}

func (h *resourceHandler) remove(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	raw := IDFromPath(r)
	id, ok := numericID(raw)
	if !ok {
		return badRequest("id is required to delete %s", h.res.Noun)
	}

	current, err := h.existing(r, raw, id)
	if err != nil {
		return err
	}

	if asset := h.res.Asset; asset != nil {
		if key := h.objects.KeyFromURL(h.bucket, current.String(asset.Column)); key != "" {
			if err := h.objects.Remove(ctx, h.bucket, key); err != nil {
				return badRequest("%s id: %s does not exist or image could not be deleted: %s", h.res.Label, raw, err.Error())
			}
		}
	}

	if err := h.records.Delete(ctx, h.res.Table, []store.Filter{store.Eq(h.res.Key, id)}); err != nil {
		return rejected(err)
	}
	respondWithData(w, http.StatusOK, map[string]interface{}{"success": true})
	return nil
}

// upsert inserts the body or, when a row with the same natural key exists,
// updates that row. Both outcomes answer 201.
func (h *resourceHandler) upsert(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	body, err := readJSONObject(r)
	if err != nil {
		return err
	}

	key, ok := body[h.res.Key]
	if !ok || key == nil || key == "" {
		return badRequest("%s is required", h.res.Key)
	}

	rows, err := h.records.List(ctx, h.res.Table, store.Query{Filters: []store.Filter{store.Eq(h.res.Key, key)}})
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		rows, err = h.records.Insert(ctx, h.res.Table, body)
	} else {
		rows, err = h.records.Update(ctx, h.res.Table, []store.Filter{store.Eq(h.res.Key, key)}, body)
	}
	if err != nil {
		return rejected(err)
	}
	respondWithData(w, http.StatusCreated, rows)
	return nil
}

// decrementStock subtracts {"stock": n} from the product's stock
func (h *resourceHandler) decrementStock(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	const message = "id and quantity are required to update product"

	raw := IDFromPath(r)
	id, ok := numericID(raw)
	body, err := readJSONObject(r)
	if err != nil {
		return err
	}
	quantity, isInt := body.Int(model.ColumnStock)
	if !ok || !isInt || quantity == 0 {
		return badRequest(message)
	}

	current, err := h.existing(r, raw, id)
	if err != nil {
		return err
	}
	stock, ok := current.Int(model.ColumnStock)
	if !ok {
		return fmt.Errorf("%s id: %s has no numeric stock", h.res.Label, raw)
	}

	rows, err := h.records.Update(ctx, h.res.Table, []store.Filter{store.Eq(h.res.Key, id)},
		model.Record{model.ColumnStock: stock - quantity})
	if err != nil {
		return rejected(err)
	}
	respondWithData(w, http.StatusOK, rows)
	return nil
}

// upload stores the request's file under a fresh key and returns its public URL
func (h *resourceHandler) upload(r *http.Request, in *input) (string, error) {
	f, err := in.file.Open()
	if err != nil {
		return "", badRequest("could not read %s: %s", h.res.Asset.FormField, err.Error())
	}
	defer func() {
		_ = f.Close()
	}()

	key := store.NewObjectKey(in.file.Filename)
	err = h.objects.Put(r.Context(), h.bucket, key, f, store.PutOptions{
		ContentType:  fileContentType(in.file),
		CacheControl: "max-age=3600",
		Upsert:       false,
	})
	if err != nil {
		var serr *store.StorageError
		if errors.As(err, &serr) {
			return "", badRequest("%s", serr.Message)
		}
		return "", badRequest("%s", err.Error())
	}
	return h.objects.PublicURL(h.bucket, key), nil
}
