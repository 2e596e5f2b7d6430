// Package apifeatures turns raw query-string parameters into a composed MongoDB
// query: filter, sort, projection and pagination. Nothing is executed here;
// repositories hand the resulting Query to the driver.
package apifeatures

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100

	// VersionField is the document revision counter; it never leaves the store.
	VersionField = "__v"
)

var reserved = map[string]bool{"page": true, "sort": true, "limit": true, "fields": true}

var operators = map[string]string{"gte": "$gte", "gt": "$gt", "lte": "$lte", "lt": "$lt"}

// Kind is the stored type of a queryable field. Raw values are coerced to it.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Date
	ObjectID
)

// Field describes one queryable document field. Hidden fields can be neither
// filtered, sorted nor projected.
type Field struct {
	Kind   Kind
	Hidden bool
}

// Schema is the allow-list of fields a resource exposes to query parameters,
// keyed by stored field name.
type Schema map[string]Field

// Query is the composed, not yet executed, query.
type Query struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Skip       int64
	Limit      int64
}

// FindOptions converts the query into driver options.
func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find().SetProjection(q.Projection)
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	if q.Limit > 0 {
		opts.SetSkip(q.Skip).SetLimit(q.Limit)
	}
	return opts
}

// Features holds the query under construction. Stages are meant to be applied
// in the order Filter, Sort, LimitFields, Paginate; each one only touches its
// own part of the held query.
type Features struct {
	params url.Values
	schema Schema
	query  Query
	errs   map[string]string
}

// New starts a query from a base filter (for example the tour of a nested
// review route). Base keys always win over parameters with the same name.
func New(base bson.M, params url.Values, schema Schema) *Features {
	f := &Features{
		params: params,
		schema: schema,
		query: Query{
			Filter:     bson.M{},
			Projection: defaultProjection(schema),
		},
		errs: map[string]string{},
	}
	for k, v := range base {
		f.query.Filter[k] = v
	}
	return f
}

// Apply runs all four stages in their required order.
func Apply(base bson.M, params url.Values, schema Schema) (Query, error) {
	return New(base, params, schema).Filter().Sort().LimitFields().Paginate().Query()
}

// Filter turns every non-reserved parameter into an equality or range
// constraint. `price[gte]=500` becomes {price: {$gte: 500}}.
func (f *Features) Filter() *Features {
	base := make(map[string]bool, len(f.query.Filter))
	for k := range f.query.Filter {
		base[k] = true
	}
	for key, values := range f.params {
		if reserved[key] {
			continue
		}
		name, op, err := splitKey(key)
		if err != nil {
			f.errs[key] = err.Error()
			continue
		}
		if base[name] {
			continue
		}
		field, ok := f.lookup(name)
		if !ok {
			f.errs[key] = "is not a filterable field"
			continue
		}
		if op == "" {
			f.equality(key, name, field, values)
			continue
		}
		f.rangeConstraint(key, name, op, field, values)
	}
	return f
}

func (f *Features) equality(key, name string, field Field, values []string) {
	if _, exists := f.query.Filter[name]; exists {
		f.errs[key] = "conflicts with another constraint on " + name
		return
	}
	if len(values) == 1 {
		v, err := coerce(field.Kind, values[0])
		if err != nil {
			f.errs[key] = err.Error()
			return
		}
		f.query.Filter[name] = v
		return
	}
	in := make(bson.A, 0, len(values))
	for _, raw := range values {
		v, err := coerce(field.Kind, raw)
		if err != nil {
			f.errs[key] = err.Error()
			return
		}
		in = append(in, v)
	}
	f.query.Filter[name] = bson.M{"$in": in}
}

func (f *Features) rangeConstraint(key, name, op string, field Field, values []string) {
	marker, ok := operators[op]
	if !ok {
		f.errs[key] = fmt.Sprintf("unsupported operator %q", op)
		return
	}
	if field.Kind != Number && field.Kind != Date {
		f.errs[key] = "range operators need a number or date field"
		return
	}
	if len(values) != 1 {
		f.errs[key] = "must be given once"
		return
	}
	v, err := coerce(field.Kind, values[0])
	if err != nil {
		f.errs[key] = err.Error()
		return
	}
	cond := bson.M{}
	if existing, exists := f.query.Filter[name]; exists {
		m, ok := existing.(bson.M)
		if !ok || m["$in"] != nil {
			f.errs[key] = "conflicts with another constraint on " + name
			return
		}
		cond = m
	}
	cond[marker] = v
	f.query.Filter[name] = cond
}

// Sort applies `sort=-price,ratingsAverage` as a multi-key sort. Without a sort
// parameter documents come newest first. _id closes every sort so that paging
// is deterministic.
func (f *Features) Sort() *Features {
	raw := strings.TrimSpace(f.params.Get("sort"))
	if raw == "" {
		f.query.Sort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
		return f
	}
	out := bson.D{}
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		}
		if _, ok := f.lookup(part); !ok {
			f.errs["sort"] = fmt.Sprintf("cannot sort by %q", part)
			continue
		}
		if seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, bson.E{Key: part, Value: dir})
	}
	if !seen["_id"] {
		out = append(out, bson.E{Key: "_id", Value: 1})
	}
	f.query.Sort = out
	return f
}

// LimitFields projects `fields=name,price`. A list of `-field` entries
// excludes those fields instead. The version field never comes back.
func (f *Features) LimitFields() *Features {
	raw := strings.TrimSpace(f.params.Get("fields"))
	if raw == "" {
		return f
	}
	include := bson.M{}
	exclude := defaultProjection(f.schema)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		negate := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if name == VersionField {
			continue
		}
		if _, ok := f.lookup(name); !ok {
			f.errs["fields"] = fmt.Sprintf("cannot select %q", name)
			continue
		}
		if negate {
			exclude[name] = 0
		} else {
			include[name] = 1
		}
	}
	switch {
	case len(include) > 0 && len(exclude) > len(defaultProjection(f.schema)):
		f.errs["fields"] = "cannot mix included and excluded fields"
	case len(include) > 0:
		f.query.Projection = include
	default:
		f.query.Projection = exclude
	}
	return f
}

// Paginate computes skip and limit from `page` and `limit`. Both must be
// positive integers; there is no upper bound on limit.
func (f *Features) Paginate() *Features {
	page, ok := f.positive("page", DefaultPage)
	limit, ok2 := f.positive("limit", DefaultLimit)
	if !ok || !ok2 {
		return f
	}
	if page-1 > math.MaxInt64/limit {
		f.errs["page"] = "is too large"
		return f
	}
	f.query.Skip = (page - 1) * limit
	f.query.Limit = limit
	return f
}

func (f *Features) positive(key string, def int64) (int64, bool) {
	raw := strings.TrimSpace(f.params.Get(key))
	if raw == "" {
		return def, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.errs[key] = "must be an integer"
		return 0, false
	}
	if n < 1 {
		f.errs[key] = "must be at least 1"
		return 0, false
	}
	return n, true
}

// Query returns the composed query, or a ValidationFailed error listing every
// rejected parameter.
func (f *Features) Query() (Query, error) {
	if len(f.errs) > 0 {
		keys := make([]string, 0, len(f.errs))
		for k := range f.errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+" "+f.errs[k])
		}
		return Query{}, apperror.Validation("Invalid query parameters. "+strings.Join(parts, ". "), f.errs)
	}
	return f.query, nil
}

func (f *Features) lookup(name string) (Field, bool) {
	if name == "_id" {
		return Field{Kind: ObjectID}, true
	}
	field, ok := f.schema[name]
	if !ok || field.Hidden {
		return Field{}, false
	}
	return field, true
}

func defaultProjection(schema Schema) bson.M {
	p := bson.M{VersionField: 0}
	for name, field := range schema {
		if field.Hidden {
			p[name] = 0
		}
	}
	return p
}

// splitKey parses `price[gte]` into ("price", "gte").
func splitKey(key string) (string, string, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, "", nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", fmt.Errorf("malformed parameter")
	}
	return key[:open], key[open+1 : len(key)-1], nil
}

func coerce(kind Kind, raw string) (any, error) {
	switch kind {
	case Number:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return n, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("must be true or false")
		}
		return b, nil
	case Date:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("must be a date")
	case ObjectID:
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("must be a valid id")
		}
		return id, nil
	default:
		return raw, nil
	}
}
