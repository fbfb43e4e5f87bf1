package pocketbase

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// SortField orders a list by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Asc sorts by field ascending.
func Asc(field string) SortField {
	return SortField{Field: field}
}

// Desc sorts by field descending.
func Desc(field string) SortField {
	return SortField{Field: field, Desc: true}
}

// String renders the field the way the sort parameter expects it.
func (s SortField) String() string {
	if s.Desc {
		return "-" + s.Field
	}

	return s.Field
}

// ListConfig configures a list request. Zero values select the defaults:
// page 1, 30 items per page, no sort, filter or expand.
type ListConfig struct {
	Page    int
	PerPage int
	Sort    []SortField
	// Filter is passed verbatim; the server validates its syntax.
	Filter    string
	Expand    []string
	Fields    string
	SkipTotal bool
	// QueryParams are merged last and override generated parameters.
	QueryParams Query
}

// NewListConfig returns a config for the given page and page size.
func NewListConfig(page, perPage int) *ListConfig {
	return &ListConfig{Page: page, PerPage: perPage}
}

// WithSort appends sort fields.
func (c *ListConfig) WithSort(fields ...SortField) *ListConfig {
	c.Sort = append(c.Sort, fields...)

	return c
}

// WithFilter sets the filter expression.
func (c *ListConfig) WithFilter(filter string) *ListConfig {
	c.Filter = filter

	return c
}

// WithExpand appends relations to expand.
func (c *ListConfig) WithExpand(relations ...string) *ListConfig {
	c.Expand = append(c.Expand, relations...)

	return c
}

// Validate checks page bounds. maxPerPage of zero disables the ceiling.
func (c *ListConfig) Validate(maxPerPage int) error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Page, validation.Min(0).Error(constants.ErrNegativePage.Error())),
		validation.Field(&c.PerPage,
			validation.Min(0).Error(constants.ErrPerPageOutOfRange.Error()),
			validation.When(maxPerPage > 0,
				validation.Max(maxPerPage).Error(fmt.Sprintf("%s: must be no greater than %d",
					constants.ErrPerPageOutOfRange.Error(), maxPerPage))),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Query renders the parameters in a stable order: page, perPage, sort,
// filter, expand, fields, skipTotal, then QueryParams.
func (c *ListConfig) Query() Query {
	page := c.Page
	if page == 0 {
		page = constants.DefaultPage
	}

	perPage := c.PerPage
	if perPage == 0 {
		perPage = constants.DefaultPerPage
	}

	query := NewQuery(
		constants.QueryPage, strconv.Itoa(page),
		constants.QueryPerPage, strconv.Itoa(perPage),
	)

	if len(c.Sort) > 0 {
		fields := make([]string, 0, len(c.Sort))
		for _, field := range c.Sort {
			if field.Field != "" {
				fields = append(fields, field.String())
			}
		}

		if len(fields) > 0 {
			query.Add(constants.QuerySort, strings.Join(fields, ","))
		}
	}

	if c.Filter != "" {
		query.Add(constants.QueryFilter, c.Filter)
	}

	appendCommon(&query, c.Expand, c.Fields)

	if c.SkipTotal {
		query.Add(constants.QuerySkipTotal, "1")
	}

	query.Merge(c.QueryParams)

	return query
}

// ViewConfig configures a single record fetch.
type ViewConfig struct {
	Expand      []string
	Fields      string
	QueryParams Query
}

// Query renders expand, fields and QueryParams.
func (c *ViewConfig) Query() Query {
	if c == nil {
		return nil
	}

	var query Query

	appendCommon(&query, c.Expand, c.Fields)
	query.Merge(c.QueryParams)

	return query
}

// MutateConfig configures a create or update. Body is a map or struct; any
// File value in it switches the request to multipart encoding.
type MutateConfig struct {
	Body        interface{}
	Expand      []string
	Fields      string
	QueryParams Query
}

// Query renders expand, fields and QueryParams.
func (c *MutateConfig) Query() Query {
	if c == nil {
		return nil
	}

	var query Query

	appendCommon(&query, c.Expand, c.Fields)
	query.Merge(c.QueryParams)

	return query
}

// DeleteConfig configures a delete.
type DeleteConfig struct {
	QueryParams Query
}

// Query returns the extra parameters.
func (c *DeleteConfig) Query() Query {
	if c == nil {
		return nil
	}

	return c.QueryParams.Clone()
}

// AuthConfig configures an auth call.
type AuthConfig struct {
	// Body adds fields to the JSON body.
	Body        map[string]interface{}
	Expand      []string
	Fields      string
	QueryParams Query
	// WithoutSaving returns the auth response without updating the client context.
	WithoutSaving bool
}

// Query renders expand, fields and QueryParams.
func (c *AuthConfig) Query() Query {
	if c == nil {
		return nil
	}

	var query Query

	appendCommon(&query, c.Expand, c.Fields)
	query.Merge(c.QueryParams)

	return query
}

func appendCommon(query *Query, expand []string, fields string) {
	relations := make([]string, 0, len(expand))
	for _, relation := range expand {
		if relation = strings.TrimSpace(relation); relation != "" {
			relations = append(relations, relation)
		}
	}

	if len(relations) > 0 {
		query.Add(constants.QueryExpand, strings.Join(relations, ","))
	}

	if fields != "" {
		query.Add(constants.QueryFields, fields)
	}
}
