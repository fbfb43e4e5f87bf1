package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// CRUDService implements pocketbase.CRUD for any record shape T bound to a
// base path such as /api/collections/{name}/records.
type CRUDService[T any] struct {
	sender       pocketbase.Sender
	cctx         *pocketbase.ClientContext
	basePath     string
	requiresAuth bool
}

// NewCRUDService creates a CRUD service. requiresAuth marks every request as
// needing a credential, so calls fail locally when none is set.
func NewCRUDService[T any](sender pocketbase.Sender, cctx *pocketbase.ClientContext, basePath string, requiresAuth bool) *CRUDService[T] {
	return &CRUDService[T]{
		sender:       sender,
		cctx:         cctx,
		basePath:     basePath,
		requiresAuth: requiresAuth,
	}
}

// BasePath returns the resource path the service is bound to.
func (s *CRUDService[T]) BasePath() string {
	return s.basePath
}

func (s *CRUDService[T]) newRequest(method, path string) *pocketbase.Request {
	req := pocketbase.NewRequest(method, path)
	req.RequiresAuth = s.requiresAuth

	return req
}

// GetList implements pocketbase.CRUD.GetList.
func (s *CRUDService[T]) GetList(ctx context.Context, config *pocketbase.ListConfig) (*pocketbase.ListResult[T], error) {
	if config == nil {
		config = &pocketbase.ListConfig{}
	}

	err := config.Validate(s.cctx.MaxPerPage())
	if err != nil {
		return nil, err
	}

	req := s.newRequest(http.MethodGet, s.basePath)
	req.Query = config.Query()

	var list pocketbase.ListResult[T]

	err = sendAndDecode(ctx, s.sender, req, &list, "list response")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.basePath, err)
	}

	return &list, nil
}

// GetFullList implements pocketbase.CRUD.GetFullList. It requests pages of
// batch items until the last page is reached. The server may apply a smaller
// page size than batch.
func (s *CRUDService[T]) GetFullList(ctx context.Context, batch int, config *pocketbase.ListConfig) ([]T, error) {
	if batch <= 0 {
		batch = constants.DefaultBatchSize
	}

	pageConfig := pocketbase.ListConfig{}
	if config != nil {
		pageConfig = *config
	}

	pageConfig.PerPage = batch

	items := make([]T, 0, batch)

	for page := 1; ; page++ {
		pageConfig.Page = page

		list, err := s.GetList(ctx, &pageConfig)
		if err != nil {
			return nil, err
		}

		items = append(items, list.Items...)

		if list.TotalPages >= 0 {
			if page >= list.TotalPages {
				break
			}

			continue
		}

		// Without a total, a page shorter than the size the server applied is the last.
		perPage := list.PerPage
		if perPage <= 0 {
			perPage = batch
		}

		if len(list.Items) < perPage {
			break
		}
	}

	return items, nil
}

// GetFirstListItem implements pocketbase.CRUD.GetFirstListItem. An empty
// result is reported as a 404 APIError.
func (s *CRUDService[T]) GetFirstListItem(ctx context.Context, filter string, config *pocketbase.ListConfig) (*T, error) {
	itemConfig := pocketbase.ListConfig{}
	if config != nil {
		itemConfig = *config
	}

	itemConfig.Filter = filter
	itemConfig.Page = 1
	itemConfig.PerPage = 1
	itemConfig.SkipTotal = true

	list, err := s.GetList(ctx, &itemConfig)
	if err != nil {
		return nil, err
	}

	if len(list.Items) == 0 {
		return nil, &pocketbase.APIError{
			Status:  http.StatusNotFound,
			Code:    http.StatusNotFound,
			Message: "The requested resource wasn't found.",
			Data:    map[string]pocketbase.FieldError{},
		}
	}

	return &list.Items[0], nil
}

// GetOne implements pocketbase.CRUD.GetOne.
func (s *CRUDService[T]) GetOne(ctx context.Context, id string, config *pocketbase.ViewConfig) (*T, error) {
	path, err := resourcePath(s.basePath, id)
	if err != nil {
		return nil, err
	}

	req := s.newRequest(http.MethodGet, path)
	req.Query = config.Query()

	var item T

	err = sendAndDecode(ctx, s.sender, req, &item, "item")
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", path, err)
	}

	return &item, nil
}

// Create implements pocketbase.CRUD.Create.
func (s *CRUDService[T]) Create(ctx context.Context, config *pocketbase.MutateConfig) (*T, error) {
	return s.mutate(ctx, http.MethodPost, s.basePath, config)
}

// Update implements pocketbase.CRUD.Update.
func (s *CRUDService[T]) Update(ctx context.Context, id string, config *pocketbase.MutateConfig) (*T, error) {
	path, err := resourcePath(s.basePath, id)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, http.MethodPatch, path, config)
}

func (s *CRUDService[T]) mutate(ctx context.Context, method, path string, config *pocketbase.MutateConfig) (*T, error) {
	if config == nil {
		config = &pocketbase.MutateConfig{}
	}

	body, contentType, err := encodeBody(config.Body)
	if err != nil {
		return nil, err
	}

	req := s.newRequest(method, path)
	req.Query = config.Query()
	req.Body = body
	req.ContentType = contentType

	var item T

	err = sendAndDecode(ctx, s.sender, req, &item, "item")
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	return &item, nil
}

// Delete implements pocketbase.CRUD.Delete.
func (s *CRUDService[T]) Delete(ctx context.Context, id string, config *pocketbase.DeleteConfig) error {
	path, err := resourcePath(s.basePath, id)
	if err != nil {
		return err
	}

	req := s.newRequest(http.MethodDelete, path)
	req.Query = config.Query()

	err = sendAndDecode(ctx, s.sender, req, nil, "")
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}

	return nil
}
