package rest

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"penalty-console/internal/adapters/apiclient"
	"penalty-console/internal/domain"
)

// Resource maps one entity type onto the API's {resource}/index, /createorUpdate and
// /delete endpoints.
type Resource[T domain.Entity] struct {
	client *apiclient.Client
	name   string
}

func NewResource[T domain.Entity](client *apiclient.Client, name string) *Resource[T] {
	return &Resource[T]{client: client, name: name}
}

func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) GetAll(ctx context.Context) domain.Result[[]T] {
	env, err := r.client.Get(ctx, r.name+"/index", nil)
	if err != nil {
		return failure[[]T](err)
	}
	items, err := apiclient.Decode[[]T](env)
	if err != nil {
		return failure[[]T](err)
	}
	if items == nil {
		items = []T{}
	}
	return domain.Success(items, env.Message)
}

func (r *Resource[T]) CreateOrUpdate(ctx context.Context, item T) domain.Result[T] {
	body, err := requestBody(item)
	if err != nil {
		return failure[T](err)
	}
	env, err := r.client.Post(ctx, r.name+"/createorUpdate", body)
	if err != nil {
		return failure[T](err)
	}
	// The write is committed once the envelope reports success; a payload that is not
	// a record (row counts, ids) falls back to the submitted item.
	saved, err := apiclient.Decode[T](env)
	if err != nil || saved.GetID() == 0 {
		saved = item
	}
	return domain.Success(saved, env.Message)
}

func (r *Resource[T]) Delete(ctx context.Context, item T) domain.Result[T] {
	env, err := r.client.Post(ctx, r.name+"/delete", map[string]int{"id": item.GetID()})
	if err != nil {
		return failure[T](err)
	}
	return domain.Success(item, env.Message)
}

// Reporter reads the aggregate export a resource publishes under {resource}/report.
type Reporter[R any] struct {
	client *apiclient.Client
	name   string
}

func NewReporter[R any](client *apiclient.Client, name string) *Reporter[R] {
	return &Reporter[R]{client: client, name: name}
}

func (r *Reporter[R]) Report(ctx context.Context, params map[string]string) domain.Result[R] {
	env, err := r.client.Get(ctx, r.name+"/report", params)
	if err != nil {
		return failure[R](err)
	}
	out, err := apiclient.Decode[R](env)
	if err != nil {
		return failure[R](err)
	}
	return domain.Success(out, env.Message)
}

func failure[T any](err error) domain.Result[T] {
	var remote *domain.RemoteError
	switch {
	case errors.As(err, &remote):
		return domain.Failure[T](err, remote.Message)
	case errors.Is(err, domain.ErrUnauthorized):
		return domain.Failure[T](err, "session expired, sign in again")
	case errors.Is(err, domain.ErrTransport):
		return domain.Failure[T](err, "could not reach the server")
	default:
		return domain.Failure[T](err, err.Error())
	}
}

// requestBody picks multipart when the record carries files selected in this session.
func requestBody(item any) (any, error) {
	up, ok := item.(domain.Uploadable)
	if !ok {
		return item, nil
	}
	files := up.Attachments()
	if len(files) == 0 {
		return item, nil
	}
	fields, err := formFields(item)
	if err != nil {
		return nil, err
	}
	return &apiclient.Multipart{Fields: fields, Files: files}, nil
}

func formFields(item any) (map[string]string, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(generic))
	for k, v := range generic {
		switch val := v.(type) {
		case nil:
		case string:
			fields[k] = val
		case float64:
			fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			if val {
				fields[k] = "1"
			} else {
				fields[k] = "0"
			}
		default:
			nested, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			fields[k] = string(nested)
		}
	}
	return fields, nil
}
