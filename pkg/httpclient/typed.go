package httpclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oksasatya/go-clean-starter/pkg/result"
)

func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) result.Result[T] {
	return send[T](ctx, c, http.MethodGet, path, nil, opts)
}

func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) result.Result[T] {
	return send[T](ctx, c, http.MethodPost, path, body, opts)
}

func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) result.Result[T] {
	return send[T](ctx, c, http.MethodPut, path, body, opts)
}

func Patch[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) result.Result[T] {
	return send[T](ctx, c, http.MethodPatch, path, body, opts)
}

func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) result.Result[T] {
	return send[T](ctx, c, http.MethodDelete, path, nil, opts)
}

func send[T any](ctx context.Context, c *Client, method, path string, body any, opts []RequestOption) result.Result[T] {
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	return Decode[T](c.Do(ctx, req))
}

// Decode unmarshals the data member of a successful response into T. An
// empty or null payload yields T's zero value.
func Decode[T any](r result.Result[*Response]) result.Result[T] {
	return result.FlatMap(r, func(resp *Response) result.Result[T] {
		var out T
		if len(resp.Data) == 0 || string(resp.Data) == "null" {
			return result.Ok(out)
		}
		if err := json.Unmarshal(resp.Data, &out); err != nil {
			return result.Fail[T](parseError(resp.Status, err))
		}
		return result.Ok(out)
	})
}
