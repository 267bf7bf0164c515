package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote Transformer.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Transform returns text run through filter, and whether it was cached.
func (c *Client) Transform(ctx context.Context, filter, text string) (string, bool, error) {
	in, err := structpb.NewStruct(map[string]any{"filter": filter, "text": text})
	if err != nil {
		return "", false, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/Transform", in, out); err != nil {
		return "", false, err
	}
	f := out.GetFields()
	return f["result"].GetStringValue(), f["cached"].GetBoolValue(), nil
}

// ListFilters returns the ids of the remote filters.
func (c *Client) ListFilters(ctx context.Context) ([]string, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/ListFilters", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	var ids []string
	for _, v := range out.GetFields()["filters"].GetListValue().GetValues() {
		ids = append(ids, v.GetStructValue().GetFields()["id"].GetStringValue())
	}
	return ids, nil
}

// Describe returns the stage kinds of filter in execution order.
func (c *Client) Describe(ctx context.Context, filter string) ([]string, error) {
	in, err := structpb.NewStruct(map[string]any{"filter": filter})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/Describe", in, out); err != nil {
		return nil, err
	}
	var kinds []string
	for _, v := range out.GetFields()["stages"].GetListValue().GetValues() {
		kinds = append(kinds, v.GetStructValue().GetFields()["kind"].GetStringValue())
	}
	return kinds, nil
}
