package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/orchestrator"
)

// #region client-struct
// Client calls a remote memory.v1.SceneService.
type Client struct {
	conn *grpc.ClientConn
}
// #endregion client-struct

// #region constructor
// NewClient connects to a memoryd gRPC server.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
// #endregion constructor

// #region calls
func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return fmt.Errorf("%s rpc: %w", method, err)
	}
	return fromStruct(out, resp)
}

// AddFrame ingests one frame remotely.
func (c *Client) AddFrame(ctx context.Context, in orchestrator.FrameInput) (orchestrator.IngestResult, error) {
	var res orchestrator.IngestResult
	err := c.invoke(ctx, "AddFrame", in, &res)
	return res, err
}

// Recall returns the context stored under label, or nil.
func (c *Client) Recall(ctx context.Context, label string) (*memory.Context, error) {
	var res RecallResponse
	if err := c.invoke(ctx, "Recall", RecallRequest{Label: label}, &res); err != nil {
		return nil, err
	}
	return res.Context, nil
}

// RecallSimilar returns memories scoring at least req.Threshold against
// req.Query.
func (c *Client) RecallSimilar(ctx context.Context, req RecallSimilarRequest) ([]memory.SimilarMemory, error) {
	var res RecallSimilarResponse
	err := c.invoke(ctx, "RecallSimilar", req, &res)
	return res.Matches, err
}

// ShortestAssociation returns the cheapest weighted path and its cost.
func (c *Client) ShortestAssociation(ctx context.Context, from, to string) ([]string, float64, error) {
	var res PathResponse
	err := c.invoke(ctx, "ShortestAssociation", PathRequest{From: from, To: to}, &res)
	return res.Path, res.Cost, err
}

// ReinforcePath reinforces the fewest-hop path and returns it.
func (c *Client) ReinforcePath(ctx context.Context, from, to string) ([]string, error) {
	var res PathResponse
	err := c.invoke(ctx, "ReinforcePath", PathRequest{From: from, To: to}, &res)
	return res.Path, err
}

// Groups lists groups, or recalls from one group when req.Label is set.
func (c *Client) Groups(ctx context.Context, req GroupsRequest) ([]GroupSummary, error) {
	var res GroupsResponse
	err := c.invoke(ctx, "Groups", req, &res)
	return res.Groups, err
}
// #endregion calls
