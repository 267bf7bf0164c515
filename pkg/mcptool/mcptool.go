// Package mcptool exposes talklike filters as Model Context Protocol tools.
//
// Tools:
//
//   - list_filters: the available filters
//   - describe_filter: the stage chain of one filter
//   - transform_text: run text through a filter
package mcptool

import (
	"context"
	stderrors "errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matzehuels/talklike/pkg/buildinfo"
	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/core/filter"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

// ServerName identifies the MCP server to clients.
const ServerName = "talklike"

// ListFiltersInput is the (empty) input of list_filters.
type ListFiltersInput struct{}

// ListFiltersResult is the output of list_filters.
type ListFiltersResult struct {
	Filters []catalog.Entry `json:"filters"`
}

// DescribeFilterInput is the input of describe_filter.
type DescribeFilterInput struct {
	Filter string `json:"filter" jsonschema:"filter id, for example pirate"`
}

// DescribeFilterResult is the output of describe_filter.
type DescribeFilterResult struct {
	Filter      string             `json:"filter"`
	Description string             `json:"description,omitempty"`
	Stages      []filter.StageInfo `json:"stages"`
}

// TransformInput is the input of transform_text.
type TransformInput struct {
	Filter string `json:"filter" jsonschema:"filter id, for example pirate"`
	Text   string `json:"text" jsonschema:"text to transform"`
}

// TransformResult is the output of transform_text.
type TransformResult struct {
	Result       string `json:"result"`
	Filter       string `json:"filter"`
	InvocationID string `json:"invocation_id"`
}

// NewServer registers the talklike tools on a new MCP server.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *mcp.Server {
	if logger == nil {
		logger = log.Default()
	}
	s := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: buildinfo.Version}, nil)
	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_filters",
		Description: "Lists the text filters that transform_text accepts",
	}, listFiltersHandler(runner))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "describe_filter",
		Description: "Shows the transformation stages a filter applies, in order",
	}, describeFilterHandler(runner))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "transform_text",
		Description: "Rewrites text in the voice of a filter such as pirate or duck",
	}, transformHandler(runner, logger))
	return s
}

// Run serves the tools over stdio until ctx ends or the client disconnects.
func Run(ctx context.Context, runner *pipeline.Runner, logger *log.Logger) error {
	return NewServer(runner, logger).Run(ctx, &mcp.StdioTransport{})
}

func listFiltersHandler(runner *pipeline.Runner) mcp.ToolHandlerFor[ListFiltersInput, ListFiltersResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListFiltersInput) (*mcp.CallToolResult, ListFiltersResult, error) {
		entries, err := runner.List(ctx)
		if err != nil {
			return nil, ListFiltersResult{}, err
		}
		if entries == nil {
			entries = []catalog.Entry{}
		}
		return nil, ListFiltersResult{Filters: entries}, nil
	}
}

func describeFilterHandler(runner *pipeline.Runner) mcp.ToolHandlerFor[DescribeFilterInput, DescribeFilterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DescribeFilterInput) (*mcp.CallToolResult, DescribeFilterResult, error) {
		c, err := runner.Compile(ctx, in.Filter)
		if err != nil {
			return nil, DescribeFilterResult{}, toolError(err)
		}
		return nil, DescribeFilterResult{
			Filter:      c.ID,
			Description: c.Definition.Description,
			Stages:      c.Filter.Describe(),
		}, nil
	}
}

func transformHandler(runner *pipeline.Runner, logger *log.Logger) mcp.ToolHandlerFor[TransformInput, TransformResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TransformInput) (*mcp.CallToolResult, TransformResult, error) {
		id := uuid.NewString()
		res, err := runner.Execute(ctx, pipeline.Options{
			Filter: in.Filter,
			Text:   in.Text,
			Logger: logger.With("invocation_id", id),
		})
		if err != nil {
			return nil, TransformResult{}, toolError(err)
		}
		return nil, TransformResult{Result: res.Output, Filter: res.Filter, InvocationID: id}, nil
	}
}

// toolError drops the code prefix; the model only needs the message.
func toolError(err error) error {
	return stderrors.New(errors.UserMessage(err))
}
