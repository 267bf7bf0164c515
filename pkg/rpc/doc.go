// Package rpc serves the pipeline as the gRPC service talklike.v1.Transformer.
//
// Messages are google.protobuf.Struct values so clients in any language can
// call the service without generated stubs:
//
//	Transform   {filter, text, refresh}  -> {result, filter, cached}
//	ListFilters {}                       -> {filters: [{id, name, description, source}]}
//	Describe    {filter}                 -> {filter, stages: [{kind, rules}]}
//
// The standard grpc.health.v1 service reports SERVING for the empty service
// name and for talklike.v1.Transformer.
package rpc
