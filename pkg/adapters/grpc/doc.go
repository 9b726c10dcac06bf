/*
Package grpc connects to a DSG server over a bidirectional gRPC stream.

The service is described by hand (ServiceDesc) and messages travel as JSON
through a codec registered under the "json" content subtype, so no protoc
step is needed: requests are domain.Request values and responses are
domain.Envelope values decoded into domain.Command.
*/
package grpc
