package grpc

import (
	"github.com/aretw0/dsg/pkg/domain"
	gogrpc "google.golang.org/grpc"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "dsg.v1.SceneGraph"
	// SubscribeMethod is the full method path of the scene stream.
	SubscribeMethod = "/" + ServiceName + "/Subscribe"
)

var subscribeStreamDesc = gogrpc.StreamDesc{
	StreamName:    "Subscribe",
	ServerStreams: true,
	ClientStreams: true,
}

// SceneServer is the server side of the scene stream. The engine never
// serves it; it exists for tests and scene emulators.
type SceneServer interface {
	Subscribe(SubscribeServer) error
}

// SubscribeServer is the server view of one scene stream.
type SubscribeServer interface {
	Send(*domain.Envelope) error
	Recv() (*domain.Request, error)
	gogrpc.ServerStream
}

type subscribeServer struct {
	gogrpc.ServerStream
}

func (s *subscribeServer) Send(env *domain.Envelope) error {
	return s.ServerStream.SendMsg(env)
}

func (s *subscribeServer) Recv() (*domain.Request, error) {
	req := new(domain.Request)
	if err := s.ServerStream.RecvMsg(req); err != nil {
		return nil, err
	}
	return req, nil
}

func subscribeHandler(srv any, stream gogrpc.ServerStream) error {
	return srv.(SceneServer).Subscribe(&subscribeServer{stream})
}

// ServiceDesc describes the scene graph service.
var ServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SceneServer)(nil),
	Streams: []gogrpc.StreamDesc{
		{
			StreamName:    subscribeStreamDesc.StreamName,
			Handler:       subscribeHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "dsg/v1/scene.proto",
}

// RegisterSceneServer registers srv on s.
func RegisterSceneServer(s gogrpc.ServiceRegistrar, srv SceneServer) {
	s.RegisterService(&ServiceDesc, srv)
}
