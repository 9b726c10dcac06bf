package grpc_test

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	dsggrpc "github.com/aretw0/dsg/pkg/adapters/grpc"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

// sceneServer answers every update request with a one-part scene and
// records what the client sent.
type sceneServer struct {
	mu       sync.Mutex
	requests []domain.Request
	halfDone chan struct{}
}

func (s *sceneServer) Subscribe(stream dsggrpc.SubscribeServer) error {
	defer close(s.halfDone)
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.requests = append(s.requests, *req)
		s.mu.Unlock()

		if req.Update == nil {
			continue
		}
		for _, cmd := range []domain.Command{
			domain.SceneBegin{},
			domain.UpdatePart{Part: domain.PartInfo{ID: 7, Name: "wing"}},
			domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadCoordinates, TotalArraySize: 3, FltArray: []float32{1, 2, 3}}},
			domain.SceneEnd{},
		} {
			env := domain.Encode(cmd)
			if err := stream.Send(&env); err != nil {
				return err
			}
		}
	}
}

func (s *sceneServer) Requests() []domain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Request(nil), s.requests...)
}

func startServer(t *testing.T) (*sceneServer, *dsggrpc.Connector) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := gogrpc.NewServer()
	scene := &sceneServer{halfDone: make(chan struct{})}
	dsggrpc.RegisterSceneServer(srv, scene)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	connector := dsggrpc.NewConnector("passthrough:///bufnet",
		dsggrpc.WithDialOptions(gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	return scene, connector
}

func TestConnector_RoundTrip(t *testing.T) {
	scene, connector := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := connector.Connect(ctx)
	require.NoError(t, err)
	defer stream.Close()

	require.NoError(t, stream.Send(domain.Request{Control: &domain.ControlRequest{AllowSpontaneous: true, MaximumChunkSize: 4096}}))
	require.NoError(t, stream.Send(domain.Request{Update: &domain.UpdateRequest{Temporal: true}}))

	var got []domain.Command
	for len(got) < 4 {
		cmd, err := stream.Recv()
		require.NoError(t, err)
		got = append(got, cmd)
	}
	assert.Equal(t, domain.CmdSceneBegin, got[0].Type())
	part, ok := got[1].(domain.UpdatePart)
	require.True(t, ok)
	assert.Equal(t, "wing", part.Part.Name)
	geom, ok := got[2].(domain.UpdateGeom)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, geom.Chunk.FltArray)
	assert.Equal(t, domain.CmdSceneEnd, got[3].Type())

	require.NoError(t, stream.CloseSend())
	select {
	case <-scene.halfDone:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not observe CloseSend")
	}

	reqs := scene.Requests()
	require.Len(t, reqs, 2)
	require.NotNil(t, reqs[0].Control)
	assert.Equal(t, uint32(4096), reqs[0].Control.MaximumChunkSize)
	require.NotNil(t, reqs[1].Update)
	assert.True(t, reqs[1].Update.Temporal)
}

func TestConnector_CloseUnblocksRecv(t *testing.T) {
	_, connector := startServer(t)
	stream, err := connector.Connect(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := stream.Recv()
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, stream.Close())

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not return after Close")
	}
}

func TestConnector_DialError(t *testing.T) {
	boom := errors.New("no route")
	connector := dsggrpc.NewConnector("localhost:1", dsggrpc.WithDialer(dsggrpc.DialerFunc(
		func(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
			return nil, boom
		},
	)))

	_, err := connector.Connect(context.Background())
	var dialErr *dsggrpc.DialError
	require.ErrorAs(t, err, &dialErr)
	assert.Equal(t, dsggrpc.DialStageConnect, dialErr.Stage)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "connect")
}

func TestDialError_Nil(t *testing.T) {
	var err *dsggrpc.DialError
	assert.Equal(t, "gRPC dial error", err.Error())
	assert.NoError(t, err.Unwrap())
}
