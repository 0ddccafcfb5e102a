package v2

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MinterTeam/minter-presale/api/v2/service"
	"github.com/gorilla/handlers"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_ctxtags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tmc/grpc-websocket-proxy/wsproxy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
)

const shutdownTimeout = 5 * time.Second

// NewGRPCServer registers the api, health and reflection services
func NewGRPCServer(srv *service.Service) *grpc.Server {
	kaep := keepalive.EnforcementPolicy{
		MinTime:             5 * time.Second,
		PermitWithoutStream: true,
	}

	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(kaep),
		grpc_middleware.WithStreamServerChain(
			grpc_prometheus.StreamServerInterceptor,
			grpc_recovery.StreamServerInterceptor(),
			grpc_ctxtags.StreamServerInterceptor(requestExtractorFields()),
		),
		grpc_middleware.WithUnaryServerChain(
			grpc_prometheus.UnaryServerInterceptor,
			grpc_recovery.UnaryServerInterceptor(),
			grpc_ctxtags.UnaryServerInterceptor(requestExtractorFields()),
		),
	)

	service.RegisterApiServiceServer(grpcServer, service.NewGRPCServer(srv))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)
	grpc_prometheus.Register(grpcServer)

	return grpcServer
}

// NewHandler builds the REST gateway with custom handlers behind the common middlewares
func NewHandler(srv *service.Service, simultaneousRequests int, logger log.Logger) (http.Handler, error) {
	gwmux := runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
			MarshalOptions: protojson.MarshalOptions{
				UseProtoNames:   true,
				EmitUnpopulated: true,
			},
			UnmarshalOptions: protojson.UnmarshalOptions{
				DiscardUnknown: true,
			},
		}),
	)
	if err := srv.RegisterRoutes(gwmux); err != nil {
		return nil, errors.Wrap(err, "register routes")
	}

	mux := http.NewServeMux()
	mux.Handle("/v2/custom/", srv.CustomHandlers())
	mux.Handle("/v2/", wsproxy.WebsocketProxy(gwmux))

	writer := &logWriter{logger: logger}

	var handler http.Handler = mux
	handler = limitRequests(handler, simultaneousRequests, gwmux)
	handler = handlers.CompressHandler(handler)
	handler = handlers.CombinedLoggingHandler(writer, handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(writer), handlers.PrintRecoveryStack(true))(handler)
	handler = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept", "Authorization"}),
	)(handler)

	return handler, nil
}

// Run serves gRPC on addrGRPC and REST on addrApi until ctx is done or one of the servers fails
func Run(ctx context.Context, srv *service.Service, addrGRPC, addrApi string, simultaneousRequests int, logger log.Logger) error {
	grpcListener, err := listen(addrGRPC)
	if err != nil {
		return err
	}

	apiListener, err := listen(addrApi)
	if err != nil {
		_ = grpcListener.Close()
		return err
	}

	handler, err := NewHandler(srv, simultaneousRequests, logger)
	if err != nil {
		_ = grpcListener.Close()
		_ = apiListener.Close()
		return err
	}

	grpcServer := NewGRPCServer(srv)
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("Starting gRPC server", "addr", grpcListener.Addr().String())
		if err := grpcServer.Serve(grpcListener); err != nil && err != grpc.ErrServerStopped {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Info("Starting API server", "addr", apiListener.Addr().String())
		if err := httpServer.Serve(apiListener); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// listen accepts both "host:port" and "tcp://host:port"
func listen(addr string) (net.Listener, error) {
	network, address := "tcp", addr
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return nil, errors.Wrapf(err, "parse listen address %q", addr)
		}
		network, address = u.Scheme, u.Host
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	return listener, nil
}

// limitRequests rejects requests above the limit with ResourceExhausted.
// Subscriptions are long lived and not counted.
func limitRequests(next http.Handler, limit int, gwmux *runtime.ServeMux) http.Handler {
	sem := semaphore.NewWeighted(int64(limit))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v2/subscribe") {
			next.ServeHTTP(w, r)
			return
		}

		if !sem.TryAcquire(1) {
			_, outbound := runtime.MarshalerForRequest(gwmux, r)
			runtime.HTTPError(r.Context(), gwmux, outbound, w, r, status.Error(codes.ResourceExhausted, "too many simultaneous requests"))
			return
		}
		defer sem.Release(1)

		next.ServeHTTP(w, r)
	})
}

func requestExtractorFields() grpc_ctxtags.Option {
	return grpc_ctxtags.WithFieldExtractor(grpc_ctxtags.CodeGenRequestFieldExtractor)
}

// logWriter feeds gorilla access and recovery logs into the node logger
type logWriter struct {
	logger log.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimSpace(string(p)))
	return len(p), nil
}

func (w *logWriter) Println(v ...interface{}) {
	parts := make([]string, 0, len(v))
	for _, value := range v {
		if err, ok := value.(error); ok {
			parts = append(parts, err.Error())
			continue
		}
		if s, ok := value.(string); ok {
			parts = append(parts, s)
		}
	}
	w.logger.Error("Recovered from panic", "err", strings.Join(parts, " "))
}
