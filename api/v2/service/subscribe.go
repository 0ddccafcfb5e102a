package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type SubscribeResponse struct {
	Query  string              `json:"query"`
	Data   interface{}         `json:"data"`
	Events map[string][]string `json:"events"`
}

// nextSubscriber keeps one remote able to hold several subscriptions
func nextSubscriber(remote string) string {
	return fmt.Sprintf("%s#%s", remote, uuid.New().String())
}

// Subscribe streams committed calls matching q into send until ctx is done
// or subscribeDuration elapses. ready is called once the subscription is registered.
func (s *Service) Subscribe(ctx context.Context, remote string, q string, ready func(), send func(*SubscribeResponse) error) error {
	subscriber := nextSubscriber(remote)

	sub, err := s.blockchain.Subscribe(ctx, subscriber, q)
	if err != nil {
		return s.statusError(err)
	}
	defer func() {
		if err := s.blockchain.Unsubscribe(context.Background(), subscriber); err != nil {
			s.logger.Debug("Unsubscribe failed", "subscriber", subscriber, "err", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.subscribeDuration)
	defer cancel()

	if ready != nil {
		ready()
	}

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return status.Error(codes.DeadlineExceeded, "subscription expired")
			}
			return status.FromContextError(ctx.Err()).Err()
		case <-sub.Cancelled():
			return status.Errorf(codes.Aborted, "subscription cancelled: %v", sub.Err())
		case msg := <-sub.Out():
			if err := send(&SubscribeResponse{Query: q, Data: msg.Data(), Events: msg.Events()}); err != nil {
				return err
			}
		}
	}
}

// handleSubscribe writes one JSON object per line and flushes after each
func (s *Service) handleSubscribe(mux *runtime.ServeMux) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		_, outbound := runtime.MarshalerForRequest(mux, r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			runtime.HTTPError(r.Context(), mux, outbound, w, r, status.Error(codes.Unimplemented, "streaming is not supported"))
			return
		}

		started := false
		ready := func() {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			flusher.Flush()
			started = true
		}
		err := s.Subscribe(r.Context(), r.RemoteAddr, r.URL.Query().Get("query"), ready, func(response *SubscribeResponse) error {
			data, err := toStruct(response)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			buf, err := outbound.Marshal(data)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}

			if _, err := w.Write(append(buf, '\n')); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
		if err == nil {
			return
		}

		if !started {
			runtime.HTTPError(r.Context(), mux, outbound, w, r, err)
			return
		}
		s.logger.Debug("Subscription closed", "remote", r.RemoteAddr, "err", err)
	}
}
