package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/MinterTeam/minter-presale/core/query"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type handlerFunc func(r *http.Request, params map[string]string) (interface{}, error)

type route struct {
	method  string
	pattern string
	handler handlerFunc
}

// RegisterRoutes binds the REST endpoints to the gateway mux.
// The gateway matches the most recently registered pattern first, so
// wildcard routes go before the static ones sharing their prefix.
func (s *Service) RegisterRoutes(mux *runtime.ServeMux) error {
	routes := []route{
		{http.MethodGet, "/v2/status", s.handleStatus},

		{http.MethodGet, "/v2/sale/config", s.queryHandler(func(*http.Request, map[string]string) (*query.Query, error) {
			return &query.Query{SaleConfig: &query.Empty{}}, nil
		})},
		{http.MethodGet, "/v2/sale/status", s.queryHandler(func(*http.Request, map[string]string) (*query.Query, error) {
			return &query.Query{SaleStatus: &query.Empty{}}, nil
		})},
		{http.MethodGet, "/v2/sale/participants", s.queryHandler(func(r *http.Request, _ map[string]string) (*query.Query, error) {
			page, err := pageRequest(r)
			if err != nil {
				return nil, err
			}
			return &query.Query{Participants: page}, nil
		})},
		{http.MethodGet, "/v2/sale/participants/count", s.queryHandler(func(*http.Request, map[string]string) (*query.Query, error) {
			return &query.Query{ParticipantsCount: &query.Empty{}}, nil
		})},
		{http.MethodGet, "/v2/sale/participant/{address}", s.queryHandler(func(_ *http.Request, params map[string]string) (*query.Query, error) {
			req, err := userRequest(params["address"])
			if err != nil {
				return nil, err
			}
			return &query.Query{Participant: req}, nil
		})},

		{http.MethodGet, "/v2/whitelist/users", s.queryHandler(func(r *http.Request, _ map[string]string) (*query.Query, error) {
			page, err := pageRequest(r)
			if err != nil {
				return nil, err
			}
			return &query.Query{Users: page}, nil
		})},
		{http.MethodGet, "/v2/whitelist/users/count", s.queryHandler(func(*http.Request, map[string]string) (*query.Query, error) {
			return &query.Query{UsersCount: &query.Empty{}}, nil
		})},
		{http.MethodGet, "/v2/whitelist/user/{address}", s.queryHandler(func(_ *http.Request, params map[string]string) (*query.Query, error) {
			req, err := userRequest(params["address"])
			if err != nil {
				return nil, err
			}
			return &query.Query{User: req}, nil
		})},

		{http.MethodGet, "/v2/vesting/{address}", s.queryHandler(func(_ *http.Request, params map[string]string) (*query.Query, error) {
			req, err := userRequest(params["address"])
			if err != nil {
				return nil, err
			}
			return &query.Query{Recipient: req}, nil
		})},
		{http.MethodGet, "/v2/vesting/config", s.queryHandler(func(*http.Request, map[string]string) (*query.Query, error) {
			return &query.Query{VestingConfig: &query.Empty{}}, nil
		})},

		{http.MethodGet, "/v2/locking/{address}", s.queryHandler(func(_ *http.Request, params map[string]string) (*query.Query, error) {
			req, err := userRequest(params["address"])
			if err != nil {
				return nil, err
			}
			return &query.Query{LockInfo: req}, nil
		})},
		{http.MethodGet, "/v2/locking/config", s.queryHandler(func(*http.Request, map[string]string) (*query.Query, error) {
			return &query.Query{LockingConfig: &query.Empty{}}, nil
		})},
		{http.MethodGet, "/v2/locking/accounts", s.queryHandler(func(r *http.Request, _ map[string]string) (*query.Query, error) {
			values := r.URL.Query()
			limit, err := parseUint("limit", values.Get("limit"))
			if err != nil {
				return nil, err
			}
			req := &query.LockedRequest{Limit: limit, OrderBy: values.Get("order_by")}
			if startAfter := values.Get("start_after"); startAfter != "" {
				address, err := parseAddress("start_after", startAfter)
				if err != nil {
					return nil, err
				}
				req.StartAfter = &address
			}
			return &query.Query{LockedAccounts: req}, nil
		})},

		{http.MethodGet, "/v2/token/{token}", s.queryHandler(func(_ *http.Request, params map[string]string) (*query.Query, error) {
			token, err := parseAddress("token", params["token"])
			if err != nil {
				return nil, err
			}
			return &query.Query{TokenInfo: &query.TokenRequest{Token: token}}, nil
		})},
		{http.MethodGet, "/v2/token/{token}/balance/{address}", s.queryHandler(func(_ *http.Request, params map[string]string) (*query.Query, error) {
			token, err := parseAddress("token", params["token"])
			if err != nil {
				return nil, err
			}
			address, err := parseAddress("address", params["address"])
			if err != nil {
				return nil, err
			}
			return &query.Query{Balance: &query.BalanceRequest{Token: token, Address: address}}, nil
		})},

		{http.MethodPost, "/v2/query", s.queryHandler(func(r *http.Request, _ map[string]string) (*query.Query, error) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			q, err := query.Decode(body)
			if err != nil {
				return nil, s.statusError(err)
			}
			return q, nil
		})},

		{http.MethodPost, "/v2/send_transaction", s.txHandler(s.SendTransaction)},
		{http.MethodPost, "/v2/check_transaction", s.txHandler(s.CheckTransaction)},
		{http.MethodGet, "/v2/events/{height}", s.handleEvents},
	}

	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, s.wrap(mux, rt.pattern, rt.handler)); err != nil {
			return err
		}
	}

	return mux.HandlePath(http.MethodGet, "/v2/subscribe", s.handleSubscribe(mux))
}

// wrap measures the handler and writes its result with the gateway marshaler
func (s *Service) wrap(mux *runtime.ServeMux, pattern string, h handlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		start := time.Now()
		defer func() {
			s.blockchain.StatisticData().SetApiTime(time.Since(start), pattern)
		}()

		_, outbound := runtime.MarshalerForRequest(mux, r)

		result, err := h(r, params)
		if err != nil {
			runtime.HTTPError(r.Context(), mux, outbound, w, r, err)
			return
		}

		data, err := toStruct(result)
		if err != nil {
			runtime.HTTPError(r.Context(), mux, outbound, w, r, status.Error(codes.Internal, err.Error()))
			return
		}

		buf, err := outbound.Marshal(data)
		if err != nil {
			runtime.HTTPError(r.Context(), mux, outbound, w, r, status.Error(codes.Internal, err.Error()))
			return
		}

		w.Header().Set("Content-Type", outbound.ContentType(data))
		if _, err := w.Write(buf); err != nil {
			s.logger.Error("Failed to write response", "path", pattern, "err", err)
		}
	}
}

func (s *Service) queryHandler(build func(r *http.Request, params map[string]string) (*query.Query, error)) handlerFunc {
	return func(r *http.Request, params map[string]string) (interface{}, error) {
		height, err := parseUint("height", r.URL.Query().Get("height"))
		if err != nil {
			return nil, err
		}

		q, err := build(r, params)
		if err != nil {
			return nil, err
		}

		return s.Query(r.Context(), q, height)
	}
}

type txRequest struct {
	Tx string `json:"tx"`
}

func (s *Service) txHandler(call func(ctx context.Context, tx string) (interface{}, error)) handlerFunc {
	return func(r *http.Request, _ map[string]string) (interface{}, error) {
		var req txRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid request body: "+err.Error())
		}
		return call(r.Context(), req.Tx)
	}
}

func (s *Service) handleStatus(r *http.Request, _ map[string]string) (interface{}, error) {
	return s.Status(r.Context())
}

func (s *Service) handleEvents(r *http.Request, params map[string]string) (interface{}, error) {
	height, err := parseUint("height", params["height"])
	if err != nil {
		return nil, err
	}
	return s.Events(r.Context(), height)
}

func pageRequest(r *http.Request) (*query.PageRequest, error) {
	values := r.URL.Query()
	page, err := parseUint("page", values.Get("page"))
	if err != nil {
		return nil, err
	}
	limit, err := parseUint("limit", values.Get("limit"))
	if err != nil {
		return nil, err
	}
	return &query.PageRequest{Page: page, Limit: limit}, nil
}

func userRequest(value string) (*query.UserRequest, error) {
	address, err := parseAddress("address", value)
	if err != nil {
		return nil, err
	}
	return &query.UserRequest{User: address}, nil
}
