package groupcardv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const AuthServiceName = "groupcard.v1.AuthService"

const (
	AuthServiceRegisterTerminalProcedure = "/groupcard.v1.AuthService/RegisterTerminal"
	AuthServiceLoginProcedure            = "/groupcard.v1.AuthService/Login"
)

// AuthServiceClient is a client for groupcard.v1.AuthService.
type AuthServiceClient interface {
	RegisterTerminal(context.Context, *connect.Request[RegisterTerminalRequest]) (*connect.Response[RegisterTerminalResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

// NewAuthServiceClient constructs a client for groupcard.v1.AuthService.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &authServiceClient{
		registerTerminal: connect.NewClient[RegisterTerminalRequest, RegisterTerminalResponse](httpClient, baseURL+AuthServiceRegisterTerminalProcedure, opts...),
		login:            connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

type authServiceClient struct {
	registerTerminal *connect.Client[RegisterTerminalRequest, RegisterTerminalResponse]
	login            *connect.Client[LoginRequest, LoginResponse]
}

func (c *authServiceClient) RegisterTerminal(ctx context.Context, req *connect.Request[RegisterTerminalRequest]) (*connect.Response[RegisterTerminalResponse], error) {
	return c.registerTerminal.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// AuthServiceHandler is implemented by the server side of groupcard.v1.AuthService.
type AuthServiceHandler interface {
	RegisterTerminal(context.Context, *connect.Request[RegisterTerminalRequest]) (*connect.Response[RegisterTerminalResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(handlerCodecs(), opts...)
	registerTerminal := connect.NewUnaryHandler(AuthServiceRegisterTerminalProcedure, svc.RegisterTerminal, opts...)
	login := connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)

	return "/" + AuthServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AuthServiceRegisterTerminalProcedure:
			registerTerminal.ServeHTTP(w, r)
		case AuthServiceLoginProcedure:
			login.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
