package groupcardv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const MerchantServiceName = "groupcard.v1.MerchantService"

const (
	MerchantServiceProposePurchaseProcedure      = "/groupcard.v1.MerchantService/ProposePurchase"
	MerchantServiceAuthorizeTransactionProcedure = "/groupcard.v1.MerchantService/AuthorizeTransaction"
	MerchantServiceCaptureProcedure              = "/groupcard.v1.MerchantService/Capture"
	MerchantServiceReleaseProcedure              = "/groupcard.v1.MerchantService/Release"
)

// MerchantServiceClient is a client for groupcard.v1.MerchantService, the
// terminal-facing side of a purchase.
type MerchantServiceClient interface {
	ProposePurchase(context.Context, *connect.Request[ProposePurchaseRequest]) (*connect.Response[ProposePurchaseResponse], error)
	AuthorizeTransaction(context.Context, *connect.Request[AuthorizeTransactionRequest]) (*connect.Response[AuthorizeTransactionResponse], error)
	Capture(context.Context, *connect.Request[CaptureRequest]) (*connect.Response[CaptureResponse], error)
	Release(context.Context, *connect.Request[ReleaseRequest]) (*connect.Response[ReleaseResponse], error)
}

// NewMerchantServiceClient constructs a client for groupcard.v1.MerchantService.
func NewMerchantServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) MerchantServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &merchantServiceClient{
		proposePurchase:      connect.NewClient[ProposePurchaseRequest, ProposePurchaseResponse](httpClient, baseURL+MerchantServiceProposePurchaseProcedure, opts...),
		authorizeTransaction: connect.NewClient[AuthorizeTransactionRequest, AuthorizeTransactionResponse](httpClient, baseURL+MerchantServiceAuthorizeTransactionProcedure, opts...),
		capture:              connect.NewClient[CaptureRequest, CaptureResponse](httpClient, baseURL+MerchantServiceCaptureProcedure, opts...),
		release:              connect.NewClient[ReleaseRequest, ReleaseResponse](httpClient, baseURL+MerchantServiceReleaseProcedure, opts...),
	}
}

type merchantServiceClient struct {
	proposePurchase      *connect.Client[ProposePurchaseRequest, ProposePurchaseResponse]
	authorizeTransaction *connect.Client[AuthorizeTransactionRequest, AuthorizeTransactionResponse]
	capture              *connect.Client[CaptureRequest, CaptureResponse]
	release              *connect.Client[ReleaseRequest, ReleaseResponse]
}

func (c *merchantServiceClient) ProposePurchase(ctx context.Context, req *connect.Request[ProposePurchaseRequest]) (*connect.Response[ProposePurchaseResponse], error) {
	return c.proposePurchase.CallUnary(ctx, req)
}

func (c *merchantServiceClient) AuthorizeTransaction(ctx context.Context, req *connect.Request[AuthorizeTransactionRequest]) (*connect.Response[AuthorizeTransactionResponse], error) {
	return c.authorizeTransaction.CallUnary(ctx, req)
}

func (c *merchantServiceClient) Capture(ctx context.Context, req *connect.Request[CaptureRequest]) (*connect.Response[CaptureResponse], error) {
	return c.capture.CallUnary(ctx, req)
}

func (c *merchantServiceClient) Release(ctx context.Context, req *connect.Request[ReleaseRequest]) (*connect.Response[ReleaseResponse], error) {
	return c.release.CallUnary(ctx, req)
}

// MerchantServiceHandler is implemented by the server side of groupcard.v1.MerchantService.
type MerchantServiceHandler interface {
	ProposePurchase(context.Context, *connect.Request[ProposePurchaseRequest]) (*connect.Response[ProposePurchaseResponse], error)
	AuthorizeTransaction(context.Context, *connect.Request[AuthorizeTransactionRequest]) (*connect.Response[AuthorizeTransactionResponse], error)
	Capture(context.Context, *connect.Request[CaptureRequest]) (*connect.Response[CaptureResponse], error)
	Release(context.Context, *connect.Request[ReleaseRequest]) (*connect.Response[ReleaseResponse], error)
}

// NewMerchantServiceHandler builds an HTTP handler from the service implementation.
func NewMerchantServiceHandler(svc MerchantServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(handlerCodecs(), opts...)
	proposePurchase := connect.NewUnaryHandler(MerchantServiceProposePurchaseProcedure, svc.ProposePurchase, opts...)
	authorizeTransaction := connect.NewUnaryHandler(MerchantServiceAuthorizeTransactionProcedure, svc.AuthorizeTransaction, opts...)
	capture := connect.NewUnaryHandler(MerchantServiceCaptureProcedure, svc.Capture, opts...)
	release := connect.NewUnaryHandler(MerchantServiceReleaseProcedure, svc.Release, opts...)

	return "/" + MerchantServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case MerchantServiceProposePurchaseProcedure:
			proposePurchase.ServeHTTP(w, r)
		case MerchantServiceAuthorizeTransactionProcedure:
			authorizeTransaction.ServeHTTP(w, r)
		case MerchantServiceCaptureProcedure:
			capture.ServeHTTP(w, r)
		case MerchantServiceReleaseProcedure:
			release.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
