package groupcardv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const GroupServiceName = "groupcard.v1.GroupService"

// Procedure names, e.g. for interceptors that act per method.
const (
	GroupServiceCreateGroupProcedure        = "/groupcard.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure           = "/groupcard.v1.GroupService/GetGroup"
	GroupServiceListTransactionsProcedure   = "/groupcard.v1.GroupService/ListTransactions"
	GroupServiceGetTransactionProcedure     = "/groupcard.v1.GroupService/GetTransaction"
	GroupServiceRecordConfirmationProcedure = "/groupcard.v1.GroupService/RecordConfirmation"
)

// GroupServiceClient is a client for the member-facing groupcard.v1.GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	GetTransaction(context.Context, *connect.Request[GetTransactionRequest]) (*connect.Response[GetTransactionResponse], error)
	RecordConfirmation(context.Context, *connect.Request[RecordConfirmationRequest]) (*connect.Response[RecordConfirmationResponse], error)
}

// NewGroupServiceClient constructs a client for groupcard.v1.GroupService.
// baseURL is the server root, e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &groupServiceClient{
		createGroup:        connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:           connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listTransactions:   connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+GroupServiceListTransactionsProcedure, opts...),
		getTransaction:     connect.NewClient[GetTransactionRequest, GetTransactionResponse](httpClient, baseURL+GroupServiceGetTransactionProcedure, opts...),
		recordConfirmation: connect.NewClient[RecordConfirmationRequest, RecordConfirmationResponse](httpClient, baseURL+GroupServiceRecordConfirmationProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup        *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup           *connect.Client[GetGroupRequest, GetGroupResponse]
	listTransactions   *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	getTransaction     *connect.Client[GetTransactionRequest, GetTransactionResponse]
	recordConfirmation *connect.Client[RecordConfirmationRequest, RecordConfirmationResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetTransaction(ctx context.Context, req *connect.Request[GetTransactionRequest]) (*connect.Response[GetTransactionResponse], error) {
	return c.getTransaction.CallUnary(ctx, req)
}

func (c *groupServiceClient) RecordConfirmation(ctx context.Context, req *connect.Request[RecordConfirmationRequest]) (*connect.Response[RecordConfirmationResponse], error) {
	return c.recordConfirmation.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by the server side of groupcard.v1.GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	GetTransaction(context.Context, *connect.Request[GetTransactionRequest]) (*connect.Response[GetTransactionResponse], error)
	RecordConfirmation(context.Context, *connect.Request[RecordConfirmationRequest]) (*connect.Response[RecordConfirmationResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(handlerCodecs(), opts...)
	createGroup := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	getGroup := connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...)
	listTransactions := connect.NewUnaryHandler(GroupServiceListTransactionsProcedure, svc.ListTransactions, opts...)
	getTransaction := connect.NewUnaryHandler(GroupServiceGetTransactionProcedure, svc.GetTransaction, opts...)
	recordConfirmation := connect.NewUnaryHandler(GroupServiceRecordConfirmationProcedure, svc.RecordConfirmation, opts...)

	return "/" + GroupServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroup.ServeHTTP(w, r)
		case GroupServiceGetGroupProcedure:
			getGroup.ServeHTTP(w, r)
		case GroupServiceListTransactionsProcedure:
			listTransactions.ServeHTTP(w, r)
		case GroupServiceGetTransactionProcedure:
			getTransaction.ServeHTTP(w, r)
		case GroupServiceRecordConfirmationProcedure:
			recordConfirmation.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
