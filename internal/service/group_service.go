package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupcard/internal/orchestrator"
	pb "github.com/mmynk/groupcard/pkg/groupcardv1"
)

// GroupService implements the member-facing Connect GroupService.
type GroupService struct {
	orch *orchestrator.Orchestrator
}

// NewGroupService creates a new GroupService backed by the orchestrator.
func NewGroupService(orch *orchestrator.Orchestrator) *GroupService {
	return &GroupService{orch: orch}
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	members := make([]orchestrator.NewMember, 0, len(req.Msg.Members))
	for _, m := range req.Msg.Members {
		if m == nil {
			continue
		}
		members = append(members, orchestrator.NewMember{
			ID:               m.Id,
			Name:             m.Name,
			Email:            m.Email,
			PaymentMethodRef: m.PaymentMethodRef,
		})
	}

	group, err := s.orch.CreateGroup(ctx, req.Msg.Name, members)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.CreateGroupResponse{Group: groupToProto(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, err := s.orch.GetGroup(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.GetGroupResponse{Group: groupToProto(group)}), nil
}

// ListTransactions returns a group's transactions, latest first.
func (s *GroupService) ListTransactions(ctx context.Context, req *connect.Request[pb.ListTransactionsRequest]) (*connect.Response[pb.ListTransactionsResponse], error) {
	slog.Info("ListTransactions request received", "group_id", req.Msg.GroupId)

	txns, err := s.orch.ListTransactions(ctx, req.Msg.GroupId)
	if err != nil {
		slog.Error("ListTransactions failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Transaction, len(txns))
	for i, txn := range txns {
		out[i] = transactionToProto(txn)
	}

	slog.Info("ListTransactions successful", "group_id", req.Msg.GroupId, "count", len(out))
	return connect.NewResponse(&pb.ListTransactionsResponse{Transactions: out}), nil
}

// GetTransaction returns a transaction snapshot.
func (s *GroupService) GetTransaction(ctx context.Context, req *connect.Request[pb.GetTransactionRequest]) (*connect.Response[pb.GetTransactionResponse], error) {
	txn, err := s.orch.GetTransaction(ctx, req.Msg.TransactionId)
	if err != nil {
		slog.Error("GetTransaction failed", "transaction_id", req.Msg.TransactionId, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.GetTransactionResponse{Transaction: transactionToProto(txn)}), nil
}

// RecordConfirmation records one member's answer to a pending purchase.
func (s *GroupService) RecordConfirmation(ctx context.Context, req *connect.Request[pb.RecordConfirmationRequest]) (*connect.Response[pb.RecordConfirmationResponse], error) {
	slog.Info("RecordConfirmation request received",
		"transaction_id", req.Msg.TransactionId,
		"member_id", req.Msg.MemberId,
		"confirmed", req.Msg.Confirmed,
	)

	txn, err := s.orch.RecordConfirmation(ctx, req.Msg.TransactionId, req.Msg.MemberId, req.Msg.Confirmed)
	if err != nil {
		slog.Error("RecordConfirmation failed",
			"transaction_id", req.Msg.TransactionId,
			"member_id", req.Msg.MemberId,
			"error", err,
		)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.RecordConfirmationResponse{Transaction: transactionToProto(txn)}), nil
}
