package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupcard/internal/middleware"
	"github.com/mmynk/groupcard/internal/orchestrator"
	pb "github.com/mmynk/groupcard/pkg/groupcardv1"
)

// MerchantService implements the terminal-facing Connect MerchantService.
// Every method returns the full transaction so the terminal can show
// per-member status even when the purchase was declined.
type MerchantService struct {
	orch *orchestrator.Orchestrator
}

// NewMerchantService creates a new MerchantService backed by the orchestrator.
func NewMerchantService(orch *orchestrator.Orchestrator) *MerchantService {
	return &MerchantService{orch: orch}
}

// ProposePurchase presents a purchase on behalf of a group.
func (s *MerchantService) ProposePurchase(ctx context.Context, req *connect.Request[pb.ProposePurchaseRequest]) (*connect.Response[pb.ProposePurchaseResponse], error) {
	slog.Info("ProposePurchase request received",
		"group_id", req.Msg.GroupId,
		"total_cents", req.Msg.TotalCents,
		"merchant", req.Msg.Merchant,
		"bypass", req.Msg.BypassConfirmations,
		"terminal_id", middleware.GetTerminalID(ctx),
	)

	txn, err := s.orch.ProposePurchase(ctx, orchestrator.PurchaseRequest{
		GroupID:             req.Msg.GroupId,
		TotalCents:          req.Msg.TotalCents,
		Merchant:            req.Msg.Merchant,
		Confirmations:       confirmationsFromProto(req.Msg.Confirmations),
		BypassConfirmations: req.Msg.BypassConfirmations,
	})
	if err != nil {
		slog.Error("ProposePurchase failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ProposePurchase completed",
		"transaction_id", txn.ID,
		"status", txn.Status,
		"merchant_auth_status", txn.MerchantAuthStatus,
	)
	return connect.NewResponse(&pb.ProposePurchaseResponse{Transaction: transactionToProto(txn)}), nil
}

// AuthorizeTransaction authorizes a purchase that every member confirmed.
func (s *MerchantService) AuthorizeTransaction(ctx context.Context, req *connect.Request[pb.AuthorizeTransactionRequest]) (*connect.Response[pb.AuthorizeTransactionResponse], error) {
	slog.Info("AuthorizeTransaction request received", "transaction_id", req.Msg.TransactionId)

	txn, err := s.orch.AuthorizeTransaction(ctx, req.Msg.TransactionId)
	if err != nil {
		slog.Error("AuthorizeTransaction failed", "transaction_id", req.Msg.TransactionId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.AuthorizeTransactionResponse{Transaction: transactionToProto(txn)}), nil
}

// Capture charges the holds of an approved purchase.
func (s *MerchantService) Capture(ctx context.Context, req *connect.Request[pb.CaptureRequest]) (*connect.Response[pb.CaptureResponse], error) {
	slog.Info("Capture request received", "group_id", req.Msg.GroupId, "transaction_id", req.Msg.TransactionId)

	txn, err := s.orch.Capture(ctx, req.Msg.GroupId, req.Msg.TransactionId)
	if err != nil {
		slog.Error("Capture failed", "transaction_id", req.Msg.TransactionId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.CaptureResponse{Transaction: transactionToProto(txn)}), nil
}

// Release cancels the outstanding holds of a purchase.
func (s *MerchantService) Release(ctx context.Context, req *connect.Request[pb.ReleaseRequest]) (*connect.Response[pb.ReleaseResponse], error) {
	slog.Info("Release request received", "group_id", req.Msg.GroupId, "transaction_id", req.Msg.TransactionId)

	txn, err := s.orch.Release(ctx, req.Msg.GroupId, req.Msg.TransactionId)
	if err != nil {
		slog.Error("Release failed", "transaction_id", req.Msg.TransactionId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.ReleaseResponse{Transaction: transactionToProto(txn)}), nil
}
