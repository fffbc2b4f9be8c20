package service

import (
	"github.com/mmynk/groupcard/internal/models"
	pb "github.com/mmynk/groupcard/pkg/groupcardv1"
)

func groupToProto(g *models.Group) *pb.Group {
	members := make([]*pb.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = &pb.Member{
			Id:               m.ID,
			Name:             m.Name,
			Email:            m.Email,
			HasPaymentMethod: m.CanAuthorize(),
			Linked:           m.Linked,
		}
	}
	return &pb.Group{
		Id:        g.ID,
		Name:      g.Name,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func transactionToProto(t *models.GroupTransaction) *pb.Transaction {
	confirmations := make([]*pb.Confirmation, len(t.Confirmations))
	for i, c := range t.Confirmations {
		confirmations[i] = &pb.Confirmation{
			MemberId:    c.MemberID,
			MemberName:  c.MemberName,
			Confirmed:   c.Confirmed,
			Declined:    c.Declined,
			ConfirmedAt: c.ConfirmedAt,
		}
	}
	holds := make([]*pb.Hold, len(t.Holds))
	for i, h := range t.Holds {
		holds[i] = &pb.Hold{
			MemberId:    h.MemberID,
			MemberName:  h.MemberName,
			AmountCents: h.AmountCents,
			AuthRef:     h.AuthRef,
			Status:      string(h.Status),
			Error:       h.Error,
		}
	}
	return &pb.Transaction{
		Id:                 t.ID,
		GroupId:            t.GroupID,
		TotalCents:         t.TotalCents,
		Merchant:           t.Merchant,
		MerchantAuthStatus: string(t.MerchantAuthStatus),
		Confirmations:      confirmations,
		Holds:              holds,
		Status:             string(t.Status),
		AuthCode:           t.AuthCode,
		CreatedAt:          t.CreatedAt,
		Version:            t.Version,
	}
}

// confirmationsFromProto returns nil when the caller sent none, which lets
// the orchestrator seed a waiting confirmation per member.
func confirmationsFromProto(in []*pb.Confirmation) []models.MemberConfirmation {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.MemberConfirmation, 0, len(in))
	for _, c := range in {
		if c == nil {
			continue
		}
		out = append(out, models.MemberConfirmation{
			MemberID:    c.MemberId,
			Confirmed:   c.Confirmed,
			Declined:    c.Declined,
			ConfirmedAt: c.ConfirmedAt,
		})
	}
	return out
}
