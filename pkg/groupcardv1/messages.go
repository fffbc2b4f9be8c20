package groupcardv1

// Member is a person in a group. The payment method reference is never
// returned to callers; HasPaymentMethod reports whether one is on file.
type Member struct {
	Id               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	HasPaymentMethod bool   `json:"hasPaymentMethod"`
	Linked           bool   `json:"linked"`
}

type Group struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []*Member `json:"members"`
	CreatedAt int64     `json:"createdAt"`
}

// Confirmation is one member's consent for a purchase. Both flags false
// means the member has not answered yet.
type Confirmation struct {
	MemberId    string `json:"memberId"`
	MemberName  string `json:"memberName,omitempty"`
	Confirmed   bool   `json:"confirmed"`
	Declined    bool   `json:"declined"`
	ConfirmedAt int64  `json:"confirmedAt,omitempty"`
}

// Hold is one member's share of a purchase.
type Hold struct {
	MemberId    string `json:"memberId"`
	MemberName  string `json:"memberName"`
	AmountCents int64  `json:"amountCents"`
	AuthRef     string `json:"authRef,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

type Transaction struct {
	Id                 string          `json:"id"`
	GroupId            string          `json:"groupId"`
	TotalCents         int64           `json:"totalCents"`
	Merchant           string          `json:"merchant"`
	MerchantAuthStatus string          `json:"merchantAuthStatus"`
	Confirmations      []*Confirmation `json:"confirmations"`
	Holds              []*Hold         `json:"holds"`
	Status             string          `json:"status"`
	AuthCode           string          `json:"authCode,omitempty"`
	CreatedAt          int64           `json:"createdAt"`
	Version            int64           `json:"version"`
}

type Terminal struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// GroupService

type MemberInput struct {
	Id               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	PaymentMethodRef string `json:"paymentMethodRef"`
}

type CreateGroupRequest struct {
	Name    string         `json:"name"`
	Members []*MemberInput `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListTransactionsRequest struct {
	GroupId string `json:"groupId"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type GetTransactionRequest struct {
	TransactionId string `json:"transactionId"`
}

type GetTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type RecordConfirmationRequest struct {
	TransactionId string `json:"transactionId"`
	MemberId      string `json:"memberId"`
	Confirmed     bool   `json:"confirmed"`
}

type RecordConfirmationResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// MerchantService

type ProposePurchaseRequest struct {
	GroupId    string `json:"groupId"`
	TotalCents int64  `json:"totalCents"`
	Merchant   string `json:"merchant"`

	// Confirmations pre-seeds member answers; omit to start with every
	// member waiting.
	Confirmations       []*Confirmation `json:"confirmations,omitempty"`
	BypassConfirmations bool            `json:"bypassConfirmations,omitempty"`
}

type ProposePurchaseResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type AuthorizeTransactionRequest struct {
	TransactionId string `json:"transactionId"`
}

type AuthorizeTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type CaptureRequest struct {
	GroupId       string `json:"groupId"`
	TransactionId string `json:"transactionId"`
}

type CaptureResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ReleaseRequest struct {
	GroupId       string `json:"groupId"`
	TransactionId string `json:"transactionId"`
}

type ReleaseResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// AuthService

type RegisterTerminalRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type RegisterTerminalResponse struct {
	Terminal *Terminal `json:"terminal"`
	Token    string    `json:"token"`
}

type LoginRequest struct {
	TerminalId string `json:"terminalId"`
	Secret     string `json:"secret"`
}

type LoginResponse struct {
	Terminal *Terminal `json:"terminal"`
	Token    string    `json:"token"`
}
