package membership

import (
	"time"

	"github.com/comfund/backend/internal/domain/membership"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated member performing an operation
type Actor struct {
	MemberID uuid.UUID
	Name     string
	Admin    bool
}

// OptionalDecimal tells an absent JSON field apart from an explicit null.
// Set is true whenever the field was present; a nil Value then clears it.
type OptionalDecimal struct {
	Set   bool
	Value *decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalDecimal) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	o.Value = &d
	return nil
}

// UpdateMemberRequest is an admin edit of a member. Nil fields are left unchanged.
type UpdateMemberRequest struct {
	Name            *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Phone           *string                 `json:"phone" binding:"omitempty,max=30"`
	Address         *string                 `json:"address" binding:"omitempty,max=300"`
	BloodGroup      *string                 `json:"bloodGroup" binding:"omitempty,max=5"`
	Position        *string                 `json:"position" binding:"omitempty,max=100"`
	MonthlyAmount   *decimal.Decimal        `json:"monthlyAmount"`
	ManualDue       OptionalDecimal         `json:"manualDue" swaggertype:"number"`
	ManualTotalPaid OptionalDecimal         `json:"manualTotalPaid" swaggertype:"number"`
	PaidMonths      *[]string               `json:"paidMonths"`
	Permissions     *membership.Permissions `json:"permissions"`
	Role            *string                 `json:"role" binding:"omitempty,oneof=Admin Member"`
	JoiningDate     *time.Time              `json:"joiningDate"`
}

func (r UpdateMemberRequest) changesDues() bool {
	return r.MonthlyAmount != nil || r.ManualDue.Set || r.ManualTotalPaid.Set ||
		r.PaidMonths != nil || r.JoiningDate != nil
}

// UpdateProfileRequest is a member editing their own contact details
type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Phone      string `json:"phone" binding:"max=30"`
	Address    string `json:"address" binding:"max=300"`
	BloodGroup string `json:"bloodGroup" binding:"max=5"`
}

// SetStatusRequest carries a review decision
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Approved Rejected"`
}

// SendMessageRequest carries an admin message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// MemberListFilter are the query parameters of the member list
type MemberListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=Pending Approved Rejected"`
	Role     string `form:"role" binding:"omitempty,oneof=Admin Member"`
}

// MemberResponse is the full member record shown to admins and to the member
type MemberResponse struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Phone           string                 `json:"phone"`
	Address         string                 `json:"address"`
	BloodGroup      string                 `json:"bloodGroup"`
	Role            string                 `json:"role"`
	Position        string                 `json:"position"`
	Status          string                 `json:"status"`
	Approved        bool                   `json:"approved"`
	MonthlyAmount   decimal.Decimal        `json:"monthlyAmount"`
	ManualDue       *decimal.Decimal       `json:"manualDue"`
	ManualTotalPaid *decimal.Decimal       `json:"manualTotalPaid"`
	PaidMonths      []string               `json:"paidMonths"`
	Permissions     membership.Permissions `json:"permissions"`
	JoiningDate     time.Time              `json:"joiningDate"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// CommitteeMemberResponse is the public view of a committee member
type CommitteeMemberResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Position   string    `json:"position"`
	Phone      string    `json:"phone"`
	BloodGroup string    `json:"bloodGroup"`
}

// MessageResponse is one entry of a member's message log
type MessageResponse struct {
	ID     uuid.UUID `json:"id"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
	Sender string    `json:"sender"`
}

// ToMemberResponse converts a domain member
func ToMemberResponse(m *membership.Member) MemberResponse {
	paid := m.PaidMonths
	if paid == nil {
		paid = []string{}
	}
	return MemberResponse{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		Address:         m.Address,
		BloodGroup:      m.BloodGroup,
		Role:            m.Role.String(),
		Position:        m.Position,
		Status:          m.Status.String(),
		Approved:        m.Approved,
		MonthlyAmount:   m.MonthlyAmount,
		ManualDue:       m.ManualDue,
		ManualTotalPaid: m.ManualTotalPaid,
		PaidMonths:      paid,
		Permissions:     m.Permissions,
		JoiningDate:     m.JoinedAt(),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToMessageResponse converts a domain message
func ToMessageResponse(msg membership.Message) MessageResponse {
	return MessageResponse{ID: msg.ID, Text: msg.Text, Date: msg.Date, Sender: msg.Sender}
}
